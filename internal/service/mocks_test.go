package service

import (
	"concordvault/internal/model"
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Save(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) ListWithFiles(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if u, ok := args.Get(0).([]model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type mockFileRepo struct{ mock.Mock }

func (m *mockFileRepo) Create(ctx context.Context, file *model.File) error {
	return m.Called(ctx, file).Error(0)
}

func (m *mockFileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if f, ok := args.Get(0).(*model.File); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	args := m.Called(ctx, ownerID)
	if f, ok := args.Get(0).([]model.File); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) ListAll(ctx context.Context) ([]model.File, error) {
	args := m.Called(ctx)
	if f, ok := args.Get(0).([]model.File); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) UpdateName(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *mockFileRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFileRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFileRepo) CountUploadedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFileRepo) SumSizes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockShareRepo struct{ mock.Mock }

func (m *mockShareRepo) Replace(ctx context.Context, share *model.Share) error {
	return m.Called(ctx, share).Error(0)
}

func (m *mockShareRepo) GetByCode(ctx context.Context, code string) (*model.Share, error) {
	args := m.Called(ctx, code)
	if s, ok := args.Get(0).(*model.Share); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShareRepo) GetByFileID(ctx context.Context, fileID string) (*model.Share, error) {
	args := m.Called(ctx, fileID)
	if s, ok := args.Get(0).(*model.Share); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Save(ctx context.Context, r io.Reader, originalName string) (string, int64, error) {
	args := m.Called(ctx, r, originalName)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockBlobStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// scriptedCodes hands out a fixed sequence of share codes so collision
// handling can be driven deterministically.
type scriptedCodes struct {
	codes []string
	next  int
}

func (s *scriptedCodes) NewCode() (string, error) {
	if s.next >= len(s.codes) {
		code := s.codes[len(s.codes)-1]
		return code, nil
	}
	code := s.codes[s.next]
	s.next++
	return code, nil
}
