package model

import "time"

// Share is a public, time-bounded download grant for one file.
// The share code is the only credential needed to redeem it.
type Share struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	FileID    string `gorm:"type:uuid;not null;uniqueIndex"`
	ShareCode string `gorm:"not null;uniqueIndex"`

	CreatedAt time.Time
	ExpiresAt time.Time
}

// ActiveAt reports whether the share is still redeemable at the given
// moment. Expired shares stay in the registry for audit; they are
// inactive, not deleted.
func (s *Share) ActiveAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
