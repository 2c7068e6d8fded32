package model

import "time"

// Role separates regular accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account that owns files in the vault.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"not null;default:user"`

	CreatedAt   time.Time
	LastLoginAt *time.Time

	// Owned files; removal of the user cascades at the service layer,
	// not through the database (blob cleanup must run per file).
	Files []File `gorm:"foreignKey:OwnerID"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
