package model

import "time"

// File is the metadata for one uploaded file. The actual bytes live in the
// blob store under StorageID, which is opaque and never leaves the
// service layer.
type File struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	OwnerID string `gorm:"type:uuid;not null;index"`
	Owner   *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	FileName         string `gorm:"not null"` // display name, mutable via rename
	OriginalFileName string `gorm:"not null"` // name at upload time, immutable
	ContentType      string
	FileSize         int64

	// Opaque blob store key. Unique, immutable once set, never reused.
	StorageID string `gorm:"uniqueIndex;not null"`

	UploadedAt time.Time

	// At most one share per file.
	Share *Share `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
