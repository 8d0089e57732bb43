package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultPhone = "+234"
	DefaultBio   = "bio"
	DefaultSKU   = "SKU"

	MaxBioLength = 300
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"_id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"uniqueIndex;not null"     json:"email"`
	Password  string    `gorm:"not null"                 json:"-"`
	Photo     string    `gorm:"not null"                 json:"photo"`
	Phone     string    `gorm:"not null"                 json:"phone"`
	Bio       string    `gorm:"size:300;not null"        json:"bio"`
	CreatedAt time.Time `                                json:"createdAt"`
	UpdatedAt time.Time `                                json:"updatedAt"`
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	TokenHash string    `gorm:"uniqueIndex;not null"     json:"-"`
	CreatedAt time.Time `gorm:"not null"                 json:"createdAt"`
	ExpiresAt time.Time `gorm:"index;not null"           json:"expiresAt"`
}

type Image struct {
	FileName string `json:"fileName,omitempty"`
	FilePath string `json:"filePath,omitempty"`
	FileType string `json:"fileType,omitempty"`
	FileSize string `json:"fileSize,omitempty"`
}

// IsZero reports whether no file was uploaded; a product without one marshals without "image".
func (i Image) IsZero() bool {
	return i.FilePath == ""
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"     json:"_id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user"`
	Name        string    `gorm:"not null"                 json:"name"`
	SKU         string    `gorm:"not null"                 json:"sku"`
	Category    string    `gorm:"not null"                 json:"category"`
	Quantity    int64     `gorm:"not null"                 json:"quantity"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Description string    `gorm:"not null"                 json:"description"`
	Image       Image     `gorm:"embedded;embeddedPrefix:image_" json:"image,omitzero"`
	CreatedAt   time.Time `gorm:"index"                    json:"createdAt"`
	UpdatedAt   time.Time `                                json:"updatedAt"`
}
