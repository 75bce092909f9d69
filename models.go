//models.go
package main

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Document is a stored compliance document with its extracted text content.
type Document struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"not null" json:"filename"`
	Content    string    `gorm:"type:text" json:"content"` // Extracted text, may be empty for unreadable files
	FileType   string    `json:"fileType"`                 // MIME type reported at upload
	UploadDate time.Time `json:"uploadDate"`
	FileSize   int64     `json:"fileSize"`
}

// Escalation is created when a query produces no evidence and a human needs to follow up.
// IDs are assigned from the creation timestamp (UnixMilli), not by the store.
type Escalation struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Query     string    `json:"query"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"` // Always "OPEN" at creation; no lifecycle transitions
}

// AssetRecord is one row of an uploaded asset register. Records are held in
// process memory only and are never persisted.
type AssetRecord struct {
	AssetID   string `json:"assetId"`
	AssetType string `json:"assetType"`
	Location  string `json:"location"`
	Owner     string `json:"owner"`
	Status    string `json:"status"`
}

// User represents a registered user with a username and password hash.
type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// SetPassword hashes the given password and stores it in PasswordHash.
func (user *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the given password with the stored PasswordHash.
func (user *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// newDocument builds a Document from an uploaded file's metadata and extracted text.
func newDocument(filename, content, fileType string, fileSize int64) Document {
	return Document{
		Filename:   filename,
		Content:    content,
		FileType:   fileType,
		UploadDate: time.Now().UTC(),
		FileSize:   fileSize,
	}
}
