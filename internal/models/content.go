// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// ContentType identifies which catalog an item belongs to.
type ContentType string

const (
	ContentTypeMedia      ContentType = "media"
	ContentTypeDevotional ContentType = "devotional"
	ContentTypeArtist     ContentType = "artist"
	ContentTypeMerch      ContentType = "merch"
	ContentTypeEbook      ContentType = "ebook"
	ContentTypePodcast    ContentType = "podcast"
)

// ValidContentType reports whether t belongs to the closed content-type set.
func ValidContentType(t ContentType) bool {
	switch t {
	case ContentTypeMedia, ContentTypeDevotional, ContentTypeArtist,
		ContentTypeMerch, ContentTypeEbook, ContentTypePodcast:
		return true
	}
	return false
}

// Content is a catalog item that can receive engagement. It doubles as the
// content registry: existence and ownership checks run against this table
// before any engagement mutation.
type Content struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Type        ContentType    `gorm:"type:varchar(20);not null;index:idx_contents_type" json:"type"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	MediaURL    string         `json:"media_url,omitempty"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Owner       User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Published   bool           `gorm:"default:true" json:"published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
