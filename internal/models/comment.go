// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ReactionSet maps a reaction tag (e.g. "amen", "heart") to the set of user
// IDs that applied it. Stored as a JSON text column so it works on both
// Postgres and the sqlite test driver.
type ReactionSet map[string][]uint

// Value implements driver.Valuer.
func (r ReactionSet) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *ReactionSet) Scan(value interface{}) error {
	if value == nil {
		*r = ReactionSet{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported reaction set type %T", value)
	}
	if len(data) == 0 {
		*r = ReactionSet{}
		return nil
	}
	return json.Unmarshal(data, r)
}

// Toggle adds userID under tag, or removes it if already present. Returns the
// new membership state.
func (r *ReactionSet) Toggle(tag string, userID uint) bool {
	if *r == nil {
		*r = ReactionSet{}
	}
	users := (*r)[tag]
	for i, id := range users {
		if id == userID {
			users = append(users[:i], users[i+1:]...)
			if len(users) == 0 {
				delete(*r, tag)
			} else {
				(*r)[tag] = users
			}
			return false
		}
	}
	(*r)[tag] = append(users, userID)
	return true
}

// Comment is the comment specialization of an engagement record: append-only,
// with free text, an optional parent forming a reply tree, and per-user
// reactions. Records are flat; the tree is reconstructed on read.
type Comment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ContentID   uint           `gorm:"not null;index:idx_comments_content,priority:1" json:"content_id"`
	ContentType ContentType    `gorm:"type:varchar(20);not null;index:idx_comments_content,priority:2" json:"content_type"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`
	Reactions   ReactionSet    `gorm:"type:text" json:"reactions"`
	CreatedAt   time.Time      `gorm:"index:idx_comments_content,priority:3" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Replies is populated by the repository when listing top-level comments.
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}
