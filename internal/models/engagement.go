// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Kind is the interaction kind recorded in the engagement ledger.
type Kind string

const (
	KindLike     Kind = "like"
	KindBookmark Kind = "bookmark"
	KindFollow   Kind = "follow"
	KindView     Kind = "view"
	KindComment  Kind = "comment"
	KindShare    Kind = "share"
)

// ValidKind reports whether k belongs to the closed kind set.
func ValidKind(k Kind) bool {
	switch k {
	case KindLike, KindBookmark, KindFollow, KindView, KindComment, KindShare:
		return true
	}
	return false
}

// ToggleableKinds are interactions where a second identical action reverses
// the first. The storage layer enforces at most one row per
// (user, content, type, kind) tuple for these.
var ToggleableKinds = []Kind{KindLike, KindBookmark, KindFollow}

// Toggleable reports whether k flips on repeat rather than appending.
func (k Kind) Toggleable() bool {
	return k == KindLike || k == KindBookmark || k == KindFollow
}

// Engagement is one actor's stance toward one content item for one kind.
// Toggleable kinds have at most one live row per tuple (partial unique index
// idx_engagements_tuple, created outside AutoMigrate); view and share rows are
// append-only, one per event. Comments live in their own table.
type Engagement struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index:idx_engagements_user" json:"user_id"`
	ContentID   uint        `gorm:"not null;index:idx_engagements_content,priority:1" json:"content_id"`
	ContentType ContentType `gorm:"type:varchar(20);not null;index:idx_engagements_content,priority:2" json:"content_type"`
	Kind        Kind        `gorm:"type:varchar(20);not null;index:idx_engagements_content,priority:3" json:"kind"`
	CreatedAt   time.Time   `gorm:"index:idx_engagements_content,priority:4" json:"created_at"`

	// Kind-specific metadata. Platform is set for shares; the view fields are
	// set for views, with Countable recording the policy decision made at
	// write time.
	Platform        string `gorm:"type:varchar(40)" json:"platform,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	IsComplete      bool   `json:"is_complete,omitempty"`
	Countable       bool   `json:"countable,omitempty"`
}

// TableName specifies the table name for GORM
func (Engagement) TableName() string {
	return "engagements"
}

// ToggleResult is returned by a toggle mutation: the actor's new state for the
// tuple and the content's ledger count for that kind after the mutation.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

// EngagementSummary holds per-kind counts for a content item plus the
// requesting actor's active state for each toggleable kind.
type EngagementSummary struct {
	ContentID   uint           `json:"content_id"`
	ContentType ContentType    `json:"content_type"`
	Counts      map[Kind]int64 `json:"counts"`
	ViewerState map[Kind]bool  `json:"viewer_state"`
}

// RankedContent is one entry of a trending listing: a content id and its
// score (count of matching ledger rows in the window).
type RankedContent struct {
	ContentID   uint        `json:"content_id"`
	ContentType ContentType `json:"content_type"`
	Score       int64       `json:"score"`
	LastAt      time.Time   `json:"last_at"`
}
