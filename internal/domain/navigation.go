package domain

import (
	"time"

	"github.com/google/uuid"
)

type NavigationIntent string

const (
	NavigationEdit   NavigationIntent = "edit"
	NavigationDelete NavigationIntent = "delete"
	NavigationBack   NavigationIntent = "back"
)

// NavigationRequest is issued by a screen. RecordID is nil for NavigationBack.
type NavigationRequest struct {
	Intent   NavigationIntent `json:"intent"`
	ScreenID uuid.UUID        `json:"screen_id"`
	RecordID *uuid.UUID       `json:"record_id,omitempty"`
	IssuedAt time.Time        `json:"issued_at"`
}
