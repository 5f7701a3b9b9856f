package model

import (
	"fmt"
	"time"
)

// Item is a single physical, trackable unit.
type Item struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	SerialNumber *string    `json:"serial_number,omitempty"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	ImagePath    *string    `json:"image_path,omitempty"`
	Status       ItemStatus `json:"status"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
}

// ItemStatus is the availability of an item.
type ItemStatus string

// Item statuses.
const (
	ItemStatusAvailable ItemStatus = "AVAILABLE"
	ItemStatusIssued    ItemStatus = "ISSUED"
	ItemStatusMissing   ItemStatus = "MISSING"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusIssued, ItemStatusMissing:
		return true
	}
	return false
}

// ItemEvent is something that happened to an item in the ledger.
type ItemEvent string

// Item events.
const (
	EventIssued          ItemEvent = "issued"
	EventReturned        ItemEvent = "returned"
	EventReturnedMissing ItemEvent = "returned_missing"
	EventReceived        ItemEvent = "received"
)

// transitions is the complete item state machine. Anything not listed is illegal.
var transitions = map[ItemStatus]map[ItemEvent]ItemStatus{
	ItemStatusAvailable: {
		EventIssued: ItemStatusIssued,
	},
	ItemStatusIssued: {
		EventReturned:        ItemStatusAvailable,
		EventReturnedMissing: ItemStatusMissing,
	},
	ItemStatusMissing: {
		EventReceived: ItemStatusAvailable,
	},
}

// Transition returns the status an item moves to when ev happens in status s.
func (s ItemStatus) Transition(ev ItemEvent) (ItemStatus, error) {
	next, ok := transitions[s][ev]
	if !ok {
		return s, fmt.Errorf("item is %s, cannot apply %q: %w", s, ev, ErrInvalidState)
	}
	return next, nil
}
