package activity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Action names what happened to a trip
type Action string

const (
	ActionCreatedTrip        Action = "created_trip"
	ActionAddedMember        Action = "added_member"
	ActionUpdatedMemberRole  Action = "updated_member_role"
	ActionRemovedMember      Action = "removed_member"
	ActionAddedExpense       Action = "added_expense"
	ActionUpdatedExpense     Action = "updated_expense"
	ActionDeletedExpense     Action = "deleted_expense"
	ActionRecordedSettlement Action = "recorded_settlement"
)

// Entity types an activity item can point at
const (
	EntityTrip       = "trip"
	EntityMember     = "member"
	EntityExpense    = "expense"
	EntitySettlement = "settlement"
)

// Entry is what callers hand to the recorder
type Entry struct {
	TripID     string
	UserID     string
	Action     Action
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

// Item is a persisted activity row
type Item struct {
	ID         string    `db:"id" json:"id"`
	TripID     string    `db:"trip_id" json:"trip_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Action     Action    `db:"action" json:"action"`
	EntityType *string   `db:"entity_type" json:"entity_type,omitempty"`
	EntityID   *string   `db:"entity_id" json:"entity_id,omitempty"`
	Metadata   Metadata  `db:"metadata" json:"metadata"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Metadata is stored as a JSONB object. Value returns text so lib/pq sends
// it in text format.
type Metadata map[string]any

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into activity metadata", src)
	}

	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode activity metadata: %w", err)
	}
	*m = out
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
