package sos

import "time"

// Status tracks an SOS alert's lifecycle.
type Status string

const (
	// StatusActive means the alert needs attention, responded or not
	StatusActive Status = "active"

	// StatusResolved is terminal. Alerts are kept for history, never deleted.
	StatusResolved Status = "resolved"
)

// Location is where the panic button was pressed.
type Location struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
}

// RespondingOfficer is a denormalized display snapshot of the officer
// dispatched to the alert. The roster owns the officer's mutable state.
type RespondingOfficer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Badge     string `json:"badge"`
	AvatarRef string `json:"avatar_ref,omitempty"`
}

// Alert is a panic-button-triggered emergency event.
// Invariant: Responded is true exactly when RespondingOfficer is set.
type Alert struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id,omitempty"`
	UserName          string             `json:"user_name,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
	Location          Location           `json:"location"`
	Status            Status             `json:"status"`
	Responded         bool               `json:"responded"`
	RespondingOfficer *RespondingOfficer `json:"responding_officer,omitempty"`
}

// Anonymous reports whether the alert has no identified user.
func (a *Alert) Anonymous() bool {
	return a.UserID == "" && a.UserName == ""
}

// NewAlert is the ingestion payload from the external feed.
type NewAlert struct {
	UserID    string    `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Location  Location  `json:"location"`
}
