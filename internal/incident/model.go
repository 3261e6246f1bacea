package incident

import "time"

// Status tracks where an incident is in its lifecycle.
type Status string

const (
	// StatusPending means reported, no officers dispatched yet
	StatusPending Status = "pending"

	// StatusInProgress means officers are assigned or on scene
	StatusInProgress Status = "in-progress"

	// StatusResolved is terminal: no transition out, no further assignment
	StatusResolved Status = "resolved"
)

// Priority ranks how urgently an incident needs a response.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AssignmentStatus is the per-officer state on an incident.
type AssignmentStatus string

const (
	AssignmentEnRoute AssignmentStatus = "en-route"
	AssignmentOnSite  AssignmentStatus = "on-site"
)

// AssignedOfficer is a denormalized display snapshot of a dispatched officer.
// It references the officer by id; the roster owns the officer's mutable state.
type AssignedOfficer struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Status AssignmentStatus `json:"status"`
	ETA    string           `json:"estimated_arrival,omitempty"`
}

// Reporter identifies who filed the incident. Nil on the incident means the
// report is anonymous.
type Reporter struct {
	Name         string `json:"name"`
	MatricNumber string `json:"matric_number,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

// Coordinates is an optional map position for the incident location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Incident is a reported security/safety event.
type Incident struct {
	ID               string            `json:"id"`
	Type             string            `json:"type"`
	Description      string            `json:"description"`
	Location         string            `json:"location"`
	Coordinates      *Coordinates      `json:"coordinates,omitempty"`
	Status           Status            `json:"status"`
	Priority         Priority          `json:"priority"`
	ReportedBy       *Reporter         `json:"reported_by,omitempty"`
	AssignedOfficers []AssignedOfficer `json:"assigned_officers"`
	ReportedAt       time.Time         `json:"reported_at,omitempty"`
}

// NewIncident is the report-ingestion payload.
type NewIncident struct {
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Priority    Priority     `json:"priority"`
	ReportedBy  *Reporter    `json:"reported_by,omitempty"`
	ReportedAt  time.Time    `json:"reported_at,omitempty"`
}
