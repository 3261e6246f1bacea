package roster

// Status tracks an officer's availability.
type Status string

const (
	// StatusAvailable means on duty and free for dispatch
	StatusAvailable Status = "available"

	// StatusAssigned means dispatched to an incident
	StatusAssigned Status = "assigned"

	// StatusResponding means dispatched to an SOS alert. Kept distinct from
	// assigned so emergency response is visible in displays and metrics.
	StatusResponding Status = "responding"

	// StatusOffDuty means not dispatchable this shift
	StatusOffDuty Status = "off-duty"
)

// Officer is a responder unit: a security officer or a medical team.
type Officer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Badge     string `json:"badge"`
	Status    Status `json:"status"`
	Location  string `json:"location"`
	AvatarRef string `json:"avatar_ref,omitempty"`
}

// Active reports whether the officer currently holds an assignment.
func (o *Officer) Active() bool {
	return o.Status == StatusAssigned || o.Status == StatusResponding
}
