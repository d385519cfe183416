package model

// Event names published to live dashboards.
const (
	EventRequestSubmitted = "request.submitted"
	EventRequestUpdated   = "request.updated"
)

// Event is a change notification sent after the change has been committed.
type Event struct {
	Event     string        `json:"event"`
	RequestID string        `json:"requestId"`
	Status    RequestStatus `json:"status"`
	Target    Target        `json:"target"`
}

// EventFor builds the notification for r.
func EventFor(name string, r *Request) Event {
	return Event{Event: name, RequestID: r.ID, Status: r.Status, Target: r.Target}
}
