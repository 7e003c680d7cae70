package social

// Status is the relationship between a viewer and a subject, as seen by the viewer
type Status string

const (
	StatusSelf            Status = "self"
	StatusConnected       Status = "connected"
	StatusRequestSent     Status = "request_sent"
	StatusRequestReceived Status = "request_received"
	StatusNone            Status = "none"
)

// DeriveStatus computes the viewer's relationship to subject from both records.
// Precedence: Self > Connected > RequestSent > RequestReceived > None.
func DeriveStatus(viewer, subject *User) Status {
	switch {
	case viewer.ID == subject.ID:
		return StatusSelf
	case viewer.Connections.Contains(subject.ID) || subject.Connections.Contains(viewer.ID):
		return StatusConnected
	case subject.ConnectionRequests.Contains(viewer.ID):
		return StatusRequestSent
	case viewer.ConnectionRequests.Contains(subject.ID):
		return StatusRequestReceived
	default:
		return StatusNone
	}
}
