package workflow

// Status is a request's lifecycle state. The literal values are persisted and
// compared verbatim on the wire — do not rename.
type Status string

const (
	StatusSubmitted Status = "Submitted"
	StatusNeedInfo  Status = "NeedInfo"
	StatusAccepted  Status = "Accepted"
	StatusSuspended Status = "Suspended"
	StatusRejected  Status = "Rejected"
	StatusClosed    Status = "Closed"
)

// All lists every status in workflow order.
var All = []Status{
	StatusSubmitted,
	StatusNeedInfo,
	StatusAccepted,
	StatusSuspended,
	StatusRejected,
	StatusClosed,
}

// transitions is the complete legality table. Rejected and Closed are
// terminal. Submitted is only ever re-entered through Resubmit, which has its
// own authorization rule and is deliberately absent here.
var transitions = map[Status][]Status{
	StatusSubmitted: {StatusNeedInfo, StatusAccepted, StatusSuspended, StatusRejected},
	StatusNeedInfo:  {StatusAccepted, StatusSuspended, StatusRejected},
	StatusAccepted:  {StatusClosed},
	StatusSuspended: {StatusAccepted, StatusRejected},
	StatusRejected:  {},
	StatusClosed:    {},
}

// IsValid reports whether s is one of the six known statuses.
func IsValid(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// IsTransitionAllowed is the single source of truth for transition legality.
// It is pure and role-independent; the lifecycle service must reject any move
// this returns false for.
func IsTransitionAllowed(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	return IsValid(s) && len(transitions[s]) == 0
}

// CanResubmitFrom reports whether the resubmit operation may return a request
// in state s to Submitted, and whether doing so is reserved to reviewer-like
// actors (true) or to the original requester (false).
func CanResubmitFrom(s Status) (allowed bool, reviewerOnly bool) {
	switch s {
	case StatusNeedInfo:
		return true, false
	case StatusSuspended, StatusRejected:
		return true, true
	default:
		return false, false
	}
}
