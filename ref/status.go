package ref

// State is the resolution state of a single id in a Collection.
type State int

const (
	// Unresolved ids have not been part of a resolve yet.
	Unresolved State = iota
	// Pending ids are being fetched.
	Pending
	// Resolved ids have a cached entity.
	Resolved
	// Failed ids could not be fetched.
	Failed
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the resolution status of a single id.
type Status struct {
	State State
	// Err is the fetch error of a Failed id.
	Err error
}
