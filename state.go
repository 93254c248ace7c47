package uvcmonitor

type State int

const (
	StateClosed State = iota
	StateOpened
	StatePreviewing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpened:
		return "opened"
	case StatePreviewing:
		return "previewing"
	}
	return "unknown"
}
