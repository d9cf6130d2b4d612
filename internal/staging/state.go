package staging

// State is the lifecycle state of a File.
type State int

const (
	StateDownloading State = iota
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDownloading:
		return "downloading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
