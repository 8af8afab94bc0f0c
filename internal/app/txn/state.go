package txn

// State is the phase of an optimistic transaction attempt. An attempt moves
// Idle -> Watching -> Reading -> Computing -> {Aborted | CommitAttempted};
// a rejected commit returns to Watching for the next attempt, a successful
// one ends at Committed.
type State int

const (
	StateIdle State = iota
	StateWatching
	StateReading
	StateComputing
	StateCommitAttempted
	StateAborted
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateReading:
		return "reading"
	case StateComputing:
		return "computing"
	case StateCommitAttempted:
		return "commit_attempted"
	case StateAborted:
		return "aborted"
	case StateCommitted:
		return "committed"
	default:
		return "unknown"
	}
}
