package build

// State tracks a build invocation through its stages. A failure at any
// stage moves to StateFailed and aborts the whole build; no stage is ever
// retried.
type State int

const (
	StateInit State = iota
	StateParsed
	StateResolved
	StateBuilt
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateParsed:
		return "parsed"
	case StateResolved:
		return "resolved"
	case StateBuilt:
		return "built"
	case StateFinalized:
		return "finalized"
	default:
		return "failed"
	}
}
