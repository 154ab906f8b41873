package controller

// State is the session lifecycle state of the controller.
type State int

const (
	// StateIdle means no session is live.
	StateIdle State = iota
	// StateFilling means a session has started and the first assets are
	// still rendering.
	StateFilling
	// StatePlaying means audio is being delivered.
	StatePlaying
	// StatePaused means delivery is suspended, session still live.
	StatePaused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilling:
		return "filling"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// stateMachine guards session transitions. The table is plain data so
// it can be tested on its own.
type stateMachine struct {
	current     State
	transitions map[State][]State
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:    {StateFilling},
			StateFilling: {StatePlaying, StatePaused, StateIdle},
			StatePlaying: {StatePaused, StateFilling, StateIdle},
			StatePaused:  {StatePlaying, StateIdle},
		},
	}
}

// transition moves to the target state if the table allows it.
func (sm *stateMachine) transition(to State) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			sm.current = to
			return true
		}
	}
	return false
}

func (sm *stateMachine) state() State { return sm.current }
