package session

// State of the interaction loop.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateDisplaying
	StateAwaitingKeypress
	StateCopying
	StateExecuting
	StateAborting
	StateTerminated
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateRequesting:       "requesting",
	StateDisplaying:       "displaying",
	StateAwaitingKeypress: "awaiting_keypress",
	StateCopying:          "copying",
	StateExecuting:        "executing",
	StateAborting:         "aborting",
	StateTerminated:       "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Action is the user's decision about the generated command.
type Action int

const (
	Abort Action = iota
	Copy
	Execute
)

func (a Action) String() string {
	switch a {
	case Copy:
		return "copy"
	case Execute:
		return "execute"
	}
	return "abort"
}

// ActionForKey maps a keypress to an action. c/C copies, e/E executes,
// anything else aborts.
func ActionForKey(key byte) Action {
	switch key {
	case 'c', 'C':
		return Copy
	case 'e', 'E':
		return Execute
	}
	return Abort
}

// state after the action is dispatched
func (a Action) state() State {
	switch a {
	case Copy:
		return StateCopying
	case Execute:
		return StateExecuting
	}
	return StateAborting
}
