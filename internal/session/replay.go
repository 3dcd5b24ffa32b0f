// internal/session/replay.go
//
// Deterministic reconstruction of a session from its action log.
// The session is a pure function of the puzzle payload plus the ordered
// user actions, so feeding the same log yields identical attempts,
// feedback and lives. That property backs fixture-driven tests and
// restoring an interrupted session.

package session

import "github.com/riddleyu/go-server/internal/puzzle"

// Op names a user action.
type Op string

const (
	OpStart    Op = "start"
	OpSelect   Op = "select"
	OpUnselect Op = "unselect"
	OpReset    Op = "reset"
	OpSubmit   Op = "submit"
)

// Action is one entry in a session's action log. Index carries the board
// position for select and the slot for unselect; other ops ignore it.
type Action struct {
	Op    Op  `json:"op"`
	Index int `json:"index,omitempty"`
}

// Replay rebuilds a session by applying actions in order. Illegal actions
// are no-ops during replay exactly as they are live, so a log captured
// from any client reproduces the same final state.
func Replay(p *puzzle.Puzzle, actions []Action) *Session {
	s := New(p)
	for _, a := range actions {
		s.Apply(a)
	}
	return s
}

// Apply executes one logged action. Returns false for illegal or
// unknown actions.
func (s *Session) Apply(a Action) bool {
	switch a.Op {
	case OpStart:
		return s.Start()
	case OpSelect:
		return s.Select(a.Index)
	case OpUnselect:
		return s.Unselect(a.Index)
	case OpReset:
		return s.Reset()
	case OpSubmit:
		_, ok := s.Submit()
		return ok
	}
	return false
}
