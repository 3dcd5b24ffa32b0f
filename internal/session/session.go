// internal/session/session.go
//
// Client-side state machine for one puzzle session.
// Consumes a puzzle payload once, then operates purely on local state
// plus user actions; it never calls back into the server.
//
// Phases move forward only: intro → active → finished.
// Illegal operations (selecting a locked tile, submitting an incomplete
// chain, acting outside the active phase) are rejected as no-ops;
// they never panic and never corrupt state.

package session

import (
	"github.com/riddleyu/go-server/internal/puzzle"
)

// Phase is the coarse session state.
type Phase string

const (
	PhaseIntro    Phase = "intro"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

// Tag is the per-position feedback for a submitted chain.
// Possible values:
//   - "exact":   correct character in the correct position.
//   - "present": character occurs in the answer at a different position.
//   - "absent":  character does not occur in the answer.
type Tag string

const (
	TagExact   Tag = "exact"
	TagPresent Tag = "present"
	TagAbsent  Tag = "absent"
)

// MaxLives is the number of failed submissions a session survives.
const MaxLives = 5

const noSource = -1

// Attempt is one submitted chain with its feedback. Attempts are
// append-only; past attempts are never mutated.
type Attempt struct {
	Chain    []string `json:"chain"`
	Feedback []Tag    `json:"feedback"`
}

// Session holds the state of one interactive puzzle session.
type Session struct {
	p        *puzzle.Puzzle
	phase    Phase
	chain    [puzzle.AnswerLen]string
	source   [puzzle.AnswerLen]int // board position that filled each slot
	target   int                   // first empty slot
	lives    int
	attempts []Attempt
	won      bool
}

// New builds a session in the intro phase for a loaded puzzle.
func New(p *puzzle.Puzzle) *Session {
	s := &Session{p: p, phase: PhaseIntro, lives: MaxLives}
	for i := range s.source {
		s.source[i] = noSource
	}
	return s
}

// Start moves the session into active play. Legal only from intro.
func (s *Session) Start() bool {
	if s.phase != PhaseIntro {
		return false
	}
	s.phase = PhaseActive
	return true
}

// Select locks board position i into the current target slot.
// Legal only while active, when i is not already locked, and the chain
// still has an empty slot. The target then advances to the next empty
// slot (or stays put once the chain is full).
func (s *Session) Select(i int) bool {
	if s.phase != PhaseActive || i < 0 || i >= len(s.p.Board) {
		return false
	}
	if s.Locked(i) || s.chain[s.target] != "" {
		return false
	}
	s.chain[s.target] = s.p.Board[i]
	s.source[s.target] = i
	if s.target < puzzle.AnswerLen-1 {
		s.target++
	}
	return true
}

// Unselect clears slot and every slot after it, freeing their board
// positions, and moves the target back to slot. Later slots may have been
// chosen assuming the earlier one was fixed, so they cannot survive it.
func (s *Session) Unselect(slot int) bool {
	if s.phase != PhaseActive || slot < 0 || slot >= puzzle.AnswerLen {
		return false
	}
	if s.chain[slot] == "" {
		return false
	}
	for i := slot; i < puzzle.AnswerLen; i++ {
		s.chain[i] = ""
		s.source[i] = noSource
	}
	s.target = slot
	return true
}

// Reset clears the whole chain and all locks; the target returns to 0.
func (s *Session) Reset() bool {
	if s.phase != PhaseActive {
		return false
	}
	s.clearChain()
	return true
}

// Complete reports whether all four slots are filled.
// Completion never auto-submits.
func (s *Session) Complete() bool {
	for _, c := range s.chain {
		if c == "" {
			return false
		}
	}
	return true
}

// Submit scores the completed chain and applies the outcome as one unit:
// append the attempt, then either win, lose a life, or clear the chain
// for another try. Legal only while active with a complete chain.
func (s *Session) Submit() (Attempt, bool) {
	if s.phase != PhaseActive || !s.Complete() {
		return Attempt{}, false
	}

	att := Attempt{Chain: make([]string, puzzle.AnswerLen), Feedback: s.score()}
	copy(att.Chain, s.chain[:])
	s.attempts = append(s.attempts, att)

	if allExact(att.Feedback) {
		s.won = true
		s.phase = PhaseFinished
		return att, true
	}
	s.lives--
	if s.lives == 0 {
		s.phase = PhaseFinished
		return att, true
	}
	// Same puzzle, accumulated attempts, fresh chain.
	s.clearChain()
	return att, true
}

// score applies the simplified feedback rule: a non-exact character is
// "present" whenever it occurs anywhere in the answer. Unlike classic
// duplicate-aware guess scoring, present tags are not capped by remaining
// unmatched occurrences; a repeated character in the chain can earn more
// present tags than the answer warrants. Kept as-is: fixtures and the
// original client encode exactly this rule.
func (s *Session) score() []Tag {
	fb := make([]Tag, puzzle.AnswerLen)
	for i, c := range s.chain {
		switch {
		case c == s.p.Answer[i]:
			fb[i] = TagExact
		case contains(s.p.Answer, c):
			fb[i] = TagPresent
		default:
			fb[i] = TagAbsent
		}
	}
	return fb
}

func (s *Session) clearChain() {
	for i := range s.chain {
		s.chain[i] = ""
		s.source[i] = noSource
	}
	s.target = 0
}

// ----------------------------- accessors -----------------------------

// Puzzle returns the payload this session plays.
func (s *Session) Puzzle() *puzzle.Puzzle { return s.p }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Lives returns the remaining lives.
func (s *Session) Lives() int { return s.lives }

// Won reports whether an all-exact submission ended the session.
func (s *Session) Won() bool { return s.won }

// TargetSlot returns the first empty slot (or the last slot when full).
func (s *Session) TargetSlot() int { return s.target }

// Chain returns a copy of the current chain; empty slots are "".
func (s *Session) Chain() []string {
	out := make([]string, puzzle.AnswerLen)
	copy(out, s.chain[:])
	return out
}

// Locked reports whether board position i currently supplies a slot.
func (s *Session) Locked(i int) bool {
	for _, src := range s.source {
		if src == i {
			return true
		}
	}
	return false
}

// Attempts returns the submission log, oldest first.
func (s *Session) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func allExact(fb []Tag) bool {
	for _, t := range fb {
		if t != TagExact {
			return false
		}
	}
	return true
}

func contains(set []string, c string) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}
