// internal/puzzle/puzzle.go
//
// Core data model for the daily puzzle.
// Defines:
//   - Puzzle: the immutable daily artifact (answer, riddles, board, slot map).
//   - Riddle: per-character clue text plus an English hint.
//   - Validate: structural checks every payload must pass before it is
//     cached or served.
//
// JSON field names match the original web client's wire format
// (chengyu/pinyin/riddles/grid/slotMap), so existing clients keep working.

package puzzle

import (
	"errors"
	"fmt"
)

const (
	// AnswerLen is the number of characters in the answer chain.
	AnswerLen = 4
	// BoardLen is the number of selectable characters on the board:
	// the 4 answer characters plus 3 distractors per slot.
	BoardLen = 16
	// CandidatesPerSlot is how many board characters map to each slot.
	CandidatesPerSlot = 4
)

// Riddle is one clue: Chinese riddle text plus an English hint.
type Riddle struct {
	Text string `json:"text"`
	Hint string `json:"hint"`
}

// Puzzle is the daily artifact. Created once by the generator for a given
// date, immutable thereafter, re-served from the cache until it expires.
type Puzzle struct {
	Date    string   `json:"date"`    // YYYY-MM-DD cache key
	Answer  []string `json:"chengyu"` // 4 characters, order-significant
	Pinyin  string   `json:"pinyin"`
	Meaning string   `json:"meaning"`
	Origin  string   `json:"origin"`
	Riddles []Riddle `json:"riddles"` // index-aligned with Answer
	Board   []string `json:"grid"`    // 16 characters, server-shuffled, fixed
	SlotOf  []int    `json:"slotMap"` // board position -> answer slot (0-3)
}

// Validate checks the structural invariants of a payload:
//   - Answer has exactly 4 characters, Riddles exactly 4 entries.
//   - Board and SlotOf have exactly 16 entries.
//   - SlotOf values are 0..3 with exactly 4 board positions per slot.
//   - For each slot, exactly one of its 4 candidates equals the answer
//     character for that slot.
//
// A payload failing any check is rejected outright; callers never repair
// or default fields.
func (p *Puzzle) Validate() error {
	if p == nil {
		return errors.New("puzzle: nil payload")
	}
	if p.Date == "" {
		return errors.New("puzzle: missing date")
	}
	if len(p.Answer) != AnswerLen {
		return fmt.Errorf("puzzle: answer has %d characters, want %d", len(p.Answer), AnswerLen)
	}
	for i, c := range p.Answer {
		if c == "" {
			return fmt.Errorf("puzzle: answer[%d] is empty", i)
		}
	}
	if len(p.Riddles) != AnswerLen {
		return fmt.Errorf("puzzle: %d riddles, want %d", len(p.Riddles), AnswerLen)
	}
	for i, r := range p.Riddles {
		if r.Text == "" {
			return fmt.Errorf("puzzle: riddle[%d] has no text", i)
		}
	}
	if len(p.Board) != BoardLen {
		return fmt.Errorf("puzzle: board has %d characters, want %d", len(p.Board), BoardLen)
	}
	if len(p.SlotOf) != BoardLen {
		return fmt.Errorf("puzzle: slot map has %d entries, want %d", len(p.SlotOf), BoardLen)
	}

	var perSlot [AnswerLen]int
	var matches [AnswerLen]int
	for i, slot := range p.SlotOf {
		if slot < 0 || slot >= AnswerLen {
			return fmt.Errorf("puzzle: slot map[%d]=%d out of range", i, slot)
		}
		perSlot[slot]++
		if p.Board[i] == "" {
			return fmt.Errorf("puzzle: board[%d] is empty", i)
		}
		if p.Board[i] == p.Answer[slot] {
			matches[slot]++
		}
	}
	for slot := 0; slot < AnswerLen; slot++ {
		if perSlot[slot] != CandidatesPerSlot {
			return fmt.Errorf("puzzle: slot %d has %d candidates, want %d", slot, perSlot[slot], CandidatesPerSlot)
		}
		if matches[slot] != 1 {
			return fmt.Errorf("puzzle: slot %d has %d candidates equal to the answer, want 1", slot, matches[slot])
		}
	}
	return nil
}

// AnswerString returns the answer characters joined into one string,
// the form recorded in the used-answers ledger.
func (p *Puzzle) AnswerString() string {
	out := ""
	for _, c := range p.Answer {
		out += c
	}
	return out
}
