package entities

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Option is one possible outcome of a bet
type Option struct {
	ID        int64     `db:"id" json:"id"`
	BetID     int64     `db:"bet_id" json:"bet_id"`
	Text      string    `db:"option_text" json:"text"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MinOptions is the smallest number of distinct options a bet may have
const MinOptions = 2

// OptionSet is a validated, ordered list of case-insensitively distinct option texts
type OptionSet struct {
	texts []string
}

// DefineOptions trims each candidate, drops empty ones and removes case-only
// duplicates keeping the first spelling seen. Fewer than MinOptions survivors
// fail with ErrInsufficientOptions, and any text over MaxOptionLength
// characters fails with ErrTooLong.
func DefineOptions(rawTexts []string) (OptionSet, error) {
	seen := make(map[string]struct{}, len(rawTexts))
	texts := make([]string, 0, len(rawTexts))
	for _, raw := range rawTexts {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) > MaxOptionLength {
			return OptionSet{}, ErrTooLong.WithField("options").
				WithMessage(fmt.Sprintf("Each option must be at most %d characters.", MaxOptionLength))
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		texts = append(texts, text)
	}

	if len(texts) < MinOptions {
		return OptionSet{}, ErrInsufficientOptions.WithField("options")
	}
	return OptionSet{texts: texts}, nil
}

// Texts returns the option texts in order
func (s OptionSet) Texts() []string {
	out := make([]string, len(s.texts))
	copy(out, s.texts)
	return out
}

// Len returns the number of options
func (s OptionSet) Len() int {
	return len(s.texts)
}

// ToOptions builds unsaved options for betID, numbered by position
func (s OptionSet) ToOptions(betID int64) []*Option {
	options := make([]*Option, len(s.texts))
	for i, text := range s.texts {
		options[i] = &Option{
			BetID:    betID,
			Text:     text,
			Position: i,
		}
	}
	return options
}
