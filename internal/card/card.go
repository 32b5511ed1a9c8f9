package card

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Color codes produced by Classify. Single-colored cards keep their own
// letter (W, U, B, R or G).
const (
	Colorless  = 'C'
	Multicolor = 'M'
)

// ErrInvalidInput is returned for a malformed set code, rarity letter or CSV line
var ErrInvalidInput = errors.New("invalid input")

// Card represents one card of a set, reduced to its name and color code
type Card struct {
	Name  string // Display name as returned by Scryfall
	Color rune   // C, M or the single color letter
}

// Classify maps a card's color letters to a single color code
func Classify(colors []rune) rune {
	switch len(colors) {
	case 0:
		return Colorless
	case 1:
		return colors[0]
	default:
		return Multicolor
	}
}

// New builds a card from its name and the raw color strings of the upstream entry.
// Each color entry contributes its first character.
func New(name string, colors []string) (Card, error) {
	letters := make([]rune, 0, len(colors))
	for i, c := range colors {
		r, size := utf8.DecodeRuneInString(c)
		if size == 0 {
			return Card{}, fmt.Errorf("empty color at position %d for %q", i, name)
		}
		letters = append(letters, r)
	}
	return Card{Name: name, Color: Classify(letters)}, nil
}

// Line serializes the card as one CSV line, without the trailing newline
func (c Card) Line() string {
	return fmt.Sprintf("%s;%c", c.Name, c.Color)
}

// ParseLine is the inverse of Line
func ParseLine(line string) (Card, error) {
	idx := strings.LastIndex(line, ";")
	if idx <= 0 {
		return Card{}, fmt.Errorf("%w: line %q is not <name>;<color>", ErrInvalidInput, line)
	}

	code := line[idx+1:]
	if utf8.RuneCountInString(code) != 1 {
		return Card{}, fmt.Errorf("%w: color code %q must be a single character", ErrInvalidInput, code)
	}

	r, _ := utf8.DecodeRuneInString(code)
	return Card{Name: line[:idx], Color: r}, nil
}

// KnownColor reports whether r is a color code Classify can produce for Scryfall data
func KnownColor(r rune) bool {
	return strings.ContainsRune("WUBRGCM", r)
}
