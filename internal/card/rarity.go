package card

import (
	"fmt"
	"sort"
	"strings"
)

// Rarity is the tier of a card within its set
type Rarity int

const (
	Mythic Rarity = iota
	Rare
	Uncommon
	Common
)

// DefaultRarities is used when no rarity is requested
var DefaultRarities = []Rarity{Mythic, Rare, Uncommon}

var rarityLabels = map[Rarity]string{
	Mythic:   "M",
	Rare:     "R",
	Uncommon: "U",
	Common:   "C",
}

var rarityNames = map[Rarity]string{
	Mythic:   "mythic",
	Rare:     "rare",
	Uncommon: "uncommon",
	Common:   "common",
}

// Label returns the single letter used in Scryfall queries and output filenames
func (r Rarity) Label() string {
	if l, ok := rarityLabels[r]; ok {
		return l
	}
	return fmt.Sprintf("Rarity(%d)", int(r))
}

func (r Rarity) String() string {
	if n, ok := rarityNames[r]; ok {
		return n
	}
	return r.Label()
}

// ParseRarity parses a single rarity letter, case-insensitively
func ParseRarity(s string) (Rarity, error) {
	switch strings.ToUpper(s) {
	case "M":
		return Mythic, nil
	case "R":
		return Rare, nil
	case "U":
		return Uncommon, nil
	case "C":
		return Common, nil
	}
	return 0, fmt.Errorf("%w: rarity %q, choose one or more among M,R,U,C", ErrInvalidInput, s)
}

// ParseRarities parses flag values. Each value may itself hold several letters
// separated by commas or whitespace.
func ParseRarities(values []string) ([]Rarity, error) {
	var rarities []Rarity
	for _, v := range values {
		fields := strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			r, err := ParseRarity(f)
			if err != nil {
				return nil, err
			}
			rarities = append(rarities, r)
		}
	}
	return rarities, nil
}

// Unique drops duplicate rarities and returns the rest in M, R, U, C order
func Unique(rarities []Rarity) []Rarity {
	seen := make(map[Rarity]bool, len(rarities))
	var out []Rarity
	for _, r := range rarities {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateSetCode checks that a set code is a trigram without surrounding spaces
func ValidateSetCode(set string) error {
	if strings.TrimSpace(set) != set {
		return fmt.Errorf("%w: set %q cannot have leading or trailing spaces", ErrInvalidInput, set)
	}
	if len(set) != 3 {
		return fmt.Errorf("%w: set %q must be a trigram", ErrInvalidInput, set)
	}
	return nil
}
