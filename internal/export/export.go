package export

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcanaland/setcolors/internal/card"
)

// ErrFilesystem is returned when an output file cannot be created, written or read
var ErrFilesystem = errors.New("filesystem failure")

// Filename returns the output file name for a set and rarity, e.g. NEO.R.csv
func Filename(set string, rarity card.Rarity) string {
	return fmt.Sprintf("%s.%s.csv", set, rarity.Label())
}

// Writer writes card lists to an output directory
type Writer struct {
	Dir string
}

// NewWriter creates a writer for dir, "." when empty
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{Dir: dir}
}

// Path returns where Write puts the file for set and rarity
func (w *Writer) Path(set string, rarity card.Rarity) string {
	return filepath.Join(w.Dir, Filename(set, rarity))
}

// Write serializes cards one per line, with a trailing newline, creating or
// truncating the rarity's file. It returns the written path.
func (w *Writer) Write(set string, rarity card.Rarity, cards []card.Card) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %v", ErrFilesystem, err)
	}

	path := w.Path(set, rarity)
	if err := os.WriteFile(path, Encode(cards), 0644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	return path, nil
}

// Encode returns the file content for cards
func Encode(cards []card.Card) []byte {
	lines := make([]string, len(cards))
	for i, c := range cards {
		lines[i] = c.Line()
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// Load reads an output file back. Blank lines are skipped; a malformed line
// fails with its line number.
func Load(path string) ([]card.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	defer file.Close()

	var cards []card.Card
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		c, err := card.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), lineNo, err)
		}
		cards = append(cards, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	return cards, nil
}

// ParseFilename splits an output file name into its set code and rarity
func ParseFilename(name string) (string, card.Rarity, error) {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	if base == filepath.Base(name) {
		return "", 0, fmt.Errorf("%w: %s is not a .csv file", card.ErrInvalidInput, name)
	}

	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: %s is not <set>.<rarity>.csv", card.ErrInvalidInput, name)
	}

	set := base[:idx]
	if err := card.ValidateSetCode(set); err != nil {
		return "", 0, err
	}
	rarity, err := card.ParseRarity(base[idx+1:])
	if err != nil {
		return "", 0, err
	}
	return set, rarity, nil
}
