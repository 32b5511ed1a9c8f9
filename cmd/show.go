package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"unicode/utf8"

	colorize "github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/setcolors/internal/card"
	"github.com/arcanaland/setcolors/internal/harvest"
)

var showCmd = &cobra.Command{
	Use:   "show <set>",
	Short: "Print the classified cards of a set without writing files",
	Long: `Show fetches the same cards as the root command and prints them grouped by
rarity, with a color swatch and the per-color counts of each rarity.

Examples:
  setcolors show NEO
  setcolors show DMU -r m`,
	Args: setArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		set := args[0]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rarities, err := requestedRarities(cmd, cfg)
		if err != nil {
			return err
		}

		logger := newLogger(cmd)
		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := newMemoryStore()
		report := harvest.New(client, store, logger).Run(ctx, set, rarities)

		out := cmd.OutOrStdout()
		width := terminalWidth(out)
		for _, res := range report.Results {
			if res.Err != nil {
				continue
			}
			displayRarity(out, res.Rarity, store.cards(res.Rarity), width)
		}

		if failed := report.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d rarities failed: %w", len(failed), len(report.Results), report.Err())
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}

// capitalize upper-cases the first letter of an ASCII word
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// memoryStore keeps fetched cards so they can be printed in rarity order
type memoryStore struct {
	mu    sync.Mutex
	byRar map[card.Rarity][]card.Card
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byRar: make(map[card.Rarity][]card.Card)}
}

func (s *memoryStore) Write(set string, rarity card.Rarity, cards []card.Card) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRar[rarity] = cards
	return "", nil
}

func (s *memoryStore) cards(rarity card.Rarity) []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byRar[rarity]
}

// swatchHex gives each color code a display color
var swatchHex = map[rune]string{
	'W': "#f8e7b9",
	'U': "#0e68ab",
	'B': "#3d3431",
	'R': "#d3202a",
	'G': "#00733e",
	'M': "#c9a227",
	'C': "#a8a3a0",
}

// colorOrder is the order per-color counts are printed in
const colorOrder = "WUBRGMC"

// terminalWidth returns the width of w when it is a terminal, 80 otherwise
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// swatch returns the color code on a block of the card's color, or the
// bracketed code when colors are disabled. Both are four cells wide.
func swatch(code rune) string {
	hex, ok := swatchHex[code]
	if colorize.NoColor || !ok {
		return fmt.Sprintf("[%c] ", code)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Sprintf("[%c] ", code)
	}
	r, g, b := c.RGB255()
	fg := "\x1b[97m"
	if l, _, _ := c.Lab(); l > 0.6 {
		fg = "\x1b[30m"
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s %c \x1b[0m ", r, g, b, fg, code)
}

// colorCounts returns "W 3  U 4 ..." for the codes present in cards
func colorCounts(cards []card.Card) string {
	counts := make(map[rune]int)
	for _, c := range cards {
		counts[c.Color]++
	}

	var parts []string
	for _, code := range colorOrder {
		if counts[code] > 0 {
			parts = append(parts, fmt.Sprintf("%c %d", code, counts[code]))
			delete(counts, code)
		}
	}

	// codes outside the usual alphabet, in a stable order
	var rest []rune
	for code := range counts {
		rest = append(rest, code)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, code := range rest {
		parts = append(parts, fmt.Sprintf("%c %d", code, counts[code]))
	}

	return strings.Join(parts, "  ")
}

// displayRarity prints a header and the cards of a rarity in as many columns
// as the width allows
func displayRarity(w io.Writer, rarity card.Rarity, cards []card.Card, width int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n",
		colorize.CyanString("%s (%s) · %d cards", capitalize(rarity.String()), rarity.Label(), len(cards)),
		colorize.HiBlackString("%s", colorCounts(cards)))

	if len(cards) == 0 {
		return
	}

	// four cells of swatch, the name, two spaces of gap
	cellWidth := 0
	for _, c := range cards {
		if n := utf8.RuneCountInString(c.Name); n > cellWidth {
			cellWidth = n
		}
	}
	cellWidth += 6

	columns := (width - 2) / cellWidth
	if columns < 1 {
		columns = 1
	}
	rows := (len(cards) + columns - 1) / columns

	for row := 0; row < rows; row++ {
		var line strings.Builder
		line.WriteString("  ")
		for col := 0; col < columns; col++ {
			i := col*rows + row
			if i >= len(cards) {
				break
			}
			c := cards[i]
			line.WriteString(swatch(c.Color))
			line.WriteString(c.Name)
			if col < columns-1 {
				line.WriteString(strings.Repeat(" ", cellWidth-4-utf8.RuneCountInString(c.Name)))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
