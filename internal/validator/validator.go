package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arcanaland/setcolors/internal/card"
	"github.com/arcanaland/setcolors/internal/export"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
	Files    int
	Cards    int
}

// Validator checks a directory of rarity files written by setcolors
type Validator struct {
	Dir     string
	Set     string        // only check files of this set when non-empty
	Expect  []card.Rarity // rarities whose file must exist, requires Set
	Results ValidationResults
}

func NewValidator(dir string) *Validator {
	return &Validator{
		Dir:     dir,
		Results: ValidationResults{},
	}
}

func (v *Validator) Validate() (ValidationResults, error) {
	if info, err := os.Stat(v.Dir); err != nil {
		return v.Results, fmt.Errorf("output directory not found: %s", v.Dir)
	} else if !info.IsDir() {
		return v.Results, fmt.Errorf("%s is not a directory", v.Dir)
	}
	if len(v.Expect) > 0 && v.Set == "" {
		return v.Results, fmt.Errorf("expected rarities require a set code")
	}

	files, err := v.collectFiles()
	if err != nil {
		return v.Results, err
	}

	if len(files) == 0 {
		v.Results.Errors = append(v.Results.Errors, "no rarity files found")
	}

	for _, f := range files {
		v.validateFile(f)
	}
	v.validateExpected(files)

	return v.Results, nil
}

type rarityFile struct {
	path   string
	set    string
	rarity card.Rarity
}

// collectFiles lists the <set>.<rarity>.csv files of the directory
func (v *Validator) collectFiles() ([]rarityFile, error) {
	matches, err := filepath.Glob(filepath.Join(v.Dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var files []rarityFile
	for _, path := range matches {
		set, rarity, err := export.ParseFilename(path)
		if err != nil {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("skipping %s: not a rarity file", filepath.Base(path)))
			continue
		}
		if v.Set != "" && set != v.Set {
			continue
		}
		files = append(files, rarityFile{path: path, set: set, rarity: rarity})
	}
	return files, nil
}

// validateFile parses every line and checks the color codes
func (v *Validator) validateFile(f rarityFile) {
	name := filepath.Base(f.path)
	cards, err := export.Load(f.path)
	if err != nil {
		v.Results.Errors = append(v.Results.Errors, err.Error())
		return
	}
	v.Results.Files++
	v.Results.Cards += len(cards)

	if len(cards) == 0 {
		v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf("%s has no cards", name))
		return
	}

	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if !card.KnownColor(c.Color) {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: unknown color code %q for %s", name, c.Color, c.Name))
		}
		if seen[c.Name] {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: %s is listed more than once", name, c.Name))
		}
		seen[c.Name] = true
	}
}

// validateExpected reports requested rarities without a file
func (v *Validator) validateExpected(files []rarityFile) {
	found := make(map[card.Rarity]bool, len(files))
	for _, f := range files {
		found[f.rarity] = true
	}
	for _, r := range card.Unique(v.Expect) {
		if !found[r] {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("missing file %s", export.Filename(v.Set, r)))
		}
	}
}
