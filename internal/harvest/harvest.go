package harvest

import (
	"context"
	"fmt"

	"github.com/arcanaland/setcolors/internal/card"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrent bounds the per-rarity goroutines; there are only four rarities
const MaxConcurrent = 4

// Fetcher retrieves the booster cards of one rarity of a set
type Fetcher interface {
	SearchCards(ctx context.Context, set string, rarity card.Rarity) ([]card.Card, error)
}

// Store persists the cards of one rarity and returns where they went
type Store interface {
	Write(set string, rarity card.Rarity, cards []card.Card) (string, error)
}

// RarityError scopes a pipeline failure to its rarity
type RarityError struct {
	Rarity card.Rarity
	Err    error
}

func (e *RarityError) Error() string {
	return fmt.Sprintf("rarity %s: %v", e.Rarity.Label(), e.Err)
}

func (e *RarityError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one rarity's pipeline
type Result struct {
	Rarity card.Rarity
	Path   string
	Cards  int
	Err    error
}

// Report collects the results of a run in M, R, U, C order
type Report struct {
	Set     string
	Results []Result
}

// Failed returns the results whose pipeline failed
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err combines every rarity failure, nil when all succeeded
func (r *Report) Err() error {
	var err error
	for _, res := range r.Results {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// Harvester runs the fetch and write pipeline for each requested rarity
type Harvester struct {
	fetcher Fetcher
	store   Store
	log     logrus.FieldLogger
}

// New creates a Harvester. A nil logger falls back to the logrus standard logger.
func New(fetcher Fetcher, store Store, log logrus.FieldLogger) *Harvester {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Harvester{fetcher: fetcher, store: store, log: log}
}

// Run processes each distinct rarity concurrently and waits for all of them.
// A failing rarity does not stop the others; failures are reported in the
// returned Report.
func (h *Harvester) Run(ctx context.Context, set string, rarities []card.Rarity) *Report {
	unique := card.Unique(rarities)
	report := &Report{Set: set, Results: make([]Result, len(unique))}

	var g errgroup.Group
	g.SetLimit(MaxConcurrent)

	for i, rarity := range unique {
		i, rarity := i, rarity
		g.Go(func() error {
			report.Results[i] = h.runOne(ctx, set, rarity)
			return nil
		})
	}
	g.Wait()

	return report
}

func (h *Harvester) runOne(ctx context.Context, set string, rarity card.Rarity) Result {
	log := h.log.WithFields(logrus.Fields{"set": set, "rarity": rarity.Label()})
	log.Info("retrieving cards")

	res := Result{Rarity: rarity}

	cards, err := h.fetcher.SearchCards(ctx, set, rarity)
	if err != nil {
		res.Err = &RarityError{Rarity: rarity, Err: err}
		log.WithError(err).Error("fetch failed")
		return res
	}
	res.Cards = len(cards)

	path, err := h.store.Write(set, rarity, cards)
	if err != nil {
		res.Err = &RarityError{Rarity: rarity, Err: err}
		log.WithError(err).Error("write failed")
		return res
	}
	res.Path = path

	log.WithFields(logrus.Fields{"cards": len(cards), "path": path}).Info("wrote cards")
	return res
}
