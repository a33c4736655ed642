package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/jimezsa/newscheck/internal/models"
)

// Corroborate runs every provider concurrently against the same query and
// returns their outcomes sorted by provider name.
func Corroborate(ctx context.Context, providers []Provider, query string) []models.Outcome {
	var (
		wg      sync.WaitGroup
		results = make(chan models.Outcome, len(providers))
	)

	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			results <- p.Search(ctx, query)
		}(p)
	}

	wg.Wait()
	close(results)

	outcomes := make([]models.Outcome, 0, len(providers))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Provider < outcomes[j].Provider
	})
	return outcomes
}

// Tally counts outcomes by status.
type Tally struct {
	Found   int
	Empty   int
	Failed  int
	Skipped int
	Records int
}

func Count(outcomes []models.Outcome) Tally {
	var t Tally
	for _, outcome := range outcomes {
		switch outcome.Status {
		case models.StatusFound:
			t.Found++
		case models.StatusEmpty:
			t.Empty++
		case models.StatusFailed:
			t.Failed++
		case models.StatusSkipped:
			t.Skipped++
		}
		t.Records += len(outcome.Records)
	}
	return t
}

// Queried reports whether at least one provider actually issued a request.
func (t Tally) Queried() bool {
	return t.Found+t.Empty+t.Failed > 0
}
