// Package verdict scores a news text with a fixed set of weighted pattern
// checks.
package verdict

import (
	"strings"

	"github.com/jimezsa/newscheck/internal/models"
)

// Threshold is the score at which a text is labelled possibly fake.
const Threshold = 3

type Label string

const (
	LabelPossiblyFake Label = "possibly fake"
	LabelLikelyReal   Label = "likely real"
)

const (
	CheckSensational = "Sensational phrasing"
	CheckPunctuation = "Punctuation patterns"
	CheckBuzzwords   = "Buzzwords"
	CheckLiveMatch   = "Live article match"
)

var (
	sensationalWords = []string{"shocking", "unbelievable", "terrifying"}
	punctuationRuns  = []string{"!!!", "???"}
	buzzwords        = []string{"hoax", "conspiracy", "cover-up"}
)

var (
	fakeReasons = []string{
		"Contains emotionally manipulative or clickbait language",
		"No matching credible sources were detected",
		"Structure and phrasing don't align with real journalism",
	}
	realReasons = []string{
		"Language and tone are consistent with professional writing",
		"No strong red flags raised in pattern checks",
		"Appears structurally sound like verified news articles",
	}
)

type Check struct {
	Name       string `json:"name"`
	Suspicious bool   `json:"suspicious"`
	Weight     int    `json:"weight"`
	Detail     string `json:"detail"`
}

// Status is the one-word form of the check result.
func (c Check) Status() string {
	if c.Suspicious {
		return "suspicious"
	}
	return "normal"
}

type Report struct {
	Checks    []Check  `json:"checks"`
	Score     int      `json:"score"`
	Threshold int      `json:"threshold"`
	Label     Label    `json:"label"`
	Reasons   []string `json:"reasons"`
}

// Fake reports whether the score reached the threshold.
func (r Report) Fake() bool {
	return r.Label == LabelPossiblyFake
}

// Analyze runs the checks in a fixed order. outcomes are the corroboration
// results, if any; without them the live article match counts as suspicious.
func Analyze(text string, outcomes []models.Outcome) Report {
	lower := strings.ToLower(text)

	checks := []Check{
		newCheck(CheckSensational, 1, containsAny(lower, sensationalWords)),
		newCheck(CheckPunctuation, 1, containsAny(text, punctuationRuns)),
		newCheck(CheckBuzzwords, 1, containsAny(lower, buzzwords)),
		liveMatch(outcomes),
	}

	report := Report{Checks: checks, Threshold: Threshold}
	for _, check := range checks {
		if check.Suspicious {
			report.Score += check.Weight
		}
	}

	if report.Score >= Threshold {
		report.Label = LabelPossiblyFake
		report.Reasons = append([]string(nil), fakeReasons...)
	} else {
		report.Label = LabelLikelyReal
		report.Reasons = append([]string(nil), realReasons...)
	}
	return report
}

func newCheck(name string, weight int, suspicious bool) Check {
	detail := "appears natural"
	if suspicious {
		detail = "indicates unusual or fake-like patterns"
	}
	return Check{Name: name, Suspicious: suspicious, Weight: weight, Detail: detail}
}

func liveMatch(outcomes []models.Outcome) Check {
	queried, found := 0, 0
	for _, outcome := range outcomes {
		if outcome.Status == models.StatusSkipped {
			continue
		}
		queried++
		if outcome.Found() {
			found++
		}
	}

	check := newCheck(CheckLiveMatch, 2, queried == 0 || found == 0)
	switch {
	case queried == 0:
		check.Detail = "no live sources were consulted"
	case found == 0:
		check.Detail = "no matching articles from live sources"
	}
	return check
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
