package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/newscheck/internal/classifier"
	"github.com/jimezsa/newscheck/internal/models"
	"github.com/jimezsa/newscheck/internal/verdict"
	"github.com/muesli/termenv"
)

// CheckResult is everything one `check` run produced.
type CheckResult struct {
	Text            string
	Verdict         verdict.Report
	Prediction      *classifier.Prediction
	PredictionError string
	Outcomes        []models.Outcome
}

type outcomeJSON struct {
	Provider string            `json:"provider"`
	Status   models.Status     `json:"status"`
	Attempts int               `json:"attempts"`
	Query    string            `json:"query,omitempty"`
	Error    string            `json:"error,omitempty"`
	Records  []json.RawMessage `json:"records"`
}

type predictionJSON struct {
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type checkJSON struct {
	Text          string          `json:"text"`
	Verdict       verdict.Report  `json:"verdict"`
	Classifier    *predictionJSON `json:"classifier,omitempty"`
	Corroboration []outcomeJSON   `json:"corroboration,omitempty"`
}

func toOutcomeJSON(outcomes []models.Outcome) []outcomeJSON {
	out := make([]outcomeJSON, 0, len(outcomes))
	for _, o := range outcomes {
		records := o.Records
		if records == nil {
			records = []models.Record{}
		}
		out = append(out, outcomeJSON{
			Provider: o.Provider,
			Status:   o.Status,
			Attempts: o.Attempts,
			Query:    o.Query,
			Error:    o.ErrorText(),
			Records:  records,
		})
	}
	return out
}

// WriteSearch writes corroboration outcomes. JSON keeps provider records
// exactly as received; the other formats show derived headlines.
func WriteSearch(w io.Writer, outcomes []models.Outcome, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, toOutcomeJSON(outcomes))
	case FormatMarkdown:
		return writeOutcomesMarkdown(w, outcomes)
	case FormatCSV, FormatTSV:
		return WriteHeadlines(w, CollectHeadlines(outcomes), format, opts)
	default:
		if err := writeStatusTable(w, outcomes, opts); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return writeHeadlinesTable(w, CollectHeadlines(outcomes), opts)
	}
}

func writeStatusTable(w io.Writer, outcomes []models.Outcome, opts WriteOptions) error {
	output := termenv.NewOutput(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "provider\tstatus\tattempts\tresults\tquery")
	for _, o := range outcomes {
		query := o.Query
		if query == "" {
			query = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			o.Provider,
			colorize(output, opts.ColorEnabled, string(o.Status), statusColor(o.Status)),
			o.Attempts,
			len(o.Records),
			truncateLabel(query, 60),
		)
	}
	return tw.Flush()
}

func statusColor(status models.Status) string {
	switch status {
	case models.StatusFound:
		return normalColor
	case models.StatusFailed:
		return suspiciousColor
	default:
		return mutedColor
	}
}

func writeOutcomesMarkdown(w io.Writer, outcomes []models.Outcome) error {
	if len(outcomes) == 0 {
		_, err := fmt.Fprintln(w, "No providers selected.")
		return err
	}
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s (%s, %d attempts)\n", o.Provider, o.Status, o.Attempts)
		if o.Query != "" {
			fmt.Fprintf(w, "Query: `%s`\n", o.Query)
		}
		if text := o.ErrorText(); text != "" && o.Status == models.StatusFailed {
			fmt.Fprintf(w, "Error: %s\n", strings.ReplaceAll(text, "\n", "; "))
		}
		for _, h := range models.Headlines(o) {
			for _, line := range headlineMarkdown(h) {
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// WriteCheck writes a verdict report, the classifier answer and any
// corroboration outcomes.
func WriteCheck(w io.Writer, result CheckResult, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, toCheckJSON(result))
	case FormatCSV:
		return writeCheckCSV(w, result, ',')
	case FormatTSV:
		return writeCheckCSV(w, result, '\t')
	case FormatMarkdown:
		return writeCheckMarkdown(w, result)
	default:
		return writeCheckTable(w, result, opts)
	}
}

func toCheckJSON(result CheckResult) checkJSON {
	out := checkJSON{
		Text:    result.Text,
		Verdict: result.Verdict,
	}
	if result.Prediction != nil {
		label := "fake"
		if result.Prediction.Real() {
			label = "real"
		}
		out.Classifier = &predictionJSON{Label: label, Confidence: result.Prediction.Confidence}
	} else if result.PredictionError != "" {
		out.Classifier = &predictionJSON{Error: result.PredictionError}
	}
	if len(result.Outcomes) > 0 {
		out.Corroboration = toOutcomeJSON(result.Outcomes)
	}
	return out
}

// writeCheckCSV emits one row per check followed by a verdict row.
func writeCheckCSV(w io.Writer, result CheckResult, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	rows := [][]string{{"check", "status", "weight", "detail"}}
	for _, c := range result.Verdict.Checks {
		rows = append(rows, []string{c.Name, c.Status(), strconv.Itoa(c.Weight), c.Detail})
	}
	rows = append(rows, []string{
		"verdict",
		string(result.Verdict.Label),
		strconv.Itoa(result.Verdict.Score),
		fmt.Sprintf("threshold %d", result.Verdict.Threshold),
	})
	if result.Prediction != nil {
		rows = append(rows, []string{"classifier", result.Prediction.String(), "", ""})
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func writeCheckMarkdown(w io.Writer, result CheckResult) error {
	r := result.Verdict
	fmt.Fprintf(w, "# Verdict: %s\n\n", verdictTitle(r.Label))
	fmt.Fprintf(w, "Score %d (threshold %d)\n\n", r.Score, r.Threshold)
	fmt.Fprintln(w, "## Checks")
	for _, c := range r.Checks {
		fmt.Fprintf(w, "- **%s** (%s, weight %d): %s\n", c.Name, c.Status(), c.Weight, c.Detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Why")
	for _, reason := range r.Reasons {
		fmt.Fprintf(w, "- %s\n", reason)
	}
	if line := predictionLine(result); line != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Classifier: %s\n", line)
	}
	if len(result.Outcomes) > 0 {
		fmt.Fprintln(w)
		return writeOutcomesMarkdown(w, result.Outcomes)
	}
	return nil
}

func writeCheckTable(w io.Writer, result CheckResult, opts WriteOptions) error {
	r := result.Verdict
	output := termenv.NewOutput(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "check\tstatus\tweight\tdetail")
	for _, c := range r.Checks {
		color := normalColor
		if c.Suspicious {
			color = suspiciousColor
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Name, colorize(output, opts.ColorEnabled, c.Status(), color), c.Weight, c.Detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	color := normalColor
	if r.Fake() {
		color = suspiciousColor
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verdict: %s (score %d, threshold %d)\n",
		colorize(output, opts.ColorEnabled, verdictTitle(r.Label), color), r.Score, r.Threshold)
	for _, reason := range r.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	if line := predictionLine(result); line != "" {
		fmt.Fprintf(w, "Classifier: %s\n", line)
	}

	if len(result.Outcomes) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	if err := writeStatusTable(w, result.Outcomes, opts); err != nil {
		return err
	}
	headlines := CollectHeadlines(result.Outcomes)
	if len(headlines) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return writeHeadlinesTable(w, headlines, opts)
}

func verdictTitle(label verdict.Label) string {
	switch label {
	case verdict.LabelPossiblyFake:
		return "Possibly FAKE"
	case verdict.LabelLikelyReal:
		return "Likely REAL"
	default:
		return string(label)
	}
}

func predictionLine(result CheckResult) string {
	if result.Prediction != nil {
		return result.Prediction.String()
	}
	if result.PredictionError != "" {
		return "unavailable (" + result.PredictionError + ")"
	}
	return ""
}
