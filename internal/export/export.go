package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/newscheck/internal/models"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

const (
	linkColor       = "#87CEEB"
	suspiciousColor = "1"
	normalColor     = "2"
	mutedColor      = "8"
)

// WriteHeadlines writes display headlines in the requested format.
func WriteHeadlines(w io.Writer, headlines []models.Headline, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, headlines)
	case FormatCSV:
		return writeHeadlinesCSV(w, headlines, ',')
	case FormatTSV:
		return writeHeadlinesCSV(w, headlines, '\t')
	case FormatMarkdown:
		return writeHeadlinesMarkdown(w, headlines)
	default:
		return writeHeadlinesTable(w, headlines, opts)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeHeadlinesCSV(w io.Writer, headlines []models.Headline, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, h := range headlines {
		if err := writer.Write(csvRow(h)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeHeadlinesTable(w io.Writer, headlines []models.Headline, opts WriteOptions) error {
	if len(headlines) == 0 {
		_, err := fmt.Fprintln(w, "No matching articles.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, h := range headlines {
		fmt.Fprintln(tw, strings.Join(tableRow(h, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeHeadlinesMarkdown(w io.Writer, headlines []models.Headline) error {
	if len(headlines) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, h := range headlines {
		for _, line := range headlineMarkdown(h) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func headlineMarkdown(h models.Headline) []string {
	title := CleanText(h.Title)
	if title == "" {
		title = "(untitled)"
	}
	lines := []string{fmt.Sprintf("- **%s** (%s)", title, safe(h.Provider))}
	if link := safe(h.URL); link != "" {
		lines = append(lines, fmt.Sprintf("  URL: [Open article](<%s>)", link))
	}
	if h.Source != "" {
		lines = append(lines, fmt.Sprintf("  Source: %s", safe(h.Source)))
	}
	if h.Published != "" {
		lines = append(lines, fmt.Sprintf("  Published: %s", safe(h.Published)))
	}
	if h.Rating != "" {
		lines = append(lines, fmt.Sprintf("  Rating: %s", safe(h.Rating)))
	}
	if summary := CleanText(h.Description); summary != "" {
		lines = append(lines, fmt.Sprintf("  Summary: %s", summary))
	}
	return lines
}

func csvHeader() []string {
	return []string{
		"provider",
		"title",
		"source",
		"published",
		"url",
		"rating",
		"description",
	}
}

func csvRow(h models.Headline) []string {
	return []string{
		h.Provider,
		CleanText(h.Title),
		h.Source,
		h.Published,
		h.URL,
		h.Rating,
		CleanText(h.Description),
	}
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func tableHeader() []string {
	return []string{
		"provider",
		"title",
		"source",
		"url",
	}
}

func tableRow(h models.Headline, output *termenv.Output, opts WriteOptions) []string {
	title := truncateLabel(CleanText(h.Title), 80)
	if h.Rating != "" {
		title = fmt.Sprintf("%s [%s]", title, safe(h.Rating))
	}
	source := safe(h.Source)
	if source == "" {
		source = "-"
	}
	return []string{
		safe(h.Provider),
		title,
		source,
		linkCell(h.URL, output, opts),
	}
}

func linkCell(raw string, output *termenv.Output, opts WriteOptions) string {
	link := safe(raw)
	if link == "" {
		return "-"
	}
	display := link
	if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
		display = shortURLLabel(link)
	}
	if opts.ColorEnabled {
		display = output.String(display).Foreground(output.Color(linkColor)).String()
	}
	if opts.Hyperlinks {
		display = hyperlink(link, display)
	}
	return display
}

func colorize(output *termenv.Output, enabled bool, text string, color string) string {
	if !enabled || output == nil {
		return text
	}
	return output.String(text).Foreground(output.Color(color)).String()
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	return truncateLabel(label, 60)
}

func truncateLabel(label string, maxLen int) string {
	runes := []rune(label)
	if len(runes) <= maxLen {
		return label
	}
	return string(runes[:maxLen-3]) + "..."
}
