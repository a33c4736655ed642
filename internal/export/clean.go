package export

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/newscheck/internal/models"
)

// CleanText drops HTML markup some providers leave in titles and descriptions
// and collapses whitespace.
func CleanText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.ContainsAny(value, "<>") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
		if err == nil {
			value = doc.Text()
		}
	}
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

// HeadlineKey identifies an article across providers: the URL when present,
// otherwise the normalized title.
func HeadlineKey(h models.Headline) (string, bool) {
	if link := strings.TrimSuffix(strings.TrimSpace(h.URL), "/"); link != "" {
		return strings.ToLower(link), true
	}
	title := strings.Join(strings.Fields(strings.ToLower(CleanText(h.Title))), " ")
	if title == "" {
		return "", false
	}
	return title, true
}

// DedupeHeadlines keeps the first occurrence of each article. Headlines with
// neither URL nor title are dropped.
func DedupeHeadlines(headlines []models.Headline) []models.Headline {
	seen := make(map[string]struct{}, len(headlines))
	out := make([]models.Headline, 0, len(headlines))
	for _, h := range headlines {
		key, ok := HeadlineKey(h)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}

// CollectHeadlines flattens the records of every found outcome, in outcome
// order, without duplicates.
func CollectHeadlines(outcomes []models.Outcome) []models.Headline {
	var all []models.Headline
	for _, outcome := range outcomes {
		if !outcome.Found() {
			continue
		}
		all = append(all, models.Headlines(outcome)...)
	}
	return DedupeHeadlines(all)
}
