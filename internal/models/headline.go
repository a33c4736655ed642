package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Headline is the display view of a Record. Provider schemas differ, so every
// field is looked up under each name the supported providers use.
type Headline struct {
	Provider    string `json:"provider"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source,omitempty"`
	Published   string `json:"published,omitempty"`
	Description string `json:"description,omitempty"`
	Rating      string `json:"rating,omitempty"`
}

// ParseHeadline derives a Headline from a raw record. Records that are not
// JSON objects yield a Headline with only Provider set.
func ParseHeadline(provider string, rec Record) Headline {
	h := Headline{Provider: provider}

	var value map[string]any
	if err := json.Unmarshal(rec, &value); err != nil {
		return h
	}

	review := firstItem(value["claimReview"])

	h.Title = stringValue(value["title"], value["text"])
	h.URL = stringValue(value["url"], value["link"], mapValue(review, "url"))
	h.Source = stringValue(
		value["source"],
		value["source_name"],
		value["source_id"],
		mapValue(review, "publisher"),
		value["claimant"],
		value["author"],
	)
	h.Published = stringValue(
		value["publishedAt"],
		value["published_at"],
		value["pubDate"],
		value["published"],
		value["claimDate"],
		mapValue(review, "reviewDate"),
	)
	h.Description = stringValue(value["description"], value["content"])
	h.Rating = stringValue(mapValue(review, "textualRating"))
	return h
}

// Headlines converts every record of the outcome.
func Headlines(outcome Outcome) []Headline {
	out := make([]Headline, 0, len(outcome.Records))
	for _, rec := range outcome.Records {
		out = append(out, ParseHeadline(outcome.Provider, rec))
	}
	return out
}

func firstItem(value any) any {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	return list[0]
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		case map[string]any:
			if name := stringValue(v["name"], v["site"]); name != "" {
				return name
			}
		case []any:
			for _, item := range v {
				if s := stringValue(item); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
