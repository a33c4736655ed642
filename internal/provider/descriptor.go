package provider

import "strings"

const (
	NewsAPI    = "newsapi"
	GNews      = "gnews"
	FactCheck  = "factcheck"
	MediaStack = "mediastack"
	NewsData   = "newsdata"
	Currents   = "currents"
)

// Descriptor declares everything that differs between providers. The client
// logic is shared.
type Descriptor struct {
	Name        string
	Title       string
	BaseURL     string
	QueryParam  string
	KeyParam    string
	LangParam   string
	Params      map[string]string
	ResultField string
	WideWords   int
	NarrowWords int
	// StripChars are removed from every candidate before sending; some
	// providers reject queries containing them.
	StripChars string
}

// Sanitize removes StripChars from query.
func (d Descriptor) Sanitize(query string) string {
	if d.StripChars == "" {
		return query
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(d.StripChars, r) {
			return -1
		}
		return r
	}, query)
}

// Descriptors returns the built-in providers in a stable order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Name:       NewsAPI,
			Title:      "NewsAPI",
			BaseURL:    "https://newsapi.org/v2/everything",
			QueryParam: "q",
			KeyParam:   "apiKey",
			LangParam:  "language",
			Params: map[string]string{
				"sortBy":   "relevancy",
				"pageSize": "15",
				"searchIn": "title,description,content",
			},
			ResultField: "articles",
			WideWords:   8,
			NarrowWords: 4,
		},
		{
			Name:        GNews,
			Title:       "GNews",
			BaseURL:     "https://gnews.io/api/v4/search",
			QueryParam:  "q",
			KeyParam:    "token",
			LangParam:   "lang",
			Params:      map[string]string{"max": "15"},
			ResultField: "articles",
			WideWords:   6,
			NarrowWords: 3,
			StripChars:  `'"()`,
		},
		{
			Name:        FactCheck,
			Title:       "Google Fact Check",
			BaseURL:     "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			QueryParam:  "query",
			KeyParam:    "key",
			LangParam:   "languageCode",
			ResultField: "claims",
			WideWords:   6,
			NarrowWords: 3,
			StripChars:  `'"`,
		},
		{
			Name:        MediaStack,
			Title:       "MediaStack",
			BaseURL:     "http://api.mediastack.com/v1/news",
			QueryParam:  "keywords",
			KeyParam:    "access_key",
			LangParam:   "languages",
			Params:      map[string]string{"limit": "15"},
			ResultField: "data",
			WideWords:   6,
			NarrowWords: 3,
		},
		{
			Name:        NewsData,
			Title:       "NewsData.io",
			BaseURL:     "https://newsdata.io/api/1/news",
			QueryParam:  "q",
			KeyParam:    "apikey",
			LangParam:   "language",
			Params:      map[string]string{"size": "10"},
			ResultField: "results",
			WideWords:   6,
			NarrowWords: 3,
		},
		{
			Name:        Currents,
			Title:       "Currents",
			BaseURL:     "https://api.currentsapi.services/v1/search",
			QueryParam:  "keywords",
			KeyParam:    "apiKey",
			LangParam:   "language",
			ResultField: "news",
			WideWords:   6,
			NarrowWords: 3,
		},
	}
}

// Lookup finds a built-in descriptor by name.
func Lookup(name string) (Descriptor, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, desc := range Descriptors() {
		if desc.Name == name {
			return desc, true
		}
	}
	return Descriptor{}, false
}
