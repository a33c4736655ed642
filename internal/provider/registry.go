package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/network"
	"github.com/rs/zerolog"
)

// Registry builds a client for every built-in provider that is not disabled.
// newDoer is called once per provider so each gets its own transport.
func Registry(cfg config.Config, newDoer func() (network.Doer, error), logger zerolog.Logger) (map[string]Provider, error) {
	registry := make(map[string]Provider)
	for _, desc := range Descriptors() {
		if cfg.Disabled(desc.Name) {
			continue
		}
		doer, err := newDoer()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", desc.Name, err)
		}
		registry[desc.Name] = NewClient(desc, cfg, doer, logger)
	}
	return registry, nil
}

// Select resolves a comma-separated provider list ("all" or empty for every
// registered provider) into providers sorted by name.
func Select(registry map[string]Provider, namesArg string) ([]Provider, error) {
	requested := ResolveNames(namesArg)
	if len(requested) == 0 {
		for name := range registry {
			requested = append(requested, name)
		}
	}

	selected := make([]Provider, 0, len(requested))
	for _, name := range requested {
		p, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		selected = append(selected, p)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Name() < selected[j].Name()
	})
	return selected, nil
}

// ResolveNames normalizes a comma-separated provider list and expands aliases,
// dropping duplicates. "all" or an empty list yields nil.
func ResolveNames(namesArg string) []string {
	requested := NormalizeNames(strings.Split(namesArg, ","))
	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		return nil
	}

	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, name := range expandAliases(requested) {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// CheckEnabled returns ErrDisabled for the first explicitly requested
// provider that cfg disables.
func CheckEnabled(cfg config.Config, namesArg string) error {
	for _, name := range ResolveNames(namesArg) {
		if cfg.Disabled(name) {
			return fmt.Errorf("%w: %s (remove it from disabled_providers to use it)", ErrDisabled, name)
		}
	}
	return nil
}

func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

func expandAliases(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		switch name {
		case "news-api", "newsapi.org":
			out = append(out, NewsAPI)
		case "gnews.io":
			out = append(out, GNews)
		case "fact-check", "google", "google-factcheck":
			out = append(out, FactCheck)
		case "newsdata.io":
			out = append(out, NewsData)
		case "currentsapi", "currents-api":
			out = append(out, Currents)
		default:
			out = append(out, name)
		}
	}
	return out
}
