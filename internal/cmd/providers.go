package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/provider"
)

type ProvidersCmd struct {
	List  ProvidersListCmd  `cmd:"" help:"List providers and whether they are configured."`
	Check ProvidersCheckCmd `cmd:"" help:"Send one probe request to each configured provider."`
}

type ProvidersListCmd struct{}

type ProvidersCheckCmd struct {
	Query   string `help:"Probe query." default:"news"`
	Sites   string `help:"Comma-separated list of providers (default: all)." default:"all"`
	Proxies string `help:"Comma-separated proxy URLs." env:"NEWSCHECK_PROXIES"`
}

type providerInfo struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Endpoint   string `json:"endpoint"`
	KeyEnv     string `json:"key_env"`
	Configured bool   `json:"configured"`
	Disabled   bool   `json:"disabled"`
}

type ProviderCheckResult struct {
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	Results   int    `json:"results"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (p *ProvidersListCmd) Run(ctx *Context) error {
	infos := listProviders(ctx.Config)

	if ctx.JSONOutput {
		return writeJSONValue(ctx.Out, infos)
	}
	if ctx.PlainText {
		for _, info := range infos {
			line := []string{info.Name, yesNo(info.Configured), yesNo(info.Disabled), info.KeyEnv, info.Endpoint}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "provider\tconfigured\tdisabled\tkey_env\tendpoint")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.Name, yesNo(info.Configured), yesNo(info.Disabled), info.KeyEnv, info.Endpoint)
	}
	return tw.Flush()
}

func listProviders(cfg config.Config) []providerInfo {
	descs := provider.Descriptors()
	infos := make([]providerInfo, 0, len(descs))
	for _, desc := range descs {
		infos = append(infos, providerInfo{
			Name:       desc.Name,
			Title:      desc.Title,
			Endpoint:   desc.BaseURL,
			KeyEnv:     config.KeyEnv[desc.Name],
			Configured: cfg.Key(desc.Name) != "",
			Disabled:   cfg.Disabled(desc.Name),
		})
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func (p *ProvidersCheckCmd) Run(ctx *Context) error {
	if err := provider.CheckEnabled(ctx.Config, p.Sites); err != nil {
		return err
	}
	registry, err := buildRegistry(ctx, p.Proxies)
	if err != nil {
		return err
	}
	selected, err := provider.Select(registry, p.Sites)
	if err != nil {
		return err
	}

	results := make([]ProviderCheckResult, 0, len(selected))
	for _, sel := range selected {
		results = append(results, probeProvider(sel, p.Query, ctx.Config.Timeout()))
	}
	return writeCheckResults(ctx, "provider", results)
}

type prober interface {
	Name() string
	Probe(ctx context.Context, query string) (int, error)
}

func probeProvider(p provider.Provider, query string, timeout time.Duration) ProviderCheckResult {
	result := ProviderCheckResult{Provider: p.Name()}
	client, ok := p.(prober)
	if !ok {
		result.Status = "error"
		result.Error = "provider does not support probing"
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	count, err := client.Probe(ctx, query)
	result.LatencyMS = time.Since(start).Milliseconds()
	result.Results = count

	var statusErr *provider.StatusError
	switch {
	case errors.Is(err, provider.ErrNoCredential):
		result.Status = "skipped"
		result.LatencyMS = 0
	case errors.As(err, &statusErr):
		result.Status = fmt.Sprintf("%d", statusErr.StatusCode)
		result.Error = statusErr.Body
	case err != nil:
		result.Status = "error"
		result.Error = err.Error()
	default:
		result.Status = "ok"
	}
	return result
}

func writeCheckResults(ctx *Context, firstColumn string, results []ProviderCheckResult) error {
	if ctx.JSONOutput {
		return writeJSONValue(ctx.Out, results)
	}

	if ctx.PlainText {
		for _, res := range results {
			line := []string{res.Provider, res.Status, fmt.Sprintf("%d", res.Results), fmt.Sprintf("%d", res.LatencyMS), res.Error}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tstatus\tresults\tlatency_ms\terror\n", firstColumn)
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", res.Provider, res.Status, res.Results, res.LatencyMS, res.Error)
	}
	return tw.Flush()
}

func writeJSONValue(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
