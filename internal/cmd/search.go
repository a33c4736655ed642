package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/export"
	"github.com/jimezsa/newscheck/internal/models"
	"github.com/jimezsa/newscheck/internal/network"
	"github.com/jimezsa/newscheck/internal/provider"
	"github.com/muesli/termenv"
)

type SearchCmd struct {
	Query string `arg:"" help:"Claim or headline to look up."`
	Sites string `help:"Comma-separated list of providers (default: all)." default:"all"`
	QueryOptions
	OutputOptions
}

type ProviderCmd struct {
	Query string `arg:"" help:"Claim or headline to look up."`
	QueryOptions
	OutputOptions
	Provider string `kong:"-"`
}

// QueryOptions are shared by every command that calls the providers.
type QueryOptions struct {
	Deadline time.Duration `help:"Overall deadline for provider queries, e.g. 30s (0 = none)."`
	Proxies  string        `help:"Comma-separated proxy URLs." env:"NEWSCHECK_PROXIES"`
}

type OutputOptions struct {
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output string `name:"output" short:"o" help:"Write output to a file."`
}

const proxyBanDuration = 10 * time.Minute

func (s *SearchCmd) Run(ctx *Context) error {
	return runSearch(ctx, s.Query, s.Sites, s.QueryOptions, s.OutputOptions)
}

func (p *ProviderCmd) Run(ctx *Context) error {
	return runSearch(ctx, p.Query, p.Provider, p.QueryOptions, p.OutputOptions)
}

func runSearch(ctx *Context, query string, sitesArg string, qopts QueryOptions, oopts OutputOptions) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("a non-empty query is required")
	}

	outcomes, err := corroborate(ctx, query, sitesArg, qopts)
	if err != nil {
		return err
	}
	reportFailures(ctx, outcomes)

	if err := writeOutput(ctx, oopts, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteSearch(w, outcomes, format, opts)
	}); err != nil {
		return err
	}

	printSearchSummary(ctx, outcomes)
	return nil
}

// corroborate runs the selected providers against query under the optional
// deadline.
func corroborate(ctx *Context, query string, sitesArg string, opts QueryOptions) ([]models.Outcome, error) {
	if err := provider.CheckEnabled(ctx.Config, sitesArg); err != nil {
		return nil, err
	}
	registry, err := buildRegistry(ctx, opts.Proxies)
	if err != nil {
		return nil, err
	}
	selected, err := provider.Select(registry, sitesArg)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no providers enabled")
	}
	warnUnconfigured(ctx, selected)

	runCtx := context.Background()
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, opts.Deadline)
		defer cancel()
	}

	stopIndicator := startSearchIndicator(ctx)
	outcomes := provider.Corroborate(runCtx, selected, query)
	if stopIndicator != nil {
		stopIndicator()
	}
	return outcomes, nil
}

func buildRegistry(ctx *Context, proxiesFlag string) (map[string]provider.Provider, error) {
	rotator, err := buildRotator(proxiesFlag)
	if err != nil {
		return nil, err
	}
	if rotator.Len() > 0 {
		ctx.Logger.Debug().Int("proxies", rotator.Len()).Msg("proxy rotation enabled")
	}

	cfg := ctx.Config
	return provider.Registry(cfg, func() (network.Doer, error) {
		return ctx.transport(network.Options{
			Timeout:           cfg.Timeout(),
			RequestsPerMinute: cfg.RequestsPerMinute,
			Rotator:           rotator,
		})
	}, ctx.Logger)
}

func buildRotator(proxiesFlag string) (*network.Rotator, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}
	if len(proxies) == 0 {
		return nil, nil
	}
	return network.NewRotator(proxies, proxyBanDuration)
}

func warnUnconfigured(ctx *Context, selected []provider.Provider) {
	if ctx == nil || ctx.UI == nil {
		return
	}
	var missing []string
	for _, p := range selected {
		if client, ok := p.(*provider.Client); ok && !client.Configured() {
			missing = append(missing, p.Name())
		}
	}
	if len(missing) == len(selected) {
		ctx.UI.Warnf("No provider credentials configured; set %s or run `newscheck config init`.", envHint(missing))
		return
	}
	if ctx.Verbose && len(missing) > 0 {
		ctx.UI.Warnf("Skipping providers without credentials: %s", strings.Join(missing, ", "))
	}
}

func envHint(names []string) string {
	vars := make([]string, 0, len(names))
	for _, name := range names {
		if env, ok := config.KeyEnv[name]; ok {
			vars = append(vars, env)
		}
	}
	if len(vars) == 0 {
		return "a provider key"
	}
	return strings.Join(vars, ", ")
}

func reportFailures(ctx *Context, outcomes []models.Outcome) {
	if ctx == nil || ctx.UI == nil {
		return
	}
	if !ctx.Verbose {
		return
	}

	var failed []models.Outcome
	for _, o := range outcomes {
		if o.Status == models.StatusFailed {
			failed = append(failed, o)
		}
	}
	if len(failed) == 0 {
		return
	}

	ctx.UI.Warnf("\nProvider errors:")
	for _, o := range failed {
		ctx.UI.Warnf("  %s: %s", o.Provider, strings.ReplaceAll(o.ErrorText(), "\n", "; "))
	}
}

func printSearchSummary(ctx *Context, outcomes []models.Outcome) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatSearchSummary(outcomes))
}

func formatSearchSummary(outcomes []models.Outcome) string {
	tally := provider.Count(outcomes)
	if len(outcomes) == 0 {
		return "summary: results=0 providers=none"
	}

	parts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		parts = append(parts, fmt.Sprintf("%s:%s", o.Provider, o.Status))
	}
	return fmt.Sprintf("summary: results=%d found=%d empty=%d failed=%d skipped=%d providers=%s",
		tally.Records, tally.Found, tally.Empty, tally.Failed, tally.Skipped, strings.Join(parts, ", "))
}

// writeOutput resolves the format and destination, then calls write.
func writeOutput(ctx *Context, opts OutputOptions, write func(io.Writer, export.Format, export.WriteOptions) error) error {
	outputPath := strings.TrimSpace(opts.Output)
	format, err := resolveFormat(ctx, opts, outputPath)
	if err != nil {
		return err
	}

	writer := ctx.Out
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && outputPath == ""
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	return write(writer, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	})
}

func resolveFormat(ctx *Context, opts OutputOptions, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return parseFormat(opts.Format)
	}
	if outputPath != "" {
		return formatFromPath(outputPath), nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

// formatFromPath picks a format from the output file extension, defaulting
// to CSV.
func formatFromPath(path string) export.Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return export.FormatJSON
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return export.FormatMarkdown
	case strings.HasSuffix(lower, ".tsv"):
		return export.FormatTSV
	default:
		return export.FormatCSV
	}
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

func startSearchIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if !isTTY(ctx.Err) {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KChecking sources... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
