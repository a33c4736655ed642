package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/export"
	"github.com/jimezsa/newscheck/internal/models"
	"github.com/jimezsa/newscheck/internal/network"
	"github.com/jimezsa/newscheck/internal/provider"
	"github.com/jimezsa/newscheck/internal/ui"
	"github.com/rs/zerolog"
)

// routeDoer answers by request host and records every URL it saw.
type routeDoer struct {
	mu     sync.Mutex
	routes map[string]string
	seen   []string
}

func (d *routeDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, req.URL.String())

	body, ok := d.routes[req.URL.Host]
	status := fhttp.StatusOK
	if !ok {
		status = fhttp.StatusNotFound
		body = "not found"
	}
	return &fhttp.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (d *routeDoer) hosts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.seen))
	for _, raw := range d.seen {
		host := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
		out = append(out, strings.SplitN(host, "/", 2)[0])
	}
	return out
}

// newTestContext points the config directory at a temp dir so no real
// proxies file is picked up.
func newTestContext(t *testing.T, out io.Writer, cfg config.Config, doer network.Doer) *Context {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("NEWSCHECK_PROXIES", "")

	return &Context{
		Out:    out,
		Err:    io.Discard,
		UI:     ui.New(out, io.Discard, ui.ColorNever, true),
		Config: cfg,
		Logger: zerolog.Nop(),
		newDoer: func(network.Options) (network.Doer, error) {
			return doer, nil
		},
	}
}

func TestResolveFormatRespectsGlobalFlags(t *testing.T) {
	ctx := &Context{Out: io.Discard, JSONOutput: true}
	got, err := resolveFormat(ctx, OutputOptions{Format: "md"}, "report.csv")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatJSON {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatJSON)
	}

	ctx = &Context{Out: io.Discard, PlainText: true}
	got, err = resolveFormat(ctx, OutputOptions{}, "")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatTSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatTSV)
	}
}

func TestResolveFormatFromOutputPath(t *testing.T) {
	ctx := &Context{Out: io.Discard}
	tests := map[string]export.Format{
		"out.json":     export.FormatJSON,
		"out.md":       export.FormatMarkdown,
		"out.TSV":      export.FormatTSV,
		"out.csv":      export.FormatCSV,
		"out.anything": export.FormatCSV,
	}
	for path, want := range tests {
		got, err := resolveFormat(ctx, OutputOptions{}, path)
		if err != nil {
			t.Fatalf("resolveFormat(%q) error = %v", path, err)
		}
		if got != want {
			t.Fatalf("resolveFormat(%q) = %q, want %q", path, got, want)
		}
	}

	got, err := resolveFormat(ctx, OutputOptions{Format: "md"}, "out.json")
	if err != nil || got != export.FormatMarkdown {
		t.Fatalf("explicit --format should win, got %q (%v)", got, err)
	}
}

func TestResolveFormatNonTTYDefaultsToCSV(t *testing.T) {
	got, err := resolveFormat(&Context{Out: &bytes.Buffer{}}, OutputOptions{}, "")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatCSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatCSV)
	}
}

func TestParseFormatUnknown(t *testing.T) {
	if _, err := parseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestFormatSearchSummary(t *testing.T) {
	if got := formatSearchSummary(nil); got != "summary: results=0 providers=none" {
		t.Fatalf("unexpected empty summary %q", got)
	}

	outcomes := []models.Outcome{
		{Provider: "gnews", Status: models.StatusFound, Records: []models.Record{models.Record(`{}`), models.Record(`{}`)}},
		{Provider: "newsapi", Status: models.StatusSkipped},
	}
	want := "summary: results=2 found=1 empty=0 failed=0 skipped=1 providers=gnews:found, newsapi:skipped"
	if got := formatSearchSummary(outcomes); got != want {
		t.Fatalf("formatSearchSummary() = %q, want %q", got, want)
	}
}

func TestRunSearchOnlyCallsConfiguredProviders(t *testing.T) {
	doer := &routeDoer{routes: map[string]string{
		"gnews.io": `{"totalArticles":1,"articles":[{"title":"Senate passes bill","url":"https://example.com/senate","source":{"name":"Example"}}]}`,
	}}
	cfg := config.Config{Language: "en", TimeoutSeconds: 5, Keys: map[string]string{provider.GNews: "g-key"}}

	var out bytes.Buffer
	ctx := newTestContext(t, &out, cfg, doer)
	ctx.JSONOutput = true

	if err := runSearch(ctx, "Senate passes infrastructure bill", "all", QueryOptions{}, OutputOptions{}); err != nil {
		t.Fatalf("runSearch() error = %v", err)
	}

	for _, host := range doer.hosts() {
		if host != "gnews.io" {
			t.Fatalf("unexpected request to %s", host)
		}
	}
	if len(doer.hosts()) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(doer.hosts()))
	}

	var decoded []struct {
		Provider string            `json:"provider"`
		Status   string            `json:"status"`
		Records  []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(decoded) != len(provider.Descriptors()) {
		t.Fatalf("expected %d outcomes, got %d", len(provider.Descriptors()), len(decoded))
	}
	for _, o := range decoded {
		want := "skipped"
		if o.Provider == provider.GNews {
			want = "found"
		}
		if o.Status != want {
			t.Fatalf("%s status = %s, want %s", o.Provider, o.Status, want)
		}
	}
}

func TestProviderCommandSelectsSingleProvider(t *testing.T) {
	doer := &routeDoer{routes: map[string]string{
		"newsdata.io": `{"status":"success","results":[]}`,
		"gnews.io":    `{"articles":[{"title":"x"}]}`,
	}}
	cfg := config.Config{Language: "en", Keys: map[string]string{provider.NewsData: "n", provider.GNews: "g"}}

	var out bytes.Buffer
	ctx := newTestContext(t, &out, cfg, doer)
	cmd := &ProviderCmd{Query: "moon landing", Provider: provider.NewsData, OutputOptions: OutputOptions{Format: "json"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	hosts := doer.hosts()
	if len(hosts) != 3 {
		t.Fatalf("expected three attempts against newsdata, got %v", hosts)
	}
	for _, host := range hosts {
		if host != "newsdata.io" {
			t.Fatalf("unexpected request to %s", host)
		}
	}
	if !strings.Contains(out.String(), `"status": "empty"`) {
		t.Fatalf("expected empty outcome:\n%s", out.String())
	}
}

func TestRunSearchRejectsUnknownProvider(t *testing.T) {
	ctx := newTestContext(t, io.Discard, config.Config{}, &routeDoer{})
	if err := runSearch(ctx, "query", "bbc", QueryOptions{}, OutputOptions{}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestRunSearchRejectsBlankQuery(t *testing.T) {
	ctx := newTestContext(t, io.Discard, config.Config{}, &routeDoer{})
	if err := runSearch(ctx, "   ", "all", QueryOptions{}, OutputOptions{}); err == nil {
		t.Fatalf("expected error for blank query")
	}
}

func TestRunSearchWritesOutputFile(t *testing.T) {
	doer := &routeDoer{routes: map[string]string{
		"api.currentsapi.services": `{"status":"ok","news":[{"title":"Currents story","url":"https://example.com/c"}]}`,
	}}
	cfg := config.Config{Keys: map[string]string{provider.Currents: "c"}}
	path := filepath.Join(t.TempDir(), "results.md")

	ctx := newTestContext(t, io.Discard, cfg, doer)
	if err := runSearch(ctx, "currents story", provider.Currents, QueryOptions{Deadline: time.Minute}, OutputOptions{Output: path}); err != nil {
		t.Fatalf("runSearch() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "## currents (found, 1 attempts)") {
		t.Fatalf("unexpected markdown output:\n%s", data)
	}
}

func TestProviderCommandReportsDisabledProvider(t *testing.T) {
	doer := &routeDoer{}
	cfg := config.Config{
		Keys:              map[string]string{provider.GNews: "g"},
		DisabledProviders: []string{provider.GNews},
	}

	ctx := newTestContext(t, io.Discard, cfg, doer)
	err := (&ProviderCmd{Query: "moon landing", Provider: provider.GNews}).Run(ctx)
	if !errors.Is(err, provider.ErrDisabled) {
		t.Fatalf("Run() error = %v, want ErrDisabled", err)
	}
	if !strings.Contains(err.Error(), "gnews") || strings.Contains(err.Error(), "unknown provider") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if len(doer.hosts()) != 0 {
		t.Fatalf("disabled provider must not be queried, saw %v", doer.hosts())
	}
}
