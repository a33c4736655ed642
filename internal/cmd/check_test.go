package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimezsa/newscheck/internal/classifier"
	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/export"
	"github.com/jimezsa/newscheck/internal/models"
	"github.com/jimezsa/newscheck/internal/provider"
	"github.com/jimezsa/newscheck/internal/verdict"
)

func TestResolveText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "article.txt")
	if err := os.WriteFile(path, []byte("  From a file  \n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ctx := &Context{In: strings.NewReader("from stdin\n")}

	tests := []struct {
		name     string
		arg      string
		textFile string
		want     string
		wantErr  bool
	}{
		{name: "argument", arg: " Aliens landed ", want: "Aliens landed"},
		{name: "file wins over argument", arg: "ignored", textFile: path, want: "From a file"},
		{name: "stdin", textFile: "-", want: "from stdin"},
		{name: "missing file", textFile: filepath.Join(dir, "missing.txt"), wantErr: true},
		{name: "blank", arg: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveText(ctx, tt.arg, tt.textFile)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveText() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("resolveText() = %q, want %q", got, tt.want)
			}
		})
	}
}

type checkOutput struct {
	Verdict struct {
		Score  int    `json:"score"`
		Label  string `json:"label"`
		Checks []struct {
			Name       string `json:"name"`
			Suspicious bool   `json:"suspicious"`
		} `json:"checks"`
	} `json:"verdict"`
	Classifier *struct {
		Label string `json:"label"`
		Error string `json:"error"`
	} `json:"classifier"`
	Corroboration []struct {
		Provider string `json:"provider"`
		Status   string `json:"status"`
	} `json:"corroboration"`
}

func runCheck(t *testing.T, cmd *CheckCmd, cfg config.Config, doer *routeDoer) checkOutput {
	t.Helper()
	var out bytes.Buffer
	ctx := newTestContext(t, &out, cfg, doer)
	ctx.JSONOutput = true
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var decoded checkOutput
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	return decoded
}

func TestCheckOfflineVerdicts(t *testing.T) {
	doer := &routeDoer{}

	fake := runCheck(t, &CheckCmd{Text: "SHOCKING!!! Aliens landed in Paris, government cover-up exposed"}, config.Config{}, doer)
	if fake.Verdict.Score != 5 || fake.Verdict.Label != "possibly fake" {
		t.Fatalf("unexpected verdict: %+v", fake.Verdict)
	}

	plain := runCheck(t, &CheckCmd{Text: "Senate passes infrastructure bill after lengthy debate"}, config.Config{}, doer)
	if plain.Verdict.Score != 2 || plain.Verdict.Label != "likely real" {
		t.Fatalf("unexpected verdict: %+v", plain.Verdict)
	}

	if len(doer.hosts()) != 0 {
		t.Fatalf("offline check should not touch the network, saw %v", doer.hosts())
	}
	if fake.Classifier != nil || fake.Corroboration != nil {
		t.Fatalf("expected no classifier or corroboration output")
	}
}

func TestCheckLiveMatchClearsWhenProviderFinds(t *testing.T) {
	doer := &routeDoer{routes: map[string]string{
		"newsapi.org": `{"status":"ok","articles":[{"title":"Senate passes infrastructure bill","url":"https://example.com/s"}]}`,
	}}
	cfg := config.Config{Keys: map[string]string{provider.NewsAPI: "k"}}

	got := runCheck(t, &CheckCmd{Text: "Senate passes infrastructure bill", Live: true}, cfg, doer)
	if got.Verdict.Score != 0 || got.Verdict.Label != "likely real" {
		t.Fatalf("unexpected verdict: %+v", got.Verdict)
	}
	if len(got.Corroboration) != len(provider.Descriptors()) {
		t.Fatalf("expected outcomes for every provider, got %d", len(got.Corroboration))
	}
	for _, o := range got.Corroboration {
		if o.Provider == provider.NewsAPI && o.Status != "found" {
			t.Fatalf("newsapi status = %s", o.Status)
		}
	}
}

func TestCheckUsesClassifier(t *testing.T) {
	doer := &routeDoer{routes: map[string]string{
		"model.local": `{"label":0,"confidence":0.75}`,
	}}
	cfg := config.Config{ClassifierURL: "http://model.local"}

	got := runCheck(t, &CheckCmd{Text: "Unbelievable hoax"}, cfg, doer)
	if got.Classifier == nil || got.Classifier.Label != "fake" {
		t.Fatalf("unexpected classifier output: %+v", got.Classifier)
	}

	skipped := runCheck(t, &CheckCmd{Text: "Unbelievable hoax", NoClassifier: true}, cfg, doer)
	if skipped.Classifier != nil {
		t.Fatalf("classifier should be skipped")
	}
}

func TestCheckClassifierFailureIsReported(t *testing.T) {
	doer := &routeDoer{}
	cfg := config.Config{ClassifierURL: "http://model.local"}

	got := runCheck(t, &CheckCmd{Text: "Unbelievable hoax"}, cfg, doer)
	if got.Classifier == nil || got.Classifier.Error == "" {
		t.Fatalf("expected classifier error, got %+v", got.Classifier)
	}
}

func TestCandidateChains(t *testing.T) {
	chains := candidateChains(`"Vaccines" cause autism (study)`)
	if len(chains) != len(provider.Descriptors()) {
		t.Fatalf("expected %d chains, got %d", len(provider.Descriptors()), len(chains))
	}
	for _, chain := range chains {
		if len(chain.Queries) != 3 {
			t.Fatalf("%s: expected 3 candidates, got %v", chain.Provider, chain.Queries)
		}
		if chain.Provider == provider.GNews && chain.Queries[0] != "Vaccines cause autism study" {
			t.Fatalf("gnews raw candidate = %q", chain.Queries[0])
		}
	}
}

func TestKeywordsCommand(t *testing.T) {
	var out bytes.Buffer
	ctx := &Context{Out: &out}
	cmd := &KeywordsCmd{Text: "The government is hiding the truth about the moon landing", Max: 3}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "government hiding truth" {
		t.Fatalf("keywords = %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret("abc"); got != "****" {
		t.Fatalf("maskSecret(short) = %q", got)
	}
	if got := maskSecret("abcdef123456"); got != "********3456" {
		t.Fatalf("maskSecret() = %q", got)
	}

	cfg := config.Config{Keys: map[string]string{"gnews": "secret-key", "newsapi": " "}, ClassifierKey: "model-token"}
	masked := maskedConfig(cfg)
	if _, ok := masked.Keys["newsapi"]; ok {
		t.Fatalf("blank keys should be dropped")
	}
	if masked.Keys["gnews"] != "******-key" || cfg.Keys["gnews"] != "secret-key" {
		t.Fatalf("unexpected masking: %v / %v", masked.Keys, cfg.Keys)
	}
	if masked.ClassifierKey != "*******oken" {
		t.Fatalf("classifier key = %q", masked.ClassifierKey)
	}
}

func TestListProviders(t *testing.T) {
	cfg := config.Config{
		Keys:              map[string]string{provider.FactCheck: "k"},
		DisabledProviders: []string{provider.Currents},
	}
	infos := listProviders(cfg)
	if len(infos) != len(provider.Descriptors()) {
		t.Fatalf("expected every provider, got %d", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].Name > infos[i].Name {
			t.Fatalf("providers not sorted: %s > %s", infos[i-1].Name, infos[i].Name)
		}
	}
	for _, info := range infos {
		if info.Configured != (info.Name == provider.FactCheck) {
			t.Fatalf("%s configured = %v", info.Name, info.Configured)
		}
		if info.Disabled != (info.Name == provider.Currents) {
			t.Fatalf("%s disabled = %v", info.Name, info.Disabled)
		}
		if info.KeyEnv == "" {
			t.Fatalf("%s missing key env", info.Name)
		}
	}
}

func TestProvidersCheck(t *testing.T) {
	doer := &routeDoer{routes: map[string]string{
		"factchecktools.googleapis.com": `{"claims":[{"text":"claim"}]}`,
	}}
	cfg := config.Config{Keys: map[string]string{provider.FactCheck: "k", provider.GNews: "g"}}

	var out bytes.Buffer
	ctx := newTestContext(t, &out, cfg, doer)
	ctx.JSONOutput = true
	cmd := &ProvidersCheckCmd{Query: "news", Sites: "factcheck,gnews,newsapi"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var results []ProviderCheckResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		provider.FactCheck: "ok",
		provider.GNews:     "404",
		provider.NewsAPI:   "skipped",
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for _, res := range results {
		if res.Status != want[res.Provider] {
			t.Fatalf("%s status = %s, want %s", res.Provider, res.Status, want[res.Provider])
		}
	}
	if len(doer.hosts()) != 2 {
		t.Fatalf("expected two probe requests, got %v", doer.hosts())
	}
}

func TestFormatCheckSummary(t *testing.T) {
	ctx := newTestContext(t, &bytes.Buffer{}, config.Config{}, &routeDoer{})
	result := export.CheckResult{
		Verdict: verdict.Analyze("SHOCKING!!!", []models.Outcome{
			{Provider: provider.GNews, Status: models.StatusEmpty},
			{Provider: provider.NewsAPI, Status: models.StatusSkipped},
		}),
		Prediction: &classifier.Prediction{Label: classifier.LabelReal},
		Outcomes: []models.Outcome{
			{Provider: provider.GNews, Status: models.StatusEmpty},
			{Provider: provider.NewsAPI, Status: models.StatusSkipped},
		},
	}

	want := "summary: verdict=possibly fake score=4/3 classifier=real sources_found=0/2"
	if got := formatCheckSummary(ctx, result); got != want {
		t.Fatalf("formatCheckSummary() = %q, want %q", got, want)
	}
}

func TestResolveTextRejectsOversizedInput(t *testing.T) {
	big := strings.Repeat("a", maxTextBytes+1)

	ctx := &Context{In: strings.NewReader(big)}
	if _, err := resolveText(ctx, "", "-"); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected size error for stdin, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(big), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := resolveText(&Context{}, "", path); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected size error for file, got %v", err)
	}

	exact := strings.Repeat("b", maxTextBytes)
	got, err := resolveText(&Context{In: strings.NewReader(exact)}, "", "-")
	if err != nil {
		t.Fatalf("input at the limit should be accepted: %v", err)
	}
	if len(got) != maxTextBytes {
		t.Fatalf("len(text) = %d, want %d", len(got), maxTextBytes)
	}
}

func TestFormatCheckSummaryWithoutQueriedSources(t *testing.T) {
	ctx := newTestContext(t, &bytes.Buffer{}, config.Config{}, &routeDoer{})
	outcomes := []models.Outcome{{Provider: provider.GNews, Status: models.StatusSkipped}}
	result := export.CheckResult{Verdict: verdict.Analyze("Senate passes bill", outcomes), Outcomes: outcomes}

	want := "summary: verdict=likely real score=2/3 sources=none_configured"
	if got := formatCheckSummary(ctx, result); got != want {
		t.Fatalf("formatCheckSummary() = %q, want %q", got, want)
	}
}
