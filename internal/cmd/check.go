package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jimezsa/newscheck/internal/classifier"
	"github.com/jimezsa/newscheck/internal/export"
	"github.com/jimezsa/newscheck/internal/models"
	"github.com/jimezsa/newscheck/internal/network"
	"github.com/jimezsa/newscheck/internal/provider"
	"github.com/jimezsa/newscheck/internal/verdict"
)

const maxTextBytes = 1 << 20

type CheckCmd struct {
	Text         string `arg:"" optional:"" help:"News text to check. Optional when --text-file is provided."`
	TextFile     string `help:"Read the news text from a file ('-' for stdin)."`
	Live         bool   `help:"Cross-reference the text against the news providers."`
	Sites        string `help:"Comma-separated list of providers used with --live (default: all)." default:"all"`
	NoClassifier bool   `help:"Skip the remote classifier even when one is configured."`
	QueryOptions
	OutputOptions
}

func (c *CheckCmd) Run(ctx *Context) error {
	text, err := resolveText(ctx, c.Text, c.TextFile)
	if err != nil {
		return err
	}

	var outcomes []models.Outcome
	if c.Live {
		outcomes, err = corroborate(ctx, text, c.Sites, c.QueryOptions)
		if err != nil {
			return err
		}
		reportFailures(ctx, outcomes)
	}

	result := export.CheckResult{
		Text:     text,
		Verdict:  verdict.Analyze(text, outcomes),
		Outcomes: outcomes,
	}
	if !c.NoClassifier {
		prediction, err := predict(ctx, text)
		switch {
		case errors.Is(err, classifier.ErrNotConfigured):
			ctx.Logger.Debug().Msg("classifier not configured")
		case err != nil:
			ctx.Logger.Warn().Err(err).Msg("classifier request failed")
			result.PredictionError = err.Error()
		default:
			result.Prediction = &prediction
		}
	}

	ctx.Logger.Debug().
		Int("score", result.Verdict.Score).
		Str("label", string(result.Verdict.Label)).
		Int("providers", len(outcomes)).
		Msg("check finished")

	if err := writeOutput(ctx, c.OutputOptions, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteCheck(w, result, format, opts)
	}); err != nil {
		return err
	}

	printCheckSummary(ctx, result)
	return nil
}

func printCheckSummary(ctx *Context, result export.CheckResult) {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatCheckSummary(ctx, result))
}

func formatCheckSummary(ctx *Context, result export.CheckResult) string {
	r := result.Verdict
	parts := []string{
		"verdict=" + ctx.UI.Badge(r.Fake(), string(r.Label)),
		fmt.Sprintf("score=%d/%d", r.Score, r.Threshold),
	}
	if result.Prediction != nil {
		parts = append(parts, "classifier="+ctx.UI.Badge(!result.Prediction.Real(), result.Prediction.String()))
	}
	if len(result.Outcomes) > 0 {
		tally := provider.Count(result.Outcomes)
		if tally.Queried() {
			parts = append(parts, fmt.Sprintf("sources_found=%d/%d", tally.Found, len(result.Outcomes)))
		} else {
			parts = append(parts, "sources=none_configured")
		}
	}
	return "summary: " + strings.Join(parts, " ")
}

func predict(ctx *Context, text string) (classifier.Prediction, error) {
	cfg := ctx.Config
	if strings.TrimSpace(cfg.ClassifierURL) == "" {
		return classifier.Prediction{}, classifier.ErrNotConfigured
	}
	doer, err := ctx.transport(network.Options{Timeout: cfg.Timeout()})
	if err != nil {
		return classifier.Prediction{}, err
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()
	return classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierKey, doer).Predict(reqCtx, text)
}

// resolveText returns the news text from --text-file or the positional
// argument, in that order.
func resolveText(ctx *Context, arg string, textFile string) (string, error) {
	var text string
	switch path := strings.TrimSpace(textFile); {
	case path == "-":
		if ctx.In == nil {
			return "", fmt.Errorf("no stdin available for --text-file -")
		}
		data, err := io.ReadAll(io.LimitReader(ctx.In, maxTextBytes+1))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if len(data) > maxTextBytes {
			return "", fmt.Errorf("stdin text exceeds %d bytes", maxTextBytes)
		}
		text = string(data)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read --text-file %q: %w", path, err)
		}
		if len(data) > maxTextBytes {
			return "", fmt.Errorf("--text-file %q exceeds %d bytes", path, maxTextBytes)
		}
		text = string(data)
	default:
		text = arg
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("news text is required (argument or --text-file)")
	}
	return text, nil
}
