package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/keywords"
	"github.com/jimezsa/newscheck/internal/models"
	"github.com/jimezsa/newscheck/internal/network"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes  = 8 << 20
	maxErrorBytes = 512
)

var (
	ErrNoCredential    = errors.New("no credential configured")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrDisabled        = errors.New("provider disabled in config")
)

// Provider searches one external news or fact-check API. Search never returns
// a Go error; failures are reported through the Outcome.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) models.Outcome
}

// StatusError is returned for an attempt answered with a non-200 status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Client runs the candidate query chain against a single provider.
type Client struct {
	desc     Descriptor
	key      string
	language string
	timeout  time.Duration
	http     network.Doer
	logger   zerolog.Logger
}

var _ Provider = (*Client)(nil)

func NewClient(desc Descriptor, cfg config.Config, doer network.Doer, logger zerolog.Logger) *Client {
	return &Client{
		desc:     desc,
		key:      cfg.Key(desc.Name),
		language: cfg.Language,
		timeout:  cfg.Timeout(),
		http:     doer,
		logger:   logger.With().Str("provider", desc.Name).Logger(),
	}
}

func (c *Client) Name() string {
	return c.desc.Name
}

// Configured reports whether a credential is set. Unconfigured clients never
// touch the network.
func (c *Client) Configured() bool {
	return c.key != ""
}

// Search tries the raw query, then the wide and narrow keyword extractions,
// and stops at the first attempt that yields at least one record.
func (c *Client) Search(ctx context.Context, query string) models.Outcome {
	outcome := models.Outcome{Provider: c.desc.Name, Status: models.StatusEmpty}
	if !c.Configured() {
		c.logger.Debug().Msg("no credential, skipping")
		outcome.Status = models.StatusSkipped
		return outcome
	}

	var (
		errs     []error
		answered bool
	)
	for _, candidate := range keywords.Candidates(query, c.desc.WideWords, c.desc.NarrowWords) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.desc.Name, err))
			break
		}

		sanitized := c.desc.Sanitize(candidate)
		outcome.Attempts++
		records, err := c.attempt(ctx, sanitized)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", outcome.Attempts).Str("query", sanitized).Msg("search attempt failed")
			errs = append(errs, err)
			continue
		}

		answered = true
		c.logger.Debug().Int("attempt", outcome.Attempts).Str("query", sanitized).Int("results", len(records)).Msg("search attempt answered")
		if len(records) > 0 {
			outcome.Status = models.StatusFound
			outcome.Query = sanitized
			outcome.Records = records
			outcome.Err = errors.Join(errs...)
			return outcome
		}
	}

	outcome.Err = errors.Join(errs...)
	if !answered && len(errs) > 0 {
		outcome.Status = models.StatusFailed
	}
	return outcome
}

// Probe sends a single request for query, skipping the fallback chain, and
// returns the number of records.
func (c *Client) Probe(ctx context.Context, query string) (int, error) {
	if !c.Configured() {
		return 0, fmt.Errorf("%s: %w", c.desc.Name, ErrNoCredential)
	}
	records, err := c.attempt(ctx, c.desc.Sanitize(query))
	return len(records), err
}

func (c *Client) attempt(ctx context.Context, query string) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, c.requestURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", c.desc.Name, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.desc.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", c.desc.Name, err)
	}

	if resp.StatusCode != fhttp.StatusOK {
		return nil, &StatusError{
			Provider:   c.desc.Name,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBytes),
		}
	}

	records, err := parseRecords(body, c.desc.ResultField)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.desc.Name, err)
	}
	return records, nil
}

func (c *Client) requestURL(query string) string {
	values := url.Values{}
	for key, value := range c.desc.Params {
		values.Set(key, value)
	}
	if c.desc.LangParam != "" && c.language != "" {
		values.Set(c.desc.LangParam, c.language)
	}
	values.Set(c.desc.QueryParam, query)
	values.Set(c.desc.KeyParam, c.key)
	return c.desc.BaseURL + "?" + values.Encode()
}

// parseRecords pulls the result list out of a provider response. A missing or
// null field is an empty list.
func parseRecords(body []byte, field string) ([]models.Record, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	raw, ok := payload[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var records []models.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %q: %w", field, err)
	}
	return records, nil
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
