// Package classifier asks a remote model-serving endpoint whether a text reads
// as real or fake news.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/newscheck/internal/network"
)

var (
	ErrNotConfigured = errors.New("classifier endpoint not configured")
	ErrMissingLabel  = errors.New("classifier response missing label")
)

const (
	LabelFake = 0
	LabelReal = 1
)

// Prediction is the model's answer for one text.
type Prediction struct {
	Label      int     `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (p Prediction) Real() bool {
	return p.Label == LabelReal
}

func (p Prediction) String() string {
	name := "fake"
	if p.Real() {
		name = "real"
	}
	if p.Confidence <= 0 {
		return name
	}
	return fmt.Sprintf("%s (%.0f%%)", name, p.Confidence*100)
}

type Client struct {
	endpoint string
	apiKey   string
	http     network.Doer
}

// NewClient returns a client for endpoint. An empty endpoint yields a client
// whose Predict always fails with ErrNotConfigured.
func NewClient(endpoint, apiKey string, doer network.Doer) *Client {
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		apiKey:   strings.TrimSpace(apiKey),
		http:     doer,
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.endpoint != "" && c.http != nil
}

// Predict posts text to {endpoint}/predict.
func (c *Client) Predict(ctx context.Context, text string) (Prediction, error) {
	if !c.Configured() {
		return Prediction{}, ErrNotConfigured
	}

	var resp struct {
		Label      *int    `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.post(ctx, "/predict", map[string]string{"text": text}, &resp); err != nil {
		return Prediction{}, err
	}
	if resp.Label == nil {
		return Prediction{}, ErrMissingLabel
	}
	if *resp.Label != LabelFake && *resp.Label != LabelReal {
		return Prediction{}, fmt.Errorf("unexpected label %d", *resp.Label)
	}
	return Prediction{Label: *resp.Label, Confidence: resp.Confidence}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fhttp.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
