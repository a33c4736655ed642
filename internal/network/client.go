package network

import (
	"math"
	"net/url"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "newscheck/1.0 (+https://github.com/jimezsa/newscheck)"

// Doer issues a single HTTP request. Client implements it; tests substitute
// their own.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Options configures a Client. Zero values disable the matching feature.
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
	Rotator           *Rotator
	UserAgent         string
}

type Client struct {
	http      tls_client.HttpClient
	rotator   *Rotator
	limiter   *rate.Limiter
	userAgent string
}

var _ Doer = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	timeout := int(math.Ceil(opts.Timeout.Seconds()))
	if timeout <= 0 {
		timeout = 30
	}

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(timeout),
	)
	if err != nil {
		return nil, err
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		http:      client,
		rotator:   opts.Rotator,
		limiter:   newLimiter(opts.RequestsPerMinute),
		userAgent: userAgent,
	}, nil
}

// newLimiter allows perMinute requests spread evenly over a minute with a
// burst of one. Non-positive values mean unlimited.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Do waits for the rate limiter, picks the next proxy and sends req. The wait
// is bounded by the request context. When every proxy is banned the request
// is not sent and ErrNoProxies is returned.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	proxy, err := c.rotateProxy()
	if err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) rotateProxy() (*url.URL, error) {
	if c.rotator == nil {
		return nil, nil
	}
	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}
	if err := c.http.SetProxy(proxy.String()); err != nil {
		return nil, err
	}
	return proxy, nil
}
