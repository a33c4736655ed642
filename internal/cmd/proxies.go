package cmd

import (
	"context"
	"fmt"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/network"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Validate proxies against a target URL."`
}

type ProxyCheckCmd struct {
	Target  string `help:"Target URL." default:"https://newsapi.org"`
	Timeout int    `help:"Timeout in seconds." default:"15"`
	Proxies string `help:"Comma-separated proxy URLs." env:"NEWSCHECK_PROXIES"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	timeout := time.Duration(p.Timeout) * time.Second
	results := make([]ProviderCheckResult, 0, len(proxies))
	for _, proxy := range proxies {
		results = append(results, checkProxy(ctx, proxy, p.Target, timeout))
	}
	return writeCheckResults(ctx, "proxy", results)
}

func checkProxy(ctx *Context, proxy string, target string, timeout time.Duration) ProviderCheckResult {
	result := ProviderCheckResult{Provider: proxy}
	fail := func(err error) ProviderCheckResult {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}

	rotator, err := network.NewRotator([]string{proxy}, proxyBanDuration)
	if err != nil {
		return fail(err)
	}
	client, err := ctx.transport(network.Options{Timeout: timeout, Rotator: rotator})
	if err != nil {
		return fail(err)
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := fhttp.NewRequestWithContext(reqCtx, fhttp.MethodGet, target, nil)
	if err != nil {
		return fail(err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fail(err)
	}
	_ = resp.Body.Close()

	result.LatencyMS = time.Since(start).Milliseconds()
	result.Status = fmt.Sprintf("%d", resp.StatusCode)
	return result
}
