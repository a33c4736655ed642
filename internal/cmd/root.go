package cmd

import (
	"github.com/alecthomas/kong"
	"github.com/jimezsa/newscheck/internal/provider"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version    VersionCmd   `cmd:"" help:"Print version."`
	Config     ConfigCmd    `cmd:"" help:"Manage configuration."`
	Check      CheckCmd     `cmd:"" help:"Score a news text and optionally cross-reference it."`
	Search     SearchCmd    `cmd:"" help:"Search every configured provider for a claim."`
	NewsAPI    ProviderCmd  `cmd:"" name:"newsapi" help:"Search NewsAPI."`
	GNews      ProviderCmd  `cmd:"" name:"gnews" help:"Search GNews."`
	FactCheck  ProviderCmd  `cmd:"" name:"factcheck" help:"Search Google Fact Check Tools."`
	MediaStack ProviderCmd  `cmd:"" name:"mediastack" help:"Search Mediastack."`
	NewsData   ProviderCmd  `cmd:"" name:"newsdata" help:"Search NewsData.io."`
	Currents   ProviderCmd  `cmd:"" name:"currents" help:"Search Currents API."`
	Keywords   KeywordsCmd  `cmd:"" help:"Show the keywords extracted from a text."`
	Providers  ProvidersCmd `cmd:"" help:"Provider utilities."`
	Proxies    ProxiesCmd   `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{
		NewsAPI:    ProviderCmd{Provider: provider.NewsAPI},
		GNews:      ProviderCmd{Provider: provider.GNews},
		FactCheck:  ProviderCmd{Provider: provider.FactCheck},
		MediaStack: ProviderCmd{Provider: provider.MediaStack},
		NewsData:   ProviderCmd{Provider: provider.NewsData},
		Currents:   ProviderCmd{Provider: provider.Currents},
	}
}
