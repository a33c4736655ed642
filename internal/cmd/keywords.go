package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/newscheck/internal/keywords"
	"github.com/jimezsa/newscheck/internal/provider"
)

type KeywordsCmd struct {
	Text       string `arg:"" help:"Text to extract keywords from."`
	Max        int    `help:"Maximum number of keywords." default:"6"`
	Candidates bool   `help:"Show the query chain each provider would try."`
}

func (k *KeywordsCmd) Run(ctx *Context) error {
	if !k.Candidates {
		_, err := fmt.Fprintln(ctx.Out, keywords.Extract(k.Text, k.Max))
		return err
	}

	if ctx.JSONOutput {
		return writeJSONValue(ctx.Out, candidateChains(k.Text))
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "provider\tattempt\tquery")
	for _, chain := range candidateChains(k.Text) {
		for i, query := range chain.Queries {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", chain.Provider, i+1, query)
		}
	}
	return tw.Flush()
}

type candidateChain struct {
	Provider string   `json:"provider"`
	Queries  []string `json:"queries"`
}

// candidateChains lists the sanitized queries each provider sends, in order.
func candidateChains(text string) []candidateChain {
	descs := provider.Descriptors()
	chains := make([]candidateChain, 0, len(descs))
	for _, desc := range descs {
		chain := candidateChain{Provider: desc.Name, Queries: []string{}}
		for _, candidate := range keywords.Candidates(text, desc.WideWords, desc.NarrowWords) {
			chain.Queries = append(chain.Queries, strings.TrimSpace(desc.Sanitize(candidate)))
		}
		chains = append(chains, chain)
	}
	return chains
}
