package cmd

import (
	"io"

	"github.com/jimezsa/newscheck/internal/config"
	"github.com/jimezsa/newscheck/internal/network"
	"github.com/jimezsa/newscheck/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode

	// newDoer replaces the TLS transport in tests.
	newDoer func(opts network.Options) (network.Doer, error)
}

func (c *Context) transport(opts network.Options) (network.Doer, error) {
	if c.newDoer != nil {
		return c.newDoer(opts)
	}
	client, err := network.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}
