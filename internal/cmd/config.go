package cmd

import (
	"fmt"
	"strings"

	"github.com/jimezsa/newscheck/internal/config"
)

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write default config and proxies files."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
	Show ShowConfigCmd `cmd:"" help:"Print the effective configuration with credentials masked."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ShowConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.Init()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

func (c *ShowConfigCmd) Run(ctx *Context) error {
	return writeJSONValue(ctx.Out, maskedConfig(ctx.Config))
}

func maskedConfig(cfg config.Config) config.Config {
	masked := cfg
	masked.Keys = make(map[string]string, len(cfg.Keys))
	for name, key := range cfg.Keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		masked.Keys[name] = maskSecret(key)
	}
	if masked.ClassifierKey != "" {
		masked.ClassifierKey = maskSecret(masked.ClassifierKey)
	}
	return masked
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
