package runtime

import (
	"io"

	"gitly.dev/gitly/internal/commands"
	"gitly.dev/gitly/internal/config"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/recent"
)

// Context provides configuration, output and the command registry
type Context struct {
	Config   *config.Config
	Splog    *output.Splog
	Styles   *output.Styles
	Recent   *recent.Store
	Registry *commands.Registry
	Out      io.Writer
}

// NewContext wires the dependencies described by cfg, writing console output to out
func NewContext(cfg *config.Config, out io.Writer) (*Context, error) {
	splog, err := output.NewSplogWithConfig(out, output.LogOptions{
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	if err != nil {
		return nil, err
	}

	store := recent.NewStore(cfg.Recent.File, cfg.Recent.Limit)
	return &Context{
		Config:   cfg,
		Splog:    splog,
		Styles:   output.NewStyles(out),
		Recent:   store,
		Registry: commands.Default(commands.Deps{Recent: store}),
		Out:      out,
	}, nil
}

// Close releases the log file
func (c *Context) Close() error {
	return c.Splog.Close()
}
