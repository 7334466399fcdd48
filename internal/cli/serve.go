package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/runtime"
	"gitly.dev/gitly/internal/server"
)

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve repository commands to the desktop app over a local WebSocket",
		Long: `Serve repository commands to the desktop app over a local WebSocket.

Each text frame on /ws is a request {"id","command","args"}; the reply carries
the same id. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				serveCfg := ctx.Config.Serve
				if addr != "" {
					serveCfg.Addr = addr
				}

				sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				return server.New(serveCfg, ctx.Registry, ctx.Splog).ListenAndServe(sigCtx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from serve.addr)")
	return cmd
}
