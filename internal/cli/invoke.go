package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/commands"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/runtime"
)

// newInvokeCmd creates the invoke command
func newInvokeCmd() *cobra.Command {
	var args string

	cmd := &cobra.Command{
		Use:   "invoke <command>",
		Short: "Dispatch one command the way the desktop app does and print the response",
		Example: `  gitly invoke list_branches --args '{"path":"."}'
  gitly invoke list_commits --args '{"path":".","branch":"main","limit":10}'`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return commands.Default(commands.Deps{}).Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			var raw json.RawMessage
			if args != "" {
				if !json.Valid([]byte(args)) {
					return fmt.Errorf("--args is not valid JSON: %s", args)
				}
				raw = json.RawMessage(args)
			}

			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				resp := ctx.Registry.Dispatch(cmd.Context(), commands.Request{
					ID:      uuid.NewString(),
					Command: posArgs[0],
					Args:    raw,
				})
				if err := output.WriteJSON(ctx.Out, resp); err != nil {
					return err
				}
				if !resp.OK {
					return helpers.ErrSilent
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&args, "args", "", "Command arguments as a JSON object")
	return cmd
}
