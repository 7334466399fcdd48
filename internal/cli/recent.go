package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/recent"
	"gitly.dev/gitly/internal/runtime"
)

const recentTimeLayout = "2006-01-02 15:04"

// newRecentCmd creates the recent command
func newRecentCmd() *cobra.Command {
	var asJSON bool

	listRecent := func(cmd *cobra.Command, _ []string) error {
		return helpers.Run(cmd, func(ctx *runtime.Context) error {
			entries, err := ctx.Recent.List()
			if err != nil {
				return err
			}
			return printRecent(ctx, entries, asJSON)
		})
	}

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the repositories opened most recently",
		Args:  cobra.NoArgs,
		RunE:  listRecent,
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the repositories opened most recently",
			Args:  cobra.NoArgs,
			RunE:  listRecent,
		},
		&cobra.Command{
			Use:   "forget <path>",
			Short: "Remove a repository from the recent list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return helpers.Run(cmd, func(ctx *runtime.Context) error {
					before, err := ctx.Recent.List()
					if err != nil {
						return err
					}
					entries, err := ctx.Recent.Remove(args[0])
					if err != nil {
						return err
					}
					if len(entries) == len(before) {
						ctx.Splog.Warn("%s was not in the recent list", args[0])
					}
					return printRecent(ctx, entries, asJSON)
				})
			},
		},
	)
	return cmd
}

func printRecent(ctx *runtime.Context, entries []recent.Entry, asJSON bool) error {
	if asJSON {
		return output.WriteJSON(ctx.Out, entries)
	}
	if len(entries) == 0 {
		ctx.Splog.Info("No recent repositories.")
		return nil
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(ctx.Out, "%s  %s\n", ctx.Styles.Dim(e.OpenedAt.Local().Format(recentTimeLayout)), e.Path); err != nil {
			return err
		}
	}
	return nil
}
