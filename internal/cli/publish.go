package cli

import (
	"github.com/spf13/cobra"

	"kioskcal/internal/publish"
)

func newPublishCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Commit and push the slides directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := &publish.Git{
				RepoDir: a.cfg.Publish.RepoDir,
				Remote:  a.cfg.Publish.Remote,
				Branch:  a.cfg.Publish.Branch,
			}
			committed, err := g.Publish(cmd.Context(), message, a.cfg.OutputDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if committed {
				printSuccess(out, "committed and pushed %s", a.cfg.OutputDir)
			} else {
				printWarning(out, "no changes to commit")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (default: timestamped auto-update)")
	return cmd
}
