package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/foreign"
	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/pseudonyms"
	"regraft.dev/regraft/internal/worktree"
)

// newPseudonymsCmd creates the pseudonyms command
func newPseudonymsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pseudonyms",
		Short: "List groups of revisions that represent the same change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, err := worktree.Open(".")
			if err != nil {
				return err
			}
			splog := output.NewSplog()

			revids, err := wt.Repo.AllRevisions()
			if err != nil {
				return err
			}
			registry := foreign.NewRegistry(foreign.NewGitMappingV1(), foreign.NewGitMappingV2())
			sets, err := pseudonyms.Find(wt.Repo, revids, registry)
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				splog.Info("No pseudonyms found.")
				return nil
			}
			for _, set := range sets {
				splog.Info("%s", strings.Join(set, " "))
			}
			return nil
		},
	}
}
