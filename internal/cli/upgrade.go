package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/foreign"
	"regraft.dev/regraft/internal/output"
)

// newUpgradeCmd creates the upgrade command
func newUpgradeCmd() *cobra.Command {
	var allowChanges bool
	var idmapFile string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "upgrade <git-repository>",
		Short: "Upgrade revisions mapped from a foreign git repository",
		Long: `Upgrade changes the identity of revisions that were mapped from a
foreign git repository with an older mapping scheme, together with every
descendant whose ancestry changes as a result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, unlock, err := openLocked()
			if err != nil {
				return err
			}
			defer unlock()

			splog := output.NewSplog()
			splog.SetVerbose(verbose)

			newMapping := foreign.NewGitMappingV2()
			registry := foreign.NewRegistry(foreign.NewGitMappingV1(), newMapping)
			foreignRepo, err := foreign.OpenGitRepository(args[0], newMapping)
			if err != nil {
				return err
			}

			renames, err := foreign.UpgradeWorkingTree(wt, foreignRepo, newMapping, registry, allowChanges)
			if err != nil {
				return err
			}
			if len(renames) == 0 {
				splog.Info("Nothing to do.")
				return nil
			}
			if verbose {
				for _, oldID := range sortedKeys(renames) {
					splog.Debug("%s -> %s", oldID, renames[oldID])
				}
			}
			if idmapFile != "" {
				if err := writeIDMap(idmapFile, renames); err != nil {
					return err
				}
			}
			splog.Info("Upgraded %d revisions.", len(renames))
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowChanges, "allow-changes", false, "Allow upgrades that change revision metadata")
	cmd.Flags().StringVar(&idmapFile, "idmap-file", "", "Write a map of old and new revision ids to this file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the list of rewrites")

	return cmd
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeIDMap(path string, renames map[string]string) error {
	var b strings.Builder
	for _, oldID := range sortedKeys(renames) {
		fmt.Fprintf(&b, "%s\t%s\n", oldID, renames[oldID])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write id map: %w", err)
	}
	return nil
}
