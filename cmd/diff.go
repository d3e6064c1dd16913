package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/presentation"
	"github.com/zjrosen/hoard/internal/store"
)

var (
	diffContext int
	diffWrite   bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what saving would change in the document file",
	Long: `Load the document into the catalog and compare the file as stored with
the catalog's snapshot in the same format. Differences come from
normalization: trimmed and deduplicated tags, assets in id order, the
schema version rewritten, and so on.

With --write the normalized snapshot is saved over the file.

Only the file backend stores a text document; the sqlite backend is
rejected.

Examples:
  hoard diff
  hoard diff --context 0
  hoard diff --write`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if rt.file == nil {
				return fmt.Errorf("diff needs the file backend")
			}

			raw, err := rt.file.Raw(cmd.Context())
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			snapshot, err := rt.file.Encode(rt.svc.Snapshot())
			if err != nil {
				return err
			}

			lines := presentation.DiffLines(string(raw), string(snapshot))
			if !presentation.HasChanges(lines) {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return err
			}
			if err := newFormatter(cmd.OutOrStdout()).FormatDiff(lines, diffContext); err != nil {
				return err
			}
			if diffWrite {
				return rt.svc.Save(cmd.Context())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().IntVarP(&diffContext, "context", "U", 3, "Unchanged lines shown around each change")
	diffCmd.Flags().BoolVarP(&diffWrite, "write", "w", false, "Save the normalized document")
}
