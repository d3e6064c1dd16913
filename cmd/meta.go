package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Show and set document metadata",
}

var metaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List document metadata entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			meta := rt.svc.Snapshot().Metadata
			pairs := make([][2]string, 0, len(meta))
			for _, key := range slices.Sorted(maps.Keys(meta)) {
				pairs = append(pairs, [2]string{key, meta[key]})
			}
			return newFormatter(cmd.OutOrStdout()).FormatPairs([2]string{"KEY", "VALUE"}, pairs)
		})
	},
}

var metaSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a document metadata entry and save",
	Long: `Set a document metadata entry and save the document.

Examples:
  hoard meta set owner sam
  hoard meta set location "garage shelf 2"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := rt.svc.SetMetadata(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if err := rt.svc.Save(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(metaCmd)
	metaCmd.AddCommand(metaShowCmd, metaSetCmd)
}
