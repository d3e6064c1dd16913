package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/presentation"
)

var (
	relatedType    string
	evaluateStrict bool
)

var relationsCmd = &cobra.Command{
	Use:     "relations",
	Aliases: []string{"rel"},
	Short:   "Evaluate and browse relationships between assets",
}

var relationsEvaluateCmd = &cobra.Command{
	Use:   "evaluate <id|ulid|serial>",
	Short: "Check an asset's relationship requirements",
	Long: `Check each relationship requirement the asset declares and report
whether it is satisfied, missing, or linked to assets lacking required tags.

With --strict the command fails when any requirement is not OK.

Examples:
  hoard relations evaluate SN-1234
  hoard relations evaluate SN-1234 --strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			asset, ok := rt.svc.Lookup(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("no asset matches %q", args[0])
			}
			evals := rt.svc.Evaluate(cmd.Context(), asset.ID)
			if err := newFormatter(cmd.OutOrStdout()).FormatEvaluations(presentation.FromEvaluations(evals)); err != nil {
				return err
			}
			if evaluateStrict {
				failing := 0
				for _, e := range evals {
					if !e.Status.OK() {
						failing++
					}
				}
				if failing > 0 {
					return fmt.Errorf("%d of %d requirements not met", failing, len(evals))
				}
			}
			return nil
		})
	},
}

var relationsRelatedCmd = &cobra.Command{
	Use:   "related <id|ulid|serial>",
	Short: "List assets linked from an asset",
	Long: `List the assets an asset links to, optionally through one relationship
type. Use --components to list embedded components instead.

Examples:
  hoard relations related SN-1234
  hoard relations related SN-1234 --type host`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		components, _ := cmd.Flags().GetBool("components")
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			asset, ok := rt.svc.Lookup(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("no asset matches %q", args[0])
			}
			var related []inventory.Asset
			if components {
				related = rt.svc.Components(cmd.Context(), asset.ID)
			} else {
				related = rt.svc.Related(cmd.Context(), asset.ID, relatedType)
			}
			return newFormatter(cmd.OutOrStdout()).FormatAssets(presentation.FromAssets(related))
		})
	},
}

var relationsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List registered relationship types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			types := rt.svc.RelationshipTypes(cmd.Context())
			pairs := make([][2]string, 0, len(types))
			for _, t := range types {
				pairs = append(pairs, [2]string{t.ID, t.DisplayName()})
			}
			return newFormatter(cmd.OutOrStdout()).FormatPairs([2]string{"ID", "NAME"}, pairs)
		})
	},
}

var relationsRegisterCmd = &cobra.Command{
	Use:   "register <type-id> [name]",
	Short: "Register or rename a relationship type",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := inventory.RelationshipType{ID: args[0]}
		if len(args) == 2 {
			rt.Name = args[1]
		}
		return withRuntime(cmd.Context(), func(r *runtime) error {
			r.svc.RegisterRelationshipType(cmd.Context(), rt)
			if err := r.svc.Save(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", rt.DisplayName())
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(relationsCmd)
	relationsCmd.AddCommand(relationsEvaluateCmd, relationsRelatedCmd, relationsTypesCmd, relationsRegisterCmd)

	relationsEvaluateCmd.Flags().BoolVar(&evaluateStrict, "strict", false, "Fail when a requirement is not met")
	relationsRelatedCmd.Flags().StringVar(&relatedType, "type", "", "Only follow links of this relationship type")
	relationsRelatedCmd.Flags().Bool("components", false, "List embedded components")
}
