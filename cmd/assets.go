package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/presentation"
)

var (
	listTags   []string
	listStage  string
	listSource string
	listOffset int
	listLimit  int

	addName     string
	addTags     []string
	addStage    string
	addSource   string
	addSerial   string
	addBarcode  string
	addContents string
)

var assetsCmd = &cobra.Command{
	Use:     "assets",
	Aliases: []string{"asset", "a"},
	Short:   "List, show, add and delete assets",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets matching tags, stage and source",
	Long: `List assets in id order, one page at a time.

Tags are ANDed: an asset must carry every --tag to match.

Examples:
  # Everything, first page
  hoard assets list

  # Owned USB devices
  hoard assets list --tag usb --stage owned

  # Second page of 20
  hoard assets list --limit 20 --offset 20

  # Names only
  hoard assets list --json | jq '.assets[].name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit := listLimit
		if limit <= 0 {
			limit = cfg.Catalog.PageSize
		}
		cr := catalog.Criteria{
			Tags:   listTags,
			Stage:  inventory.LifecycleStage(listStage),
			Source: listSource,
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			page := rt.svc.List(cmd.Context(), cr, listOffset, limit)
			return newFormatter(cmd.OutOrStdout()).FormatPage(presentation.FromPage(page))
		})
	},
}

var assetsShowCmd = &cobra.Command{
	Use:   "show <id|ulid|serial>",
	Short: "Show one asset",
	Long: `Show one asset looked up by asset id, ULID identifier or serial number.

Examples:
  hoard assets show 05B3VWV4G40G40R40M30E20918
  hoard assets show SN-1234`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			asset, ok := rt.svc.Lookup(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("no asset matches %q", args[0])
			}
			return newFormatter(cmd.OutOrStdout()).FormatAsset(presentation.FromAsset(asset))
		})
	},
}

var assetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an asset",
	Long: `Add an asset and save the document.

A ULID identifier is assigned unless the auto-ulid flag is turned off.

Examples:
  hoard assets add --name "Keyboard" --tag usb --tag mechanical --stage owned
  hoard assets add --name "Drill" --serial DR-0042 --source ebay --contents device+box`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if addName == "" {
			return fmt.Errorf("--name is required")
		}
		contents, err := inventory.ParsePackageContents(addContents)
		if err != nil {
			return err
		}
		asset := inventory.Asset{
			Name:     addName,
			Tags:     addTags,
			Stage:    inventory.LifecycleStage(addStage),
			Source:   addSource,
			Contents: contents,
		}
		if addSerial != "" {
			asset.Identifiers = append(asset.Identifiers,
				inventory.Identifier{Type: inventory.IdentifierSerialNumber, Value: addSerial})
		}
		if addBarcode != "" {
			asset.Identifiers = append(asset.Identifiers,
				inventory.Identifier{Type: inventory.IdentifierBarcode, Value: addBarcode})
		}

		return withRuntime(cmd.Context(), func(rt *runtime) error {
			stored, err := rt.svc.AddAsset(cmd.Context(), asset)
			if err != nil {
				return err
			}
			if err := rt.svc.Save(cmd.Context()); err != nil {
				return err
			}
			return newFormatter(cmd.OutOrStdout()).FormatAsset(presentation.FromAsset(stored))
		})
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:     "delete <id|ulid|serial>",
	Aliases: []string{"rm"},
	Short:   "Delete an asset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			asset, ok := rt.svc.Lookup(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("no asset matches %q", args[0])
			}
			if _, ok := rt.svc.Delete(cmd.Context(), asset.ID); !ok {
				return fmt.Errorf("asset %s vanished before delete", asset.ID)
			}
			if err := rt.svc.Save(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", asset.Name, asset.ID)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsListCmd, assetsShowCmd, assetsAddCmd, assetsDeleteCmd)

	assetsListCmd.Flags().StringArrayVarP(&listTags, "tag", "t", nil, "Require tag (repeatable, AND logic)")
	assetsListCmd.Flags().StringVar(&listStage, "stage", "", "Filter by lifecycle stage")
	assetsListCmd.Flags().StringVar(&listSource, "source", "", "Filter by acquisition source")
	assetsListCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip this many results")
	assetsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Page size (default: catalog.page_size)")

	assetsAddCmd.Flags().StringVar(&addName, "name", "", "Asset name (required)")
	assetsAddCmd.Flags().StringArrayVarP(&addTags, "tag", "t", nil, "Tag (repeatable)")
	assetsAddCmd.Flags().StringVar(&addStage, "stage", string(inventory.StageOwned), "Lifecycle stage")
	assetsAddCmd.Flags().StringVar(&addSource, "source", "", "Where the asset came from")
	assetsAddCmd.Flags().StringVar(&addSerial, "serial", "", "Serial number identifier")
	assetsAddCmd.Flags().StringVar(&addBarcode, "barcode", "", "Barcode identifier")
	assetsAddCmd.Flags().StringVar(&addContents, "contents", "", "Package contents, e.g. device+box+manual or complete")
}
