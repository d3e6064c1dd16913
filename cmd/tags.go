package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/presentation"
	"github.com/zjrosen/hoard/internal/service"
)

var (
	tagsDomain string
	tagsAsset  string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Browse tags and their handler domains",
	Long: `Every tag in the catalog is registered with a handler in the domain named
by its namespace ("usb" files under general, "vendor:acme" under vendor).`,
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with their asset counts",
	Long: `List tags with their asset counts. On the sqlite backend the STORED
column shows how many saved assets carry the tag.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			counts := rt.svc.Catalog().Tags()
			out := make([]presentation.TagDTO, 0, len(counts))
			for _, tc := range counts {
				domain, _ := rt.svc.Tags().DomainFor(tc.Tag)
				dto := presentation.TagDTO{Tag: tc.Tag, Count: tc.Count, Domain: domain}
				if rt.db != nil {
					n, err := rt.db.CountByTag(cmd.Context(), tc.Tag)
					if err != nil {
						return err
					}
					dto.Stored = &n
				}
				out = append(out, dto)
			}
			return newFormatter(cmd.OutOrStdout()).FormatTags(out)
		})
	},
}

var tagsDomainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List handler domains and their tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			reg := rt.svc.Tags()
			domains := reg.Domains()
			pairs := make([][2]string, 0, len(domains))
			for _, d := range domains {
				pairs = append(pairs, [2]string{d, strings.Join(reg.TagsFor(d), ", ")})
			}
			return newFormatter(cmd.OutOrStdout()).FormatPairs([2]string{"DOMAIN", "TAGS"}, pairs)
		})
	},
}

var tagsRunCmd = &cobra.Command{
	Use:   "run <tag> | --asset <ref>",
	Short: "Execute the handler registered for a tag",
	Long: `Execute the handler registered for a tag. The domain defaults to the
tag's namespace.

With --asset, run the handler of every tag the asset carries that is
registered in --domain (default: general).

Examples:
  hoard tags run usb
  hoard tags run vendor:acme --domain vendor
  hoard tags run --asset KB-42 --domain general`,
	Args: func(cmd *cobra.Command, args []string) error {
		if tagsAsset != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if tagsAsset != "" {
			return runAssetTags(cmd)
		}
		tag := args[0]
		domain := tagsDomain
		if domain == "" {
			domain = service.TagDomain(tag)
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if !rt.svc.Tags().IsRegistered(tag, domain) {
				return fmt.Errorf("no handler for %q in domain %q", tag, domain)
			}
			result, err := rt.svc.ExecuteTag(cmd.Context(), tag, domain)
			if err != nil {
				return err
			}
			f := newFormatter(cmd.OutOrStdout())
			if assets, ok := result.([]inventory.Asset); ok {
				return f.FormatAssets(presentation.FromAssets(assets))
			}
			return f.JSON(result)
		})
	},
}

func runAssetTags(cmd *cobra.Command) error {
	domain := tagsDomain
	if domain == "" {
		domain = service.DefaultTagDomain
	}
	return withRuntime(cmd.Context(), func(rt *runtime) error {
		asset, ok := rt.svc.Lookup(cmd.Context(), tagsAsset)
		if !ok {
			return fmt.Errorf("no asset matches %q", tagsAsset)
		}
		results, err := rt.svc.RunTagHandlers(cmd.Context(), asset, domain)
		if err != nil {
			return err
		}
		pairs := make([][2]string, 0, len(results))
		for _, r := range results {
			pairs = append(pairs, [2]string{r.Tag, summarizeResult(r.Result)})
		}
		return newFormatter(cmd.OutOrStdout()).FormatPairs([2]string{"TAG", "RESULT"}, pairs)
	})
}

// summarizeResult renders a handler result on one line.
func summarizeResult(v any) string {
	assets, ok := v.([]inventory.Asset)
	if !ok {
		return fmt.Sprint(v)
	}
	names := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsListCmd, tagsDomainsCmd, tagsRunCmd)

	tagsRunCmd.Flags().StringVar(&tagsDomain, "domain", "", "Handler domain (default: the tag's namespace)")
	tagsRunCmd.Flags().StringVar(&tagsAsset, "asset", "", "Run the handlers of every tag on this asset")
}
