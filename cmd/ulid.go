package cmd

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/ulid"
)

var ulidCount int

var ulidCmd = &cobra.Command{
	Use:   "ulid",
	Short: "Generate and inspect ULIDs",
}

var ulidNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Print new ULIDs",
	Long: `Print freshly generated ULIDs, one per line.

ULIDs generated within the same millisecond are not ordered relative to
each other.

Examples:
  hoard ulid new
  hoard ulid new -n 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if ulidCount < 1 {
			return fmt.Errorf("--count must be at least 1")
		}
		out := cmd.OutOrStdout()
		for range ulidCount {
			id, err := ulid.Generate(time.Now(), rand.Reader)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, id); err != nil {
				return err
			}
		}
		return nil
	},
}

type ulidInfo struct {
	ULID      string `json:"ulid"`
	Timestamp uint64 `json:"timestamp_ms"`
	Time      string `json:"time"`
}

var ulidParseCmd = &cobra.Command{
	Use:   "parse <ulid>",
	Short: "Decode a ULID's timestamp",
	Long: `Validate a ULID and print its canonical form and embedded time.
Lowercase input is accepted.

Examples:
  hoard ulid parse 05B3VWV4G40G40R40M30E20918`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := ulid.Parse(args[0])
		if !ok {
			return fmt.Errorf("%q is not a valid ULID", args[0])
		}
		info := ulidInfo{
			ULID:      id.String(),
			Timestamp: id.Time(),
			Time:      id.TimeValue().UTC().Format(time.RFC3339Nano),
		}
		if jsonOutput {
			return newFormatter(cmd.OutOrStdout()).JSON(info)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", info.ULID, info.Timestamp, info.Time)
		return err
	},
}

func init() {
	rootCmd.AddCommand(ulidCmd)
	ulidCmd.AddCommand(ulidNewCmd, ulidParseCmd)

	ulidNewCmd.Flags().IntVarP(&ulidCount, "count", "n", 1, "How many to generate")
}
