package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/store"
)

type schemaReport struct {
	Document   string `json:"document"`
	Version    string `json:"version"`
	Expected   string `json:"expected"`
	Current    string `json:"current"`
	Compatible bool   `json:"compatible"`
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect document schema versions",
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the document's schema version against the expected one",
	Long: `Read the document's schema version without loading it into the catalog
and report whether this build can read it. Only the major version has to
match.

Exits non-zero when the versions are incompatible.

Examples:
  hoard schema check
  hoard schema check --path ./backup/inventory.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		expected, err := cfg.ExpectedVersion()
		if err != nil {
			return fmt.Errorf("invalid schema.expected: %w", err)
		}

		path := cfg.DocumentPath()
		st, _, closeStore, err := openStore(cfg, path)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		doc, err := st.Load(cmd.Context())
		switch {
		case errors.Is(err, store.ErrNotFound):
			doc = inventory.NewDocument()
		case err != nil:
			return err
		}

		report := schemaReport{
			Document:   path,
			Version:    doc.SchemaVersion.String(),
			Expected:   expected.String(),
			Current:    inventory.CurrentSchemaVersion.String(),
			Compatible: inventory.IsCompatible(doc.SchemaVersion, expected),
		}
		if jsonOutput {
			if err := newFormatter(cmd.OutOrStdout()).JSON(report); err != nil {
				return err
			}
		} else {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "document %s\nversion  %s\nexpected %s\n",
				report.Document, report.Version, report.Expected)
		}
		return inventory.CheckCompatible(doc.SchemaVersion, expected)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaCheckCmd)
}
