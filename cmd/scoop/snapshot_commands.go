package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export and import canonical catalog snapshots",
	}

	snapshotCmd.AddCommand(newSnapshotExportCommand(ctx))
	snapshotCmd.AddCommand(newSnapshotImportCommand(ctx))

	return snapshotCmd
}

func newSnapshotExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the full canonical state to the snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.snapshot.Export(cmd.Context()); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"path": a.snapshot.Path()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", a.snapshot.Path())
				return nil
			})
		},
	}
}

func newSnapshotImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Gap-fill the catalog from the snapshot file",
		Long: `Import replays the snapshot into the catalog without clobbering newer
local state: identities are upserted, verification never downgrades, and
mappings that already exist are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				stats, err := a.snapshot.Import(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{
						"menu_items_upserted": stats.MenuItemsUpserted,
						"variants_upserted":   stats.VariantsUpserted,
						"mappings_added":      stats.MappingsAdded,
						"mappings_skipped":    stats.MappingsSkipped,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Imported %d menu items, %d variants, %d mappings (%d already present)\n",
					stats.MenuItemsUpserted, stats.VariantsUpserted, stats.MappingsAdded, stats.MappingsSkipped)
				return nil
			})
		},
	}
}
