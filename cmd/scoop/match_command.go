package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match <raw name>",
		Short: "Resolve a raw POS item name against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			return ctx.withApp(func(a *app) error {
				result, err := a.matcher.Match(cmd.Context(), raw)
				if err != nil {
					return err
				}

				itemName := ""
				variantName := ""
				if result.MenuItemID != "" {
					if item, err := a.store.GetMenuItem(cmd.Context(), result.MenuItemID); err == nil && item != nil {
						itemName = item.Name
					}
				}
				if result.VariantID != "" {
					if variant, err := a.store.GetVariant(cmd.Context(), result.VariantID); err == nil && variant != nil {
						variantName = variant.VariantName
					}
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"raw_name":     raw,
						"menu_item_id": result.MenuItemID,
						"menu_item":    itemName,
						"variant_id":   result.VariantID,
						"variant":      variantName,
						"confidence":   result.Confidence,
						"method":       result.Method,
					})
				}

				out := cmd.OutOrStdout()
				if !result.Matched() {
					fmt.Fprintf(out, "No match for %q\n", raw)
					return nil
				}
				renderRows(out,
					[]string{"Menu Item", "Variant", "Confidence", "Method"},
					[][]string{{itemName, variantName, strconv.Itoa(result.Confidence), result.Method}},
					2)
				return nil
			})
		},
	}
}
