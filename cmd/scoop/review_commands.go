package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scoop/internal/resolution"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review and correct unverified catalog entities",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewVerifyCommand(ctx))
	reviewCmd.AddCommand(newReviewVerifyVariantCommand(ctx))
	reviewCmd.AddCommand(newReviewVerifyParseCommand(ctx))
	reviewCmd.AddCommand(newReviewRenameCommand(ctx))
	reviewCmd.AddCommand(newReviewMergeCommand(ctx))
	reviewCmd.AddCommand(newReviewUndoCommand(ctx))
	reviewCmd.AddCommand(newReviewRemapCommand(ctx))
	reviewCmd.AddCommand(newReviewHistoryCommand(ctx))

	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unverified menu items awaiting review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				items, err := a.workflow.ListUnverified(cmd.Context())
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					type row struct {
						ID             string  `json:"id"`
						Name           string  `json:"name"`
						Type           string  `json:"type"`
						TotalSold      int64   `json:"total_sold"`
						TotalRevenue   float64 `json:"total_revenue"`
						SuggestionID   string  `json:"suggestion_id,omitempty"`
						SuggestionName string  `json:"suggestion_name,omitempty"`
					}
					rows := make([]row, 0, len(items))
					for _, item := range items {
						rows = append(rows, row{
							ID:             item.ID,
							Name:           item.Name,
							Type:           item.Type,
							TotalSold:      item.TotalSold,
							TotalRevenue:   item.TotalRevenue,
							SuggestionID:   item.SuggestionID,
							SuggestionName: item.SuggestionName,
						})
					}
					return writeJSON(cmd, rows)
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No unverified items.")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.ID,
						item.Name,
						item.Type,
						strconv.FormatInt(item.TotalSold, 10),
						fmt.Sprintf("%.2f", item.TotalRevenue),
						item.SuggestionName,
					})
				}
				renderRows(out,
					[]string{"ID", "Name", "Type", "Sold", "Revenue", "Possible Duplicate Of"},
					rows, 3, 4)
				return nil
			})
		},
	}
}

func newReviewVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <menu-item-id>",
		Short: "Mark a menu item as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.Verify(cmd.Context(), args[0]))
			})
		},
	}
}

func newReviewVerifyVariantCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-variant <variant-id>",
		Short: "Mark a variant as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.VerifyVariant(cmd.Context(), args[0]))
			})
		},
	}
}

func newReviewVerifyParseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-parse <raw name>",
		Short: "Confirm the cached parse for a raw POS name",
		Long: `Verify-parse promotes the parsing-table entry for the exact raw name to
verified, so future matches of that name resolve at full confidence.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.VerifyParse(cmd.Context(), raw))
			})
		},
	}
}

func newReviewRenameCommand(ctx *commandContext) *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "rename <menu-item-id> <new name>",
		Short: "Rename a menu item, merging into an existing item on collision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.Rename(cmd.Context(), args[0], args[1], itemType))
			})
		},
	}

	cmd.Flags().StringVarP(&itemType, "type", "t", "", "New item type (keeps the current type when omitted)")
	return cmd
}

func newReviewMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source-id> <target-id>",
		Short: "Merge a duplicate menu item into its canonical counterpart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.Merge(cmd.Context(), args[0], args[1]))
			})
		},
	}
}

func newReviewUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <merge-id>",
		Short: "Undo a recorded merge, restoring the source item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.Undo(cmd.Context(), args[0]))
			})
		},
	}
}

func newReviewRemapCommand(ctx *commandContext) *cobra.Command {
	var variantID string

	cmd := &cobra.Command{
		Use:   "remap <order-item-id> <menu-item-id>",
		Short: "Repoint one order item occurrence at a different menu item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return reportOutcome(cmd, ctx, a.workflow.Remap(cmd.Context(), args[0], args[1], variantID))
			})
		},
	}

	cmd.Flags().StringVar(&variantID, "variant", "", "Variant to assign alongside the menu item")
	return cmd
}

func newReviewHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded merges that can still be undone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				records, err := a.store.ListMergeRecords(cmd.Context())
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					type row struct {
						MergeID    string `json:"merge_id"`
						SourceID   string `json:"source_id"`
						SourceName string `json:"source_name"`
						TargetID   string `json:"target_id"`
						OrderItems int    `json:"order_items"`
						MergedAt   string `json:"merged_at"`
					}
					rows := make([]row, 0, len(records))
					for _, record := range records {
						rows = append(rows, row{
							MergeID:    record.MergeID,
							SourceID:   record.SourceID,
							SourceName: record.SourceName,
							TargetID:   record.TargetID,
							OrderItems: len(record.AffectedOrderItems),
							MergedAt:   record.MergedAt.Format("2006-01-02 15:04:05"),
						})
					}
					return writeJSON(cmd, rows)
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No merge history.")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						record.MergeID,
						record.SourceName,
						record.TargetID,
						strconv.Itoa(len(record.AffectedOrderItems)),
						record.MergedAt.Format("2006-01-02 15:04:05"),
					})
				}
				renderRows(out,
					[]string{"Merge ID", "Source", "Target ID", "Order Items", "Merged At"},
					rows, 3)
				return nil
			})
		},
	}
}

func reportOutcome(cmd *cobra.Command, ctx *commandContext, outcome resolution.Outcome) error {
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, map[string]string{
			"status":  string(outcome.Status),
			"message": outcome.Message,
		}); err != nil {
			return err
		}
		if outcome.Status == resolution.StatusError {
			return errors.New(outcome.Message)
		}
		return nil
	}

	if outcome.Status == resolution.StatusError {
		return errors.New(outcome.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
	return nil
}
