package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scoop/internal/logging"
	"scoop/internal/registry"
)

// ingestRow is one parsed line of the order export.
type ingestRow struct {
	orderItemID string
	rawName     string
	quantity    int64
	unitPrice   float64
	isAddon     bool
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <orders.csv>",
		Short: "Ingest a POS order export into the catalog",
		Long: `Ingest reads a CSV order export and records every line item in the
catalog, minting unverified menu items and variants for names it has not
seen before. Ingestion is idempotent per order item id, so re-running the
same export is safe.

The file must carry a header row with at least order_item_id and raw_name
columns; quantity, unit_price, and is_addon are optional.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open order export: %w", err)
			}
			defer file.Close()

			return ctx.withApp(func(a *app) error {
				var processed, failed int
				err := forEachIngestRow(file, func(row ingestRow, line int) {
					opts := []registry.RecordOption{
						registry.WithSale(row.quantity, row.unitPrice),
					}
					if row.isAddon {
						opts = append(opts, registry.WithAddon())
					}
					_, err := a.registry.Record(cmd.Context(), row.rawName, row.orderItemID, opts...)
					if err != nil {
						failed++
						a.logger.Warn("ingest row failed",
							logging.Int("line", line),
							logging.String(logging.FieldOrderItemID, row.orderItemID),
							logging.Error(err))
						return
					}
					processed++
				})
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{
						"processed": processed,
						"failed":    failed,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d order items (%d failed)\n", processed, failed)
				if failed > 0 {
					return fmt.Errorf("%d rows failed to ingest", failed)
				}
				return nil
			})
		},
	}
}

// forEachIngestRow parses the export header, then calls fn once per data row.
func forEachIngestRow(r io.Reader, fn func(row ingestRow, line int)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read export header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"order_item_id", "raw_name"} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("export is missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read export line %d: %w", line, err)
		}

		row := ingestRow{
			orderItemID: field(record, "order_item_id"),
			rawName:     field(record, "raw_name"),
			quantity:    1,
		}
		if row.orderItemID == "" || row.rawName == "" {
			return fmt.Errorf("export line %d has an empty order_item_id or raw_name", line)
		}
		if raw := field(record, "quantity"); raw != "" {
			quantity, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("export line %d: bad quantity %q: %w", line, raw, err)
			}
			row.quantity = quantity
		}
		if raw := field(record, "unit_price"); raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("export line %d: bad unit_price %q: %w", line, raw, err)
			}
			row.unitPrice = price
		}
		if raw := field(record, "is_addon"); raw != "" {
			addon, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("export line %d: bad is_addon %q: %w", line, raw, err)
			}
			row.isAddon = addon
		}

		fn(row, line)
	}
}
