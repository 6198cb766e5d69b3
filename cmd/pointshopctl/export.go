package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"pointshop/internal/usecase"
	"pointshop/internal/util"

	"github.com/pkg/errors"
)

func handleExportOrders(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("export-orders", flag.ExitOnError)
	out := cmd.String("out", "", "Output file. Empty picks orders_YYYYMMDD_HHMM.csv, - writes to stdout")
	status := cmd.String("status", "", "Only orders in this status")
	from := cmd.String("from", "", "Earliest creation date, YYYY-MM-DD or YYYY-MM-DDTHH:MM")
	to := cmd.String("to", "", "Latest creation date, YYYY-MM-DD or YYYY-MM-DDTHH:MM")
	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse export-orders flags")
	}

	return withApp(ctx, func(a *app) error {
		query := usecase.OrderQuery{Status: *status, DateFrom: *from, DateTo: *to}

		path := *out
		if path == "" {
			path = a.orders.ExportFilename(a.clock.Now())
		}

		var w io.Writer = os.Stdout
		if path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return errors.Wrap(err, "failed to create output file")
			}
			defer f.Close()
			w = f
		}

		start := time.Now()
		rows, err := a.orders.ExportOrders(ctx, query, w)
		if err != nil {
			return err
		}

		if path != "-" {
			fmt.Printf("Exported %d orders to %s in %s\n", rows, path, util.FormatDuration(time.Since(start)))
		}

		return nil
	})
}
