package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"twonest/internal/cli"
	"twonest/internal/core"
	"twonest/internal/export"
)

// twonest-export dumps the stored transactions as CSV, for backups or
// spreadsheet import without going through the HTTP API.
func main() {
	month := flag.String("month", "", "restrict to one YYYY-MM month")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.OpenStore(logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()

	state, err := res.Store.LoadApp(context.Background())
	if err != nil {
		logger.Error("Failed to load state", "error", err)
		os.Exit(1)
	}

	txs := state.Transactions
	if *month != "" {
		filtered := []core.Transaction{}
		for _, tx := range txs {
			if tx.InMonth(*month) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	doc, err := export.CSV(txs)
	if err != nil {
		logger.Error("Failed to render CSV", "error", err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Print(doc)
		return
	}
	if err := os.WriteFile(*out, []byte(doc), 0o644); err != nil {
		logger.Error("Failed to write output file", "error", err, "path", *out)
		os.Exit(1)
	}
	logger.Info("Export written", "path", *out, "transactions", len(txs))
}
