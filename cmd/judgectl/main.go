package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/annolab/imagejudge/internal/export"
	"github.com/annolab/imagejudge/internal/storage"
)

// judgectl flattens a record store into a delimited table.
func main() {
	storeType := flag.String("store", string(storage.JSONFile), "store backend: json | sqlite | pg")
	path := flag.String("path", "annotations.json", "store file for the json and sqlite backends")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "connection string for the pg backend")
	out := flag.String("out", "", "output file (stdout when empty)")
	format := flag.String("format", "csv", "output format: csv | table")
	flag.Parse()

	ctx := context.Background()

	store, err := storage.NewStore(ctx, storage.Config{
		Type:    storage.Type(*storeType),
		Path:    *path,
		ConnStr: *dsn,
	})
	if err != nil {
		slog.Error("Failed to open record store", "type", *storeType, "error", err)
		os.Exit(1)
	}

	records, err := store.ReadAll(ctx)
	if err != nil {
		slog.Error("Failed to read record store", "error", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			slog.Error("Failed to create output file", "path", *out, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	table := export.Flatten(records)
	switch *format {
	case "csv":
		if err := export.WriteCSV(table, w); err != nil {
			slog.Error("Failed to write CSV", "error", err)
			os.Exit(1)
		}
	case "table":
		export.WriteTable(table, w)
	default:
		slog.Error("Unknown output format", "format", *format)
		os.Exit(1)
	}

	slog.Info("Export complete", "records", len(records))
}
