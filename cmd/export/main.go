// export publishes a record table as per-record GeoJSON feature documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/sfomuseum/go-camera-trap/common"
	"github.com/sfomuseum/go-camera-trap/config"
	"github.com/sfomuseum/go-camera-trap/operations/export"
	"github.com/sfomuseum/go-camera-trap/record"
)

func main() {

	config_path := flag.String("config", "config.toml", "Path to a TOML configuration file.")
	table := flag.String("table", "", "The record table to export.")
	writer_uri := flag.String("writer-uri", "stdout://", "A valid whosonfirst/go-writer URI the features are written to.")

	flag.Parse()

	ctx := context.Background()

	if *table == "" {
		log.Fatal("Missing -table")
	}

	cfg, err := config.Load(*config_path)

	if err != nil {
		log.Fatal(err)
	}

	store, err := record.Open(cfg.Paths.Database, cfg.Catalog.TemplateTable)

	if err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	wr, err := common.NewWriter(ctx, *writer_uri)

	if err != nil {
		log.Fatal(err)
	}

	opts := &export.ExportOptions{
		Store:  store,
		Table:  *table,
		Writer: wr,
	}

	count, err := export.ExportTable(ctx, opts)

	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Exported %d features from '%s'.\n", count, *table)
}
