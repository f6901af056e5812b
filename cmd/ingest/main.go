// ingest catalogs the media files in a camera's source folder in to a
// record table, prompting for anything it cannot resolve on its own.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sfomuseum/go-camera-trap/config"
	"github.com/sfomuseum/go-camera-trap/lookup"
	"github.com/sfomuseum/go-camera-trap/operations/ingest"
	"github.com/sfomuseum/go-camera-trap/record"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

type consolePrompter struct {
	ingest.Prompter
	reader *bufio.Reader
}

func (p *consolePrompter) TableName(ctx context.Context) (string, error) {

	fmt.Print("Enter name for destination table: ")

	line, err := p.reader.ReadString('\n')

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (p *consolePrompter) CameraID(ctx context.Context, folder string) (string, error) {

	fmt.Printf("Folder name '%s' does not match any camera.\nEnter camera ID: ", folder)

	line, err := p.reader.ReadString('\n')

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func main() {

	config_path := flag.String("config", "config.toml", "Path to a TOML configuration file.")
	folder := flag.String("folder", "", "The source folder of media files to ingest.")
	table := flag.String("table", "", "The destination table. Prompted for when empty.")
	camera_id := flag.String("camera-id", "", "An explicit camera id, used when the folder name does not match a known camera.")
	hash_media := flag.Bool("hash-media", false, "Compute fingerprints and perceptual hashes for ingested media.")
	workers := flag.Int("workers", 4, "The number of files whose metadata is extracted concurrently.")

	flag.Parse()

	ctx := context.Background()

	if *folder == "" {
		log.Fatal("Missing -folder")
	}

	cfg, err := config.Load(*config_path)

	if err != nil {
		log.Fatal(err)
	}

	loc, err := cfg.Location()

	if err != nil {
		log.Fatal(err)
	}

	store, err := record.Open(cfg.Paths.Database, cfg.Catalog.TemplateTable)

	if err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	camera_lu, err := lookup.NewBlobLookerUpper(ctx, cfg.Catalog.CameraTableURI)

	if err != nil {
		log.Fatal(err)
	}

	cameras, err := lookup.NewCameraRegistry(ctx, camera_lu)

	if err != nil {
		log.Fatal(err)
	}

	abs_folder, err := filepath.Abs(*folder)

	if err != nil {
		log.Fatal(err)
	}

	bucket_uri := fmt.Sprintf("file://%s", filepath.ToSlash(abs_folder))

	bucket, err := blob.OpenBucket(ctx, bucket_uri)

	if err != nil {
		log.Fatal(err)
	}

	defer bucket.Close()

	prompter := &consolePrompter{
		reader: bufio.NewReader(os.Stdin),
	}

	opts := &ingest.IngestOptions{
		Store:      store,
		Cameras:    cameras,
		Bucket:     bucket,
		Folder:     abs_folder,
		TableName:  *table,
		CameraID:   *camera_id,
		Prompter:   prompter,
		Location:   loc,
		Timezone:   cfg.Catalog.Timezone,
		HashMedia:  *hash_media,
		MaxWorkers: *workers,
	}

	count, err := ingest.Ingest(ctx, opts)

	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Appended %d new media files.\n", count)
}
