// review is a console front-end to the review session: it walks a record
// table one record at a time, rendering a display plan and committing
// annotation edits with save-before-navigate semantics.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sfomuseum/go-camera-trap/config"
	"github.com/sfomuseum/go-camera-trap/lookup"
	"github.com/sfomuseum/go-camera-trap/operations/review"
	"github.com/sfomuseum/go-camera-trap/record"
)

func show(s *review.Session) {

	fmt.Println(s.Status())

	plan := s.Render()

	switch plan.Kind {
	case review.RenderImage:
		fmt.Printf("[image] %s (scale %.2f)\n", plan.Path, plan.Scale)
	case review.RenderVideo:
		fmt.Printf("[video] %s (type 'open' to play)\n", plan.Path)
	default:
		fmt.Println("No media linked")
	}

	species, second, count, comment, code, code2 := s.Annotations()

	fmt.Printf("  species:        %s (%s)\n", species, code)
	fmt.Printf("  species_second: %s (%s)\n", second, code2)
	fmt.Printf("  species_count:  %s\n", count)
	fmt.Printf("  comment:        %s\n", comment)
}

func main() {

	config_path := flag.String("config", "config.toml", "Path to a TOML configuration file.")
	table := flag.String("table", "", "The record table to review.")
	opener := flag.String("opener", "xdg-open", "The command used to launch external media playback.")

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

	species_lu, err := lookup.NewBlobLookerUpper(ctx, cfg.Catalog.SpeciesTableURI)

	if err != nil {
		log.Fatal(err)
	}

	species, err := lookup.NewSpeciesLookup(ctx, species_lu)

	if err != nil {
		log.Fatal(err)
	}

	open_media := func(ctx context.Context, path string) error {
		return exec.CommandContext(ctx, *opener, path).Start()
	}

	opts := &review.SessionOptions{
		Store:             store,
		Species:           species,
		Table:             *table,
		SlideshowInterval: time.Duration(cfg.Review.SlideshowIntervalSeconds) * time.Second,
		Opener:            open_media,
	}

	s := review.NewSession(opts)

	err = s.Load(ctx)

	if err != nil {
		log.Fatal(err)
	}

	show(s)

	scanner := bufio.NewScanner(os.Stdin)

	for {

		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error

		switch cmd {
		case "n", "next":
			err = s.Next(ctx)
		case "p", "prev":
			err = s.Previous(ctx)
		case "f", "first":
			err = s.First(ctx)
		case "l", "last":
			err = s.Last(ctx)
		case "j", "jump":
			err = s.JumpToFID(ctx, rest)
		case "+":
			s.AdjustZoom(cfg.Review.ZoomInFactor)
		case "-":
			s.AdjustZoom(cfg.Review.ZoomOutFactor)
		case "fit":
			s.FitToWindow()
		case "slideshow":

			if s.ToggleSlideshow(ctx) {
				fmt.Println("Slideshow started")
			} else {
				fmt.Println("Slideshow stopped")
			}

			continue

		case "species":
			s.SetSpecies(rest)
		case "second":
			s.SetSpeciesSecond(rest)
		case "count":
			s.SetCount(rest)
		case "comment":
			s.SetComment(rest)
		case "clear":
			s.ClearFields()
		case "save":
			err = s.Save(ctx)
		case "open":
			err = s.OpenMedia(ctx)
		case "q", "quit":

			err = s.Save(ctx)

			if err != nil {
				log.Fatal(err)
			}

			return

		case "":
			continue
		default:
			fmt.Printf("Unknown command '%s'\n", cmd)
			continue
		}

		if err != nil {
			fmt.Println(err)
			continue
		}

		show(s)
	}
}
