// split-video extracts still frames from one or more video files with an
// external ffmpeg binary, for frame-by-frame review.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/sfomuseum/go-camera-trap/config"
	"github.com/sfomuseum/go-camera-trap/operations/split"
)

func main() {

	config_path := flag.String("config", "config.toml", "Path to a TOML configuration file.")
	output := flag.String("output", "", "The folder frames are written to. Defaults to a folder alongside each video.")
	rate := flag.Float64("rate", 0, "Frames extracted per second of video. Defaults to the configured rate.")

	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*config_path)

	if err != nil {
		log.Fatal(err)
	}

	frame_rate := cfg.Split.FrameRate

	if *rate > 0 {
		frame_rate = *rate
	}

	for _, video := range flag.Args() {

		opts := &split.SplitOptions{
			FFmpeg:      cfg.Paths.FFmpeg,
			Video:       video,
			OutputDir:   *output,
			FrameRate:   frame_rate,
			JPEGQuality: cfg.Split.JPEGQuality,
		}

		frames, err := split.Split(ctx, opts)

		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Split %s in to %d frames.\n", video, len(frames))
	}
}
