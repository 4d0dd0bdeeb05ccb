package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/Eversonv4/profileform/internal/config"
	"github.com/Eversonv4/profileform/internal/formdef"
	"github.com/Eversonv4/profileform/internal/logger"
	"github.com/Eversonv4/profileform/pkg/form"
	"github.com/Eversonv4/profileform/pkg/tui"
	"github.com/Eversonv4/profileform/pkg/upload"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	endpoint := flag.String("endpoint", "", "storage endpoint URL (overrides config)")
	bucket := flag.String("bucket", "", "destination bucket (overrides config)")
	dir := flag.String("dir", "", "upload into a local directory instead of the HTTP store")
	format := flag.String("format", "", "output format: json or pretty")
	output := flag.String("output", "", "output file (stdout if empty)")
	verbose := flag.Bool("verbose", false, "dump the published profile to stderr")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *endpoint != "" {
		cfg.StorageURL = *endpoint
	}
	if *bucket != "" {
		cfg.Bucket = *bucket
	}
	if *format != "" {
		cfg.OutputFormat = *format
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	uploader, err := newUploader(cfg.StorageURL, *dir)
	if err != nil {
		log.Error("configure uploader", "error", err)
		os.Exit(1)
	}

	ctrl, err := form.New(uploader,
		form.WithBucket(cfg.Bucket),
		form.WithUploadTimeout(cfg.UploadTimeout),
		form.WithLogger(log),
	)
	if err != nil {
		log.Error("configure form", "error", err)
		os.Exit(1)
	}

	fm, err := formdef.Load(ctx)
	if err != nil {
		log.Error("load form definition", "error", err)
		os.Exit(1)
	}

	session, err := tui.NewSession(tui.WithOutputFormat(tui.OutputFormat(cfg.OutputFormat)))
	if err != nil {
		log.Error("configure session", "error", err)
		os.Exit(1)
	}

	payload, err := session.Run(ctx, fm, ctrl)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		log.Error("session failed", "error", err)
		os.Exit(1)
	}

	if *verbose {
		if profile, ok := ctrl.Published(); ok {
			spew.Fdump(os.Stderr, profile)
		}
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Error("write output", "path", *output, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Profile written to %s\n", *output)
		return
	}
	fmt.Println(string(payload))
}

func newUploader(endpoint, dir string) (upload.Uploader, error) {
	if dir != "" {
		return upload.NewDir(dir)
	}
	return upload.NewClient(endpoint)
}
