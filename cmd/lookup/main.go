package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/locus/internal/config"
	"github.com/UnknownOlympus/locus/internal/places"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var errUsage = errors.New("place id argument required")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run looks up one place and prints the response. It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("lookup", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: lookup [flags] <place-id>")
		fs.PrintDefaults()
	}
	placeID := fs.String("place-id", "", "place id to look up (or the first argument)")
	fs.String("api-key", "", "Google Maps API key (default $LOCUS_API_KEY or $GOOGLE_MAPS_API_KEY)")
	fs.String("language", "", "language of the returned result")
	fs.String("backend", "", "lookup backend: http or maps")
	fs.String("base-url", "", "override the place details API host")
	fs.String("env", "", "logging environment: local, development or production")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	v := viper.New()
	for key, flag := range map[string]string{
		"api_key":  "api-key",
		"language": "language",
		"backend":  "backend",
		"base_url": "base-url",
		"env":      "env",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	cfg := config.MustLoadViper(v)
	logger := config.NewLoggerTo(stderr, cfg.Env)

	if *placeID == "" && fs.NArg() > 0 {
		*placeID = fs.Arg(0)
	}
	if *placeID == "" {
		fmt.Fprintf(stderr, "Error: %v\n", errUsage)
		fs.Usage()
		return 1
	}

	lookup, err := places.NewLookup(places.LookupConfig{
		Backend:   places.Backend(cfg.Backend),
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Language:  cfg.Language,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	resp, err := lookup.GetMapPlace(ctx, *placeID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err = printResponse(stdout, resp); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func printResponse(w io.Writer, resp places.Response) error {
	fmt.Fprintf(w, "Status: %s\n", resp.Status())

	switch r := resp.(type) {
	case places.OK:
		out, err := json.MarshalIndent(r.Result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode place: %w", err)
		}
		fmt.Fprintf(w, "Place:\n%s\n", out)
	case places.RequestDenied:
		if r.ErrorMessage != "" {
			fmt.Fprintf(w, "Error message: %s\n", r.ErrorMessage)
		}
	case places.UnknownError:
		if r.RawStatus != "" && r.RawStatus != string(places.StatusUnknownError) {
			fmt.Fprintf(w, "Raw status: %s\n", r.RawStatus)
		}
	}

	return nil
}
