// Command pagegrab-lambda runs a single serverless event: it reads the event
// JSON from -event (or stdin) and prints the {statusCode, body} response.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/logging"
	"github.com/use-agent/pagegrab/pipeline"
	"github.com/use-agent/pagegrab/scraper"
	"github.com/use-agent/pagegrab/serverless"
)

func main() {
	eventPath := flag.String("event", "", "event JSON file (default: stdin)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init(cfg.Log, os.Stderr)

	raw, err := readEvent(*eventPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read event: %v\n", err)
		os.Exit(1)
	}

	var ev serverless.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		fmt.Fprintf(os.Stderr, "parse event: %v\n", err)
		os.Exit(1)
	}

	sc := scraper.New(cfg.Browser, cfg.Extract)
	h := serverless.NewHandler(pipeline.New(sc))
	resp := h.Handle(context.Background(), ev)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "write response: %v\n", err)
		os.Exit(1)
	}
}

func readEvent(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
