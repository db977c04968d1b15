// Command pagegrab-verify checks that a headless browser can be launched
// with the configured flags and that it renders a page.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/logging"
	"github.com/use-agent/pagegrab/scraper"
)

func main() {
	target := flag.String("url", "https://example.com", "page to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init(cfg.Log, os.Stderr)

	sc := scraper.New(cfg.Browser, cfg.Extract)
	snap, err := sc.Fetch(context.Background(), *target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "browser check failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(os.Stdout, snap)
}

// printSummary reports the page title and the HTML size in bytes.
func printSummary(w io.Writer, snap *scraper.Snapshot) {
	fmt.Fprintf(w, "Title: %s\n", snap.Title)
	fmt.Fprintf(w, "Content length: %d bytes\n", len(snap.HTML))
	fmt.Fprintln(w, "Browser check passed")
}
