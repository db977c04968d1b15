// Command benchmark measures a running pagegrab API: for each sample URL it
// calls /crawl and /fetch_link several times and reports average latency.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "pagegrab API base URL")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Site roots, so /fetch_link actually renders each page.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com/"},
	{"Blog", "https://go.dev/"},
	{"Docs", "https://pkg.go.dev/"},
	{"News", "https://www.bbc.com/"},
	{"Complex", "https://github.com/"},
}

type fetchRequest struct {
	URL string `json:"url"`
}

// crawlResponse covers both the bundle and the {error, url} failure body.
type crawlResponse struct {
	Title      string            `json:"title"`
	Text       string            `json:"text"`
	Links      []json.RawMessage `json:"links"`
	HTMLLength int               `json:"html_length"`
	CrawlTime  float64           `json:"crawl_time"`
	Error      string            `json:"error"`
	Detail     string            `json:"detail"`
}

// --- Benchmark result types ---

type runResult struct {
	Run         int     `json:"run"`
	CrawlMs     int64   `json:"crawl_ms"`
	BrowserSec  float64 `json:"browser_seconds"`
	LinksMs     int64   `json:"links_ms"`
	TextLength  int     `json:"text_length"`
	HTMLLength  int     `json:"html_length"`
	Links       int     `json:"links"`
	UniqueLinks int     `json:"unique_links"`
	HasTitle    bool    `json:"has_title"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
}

type urlAverages struct {
	CrawlMs     float64 `json:"crawl_ms"`
	BrowserSec  float64 `json:"browser_seconds"`
	LinksMs     float64 `json:"links_ms"`
	HTMLLength  float64 `json:"html_length"`
	UniqueLinks float64 `json:"unique_links"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

var client = &http.Client{Timeout: 180 * time.Second}

func main() {
	flag.Parse()

	fmt.Println("=== pagegrab benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  crawl %dms  links %dms  %d unique links\n", rr.CrawlMs, rr.LinksMs, rr.UniqueLinks)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// post sends body to path and returns the response bytes and elapsed time.
func post(path, url string) ([]byte, time.Duration, error) {
	body, err := json.Marshal(fetchRequest{URL: url})
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequest(http.MethodPost, *apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return data, time.Since(start), err
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	data, elapsed, err := post("/crawl", url)
	if err != nil {
		rr.Error = fmt.Sprintf("crawl request failed: %v", err)
		return rr
	}
	var cr crawlResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	if cr.Error != "" || cr.Detail != "" {
		rr.Error = cr.Error + cr.Detail
		return rr
	}
	rr.CrawlMs = elapsed.Milliseconds()
	rr.BrowserSec = cr.CrawlTime
	rr.TextLength = len([]rune(cr.Text))
	rr.HTMLLength = cr.HTMLLength
	rr.Links = len(cr.Links)
	rr.HasTitle = cr.Title != ""

	data, elapsed, err = post("/fetch_link", url)
	if err != nil {
		rr.Error = fmt.Sprintf("fetch_link request failed: %v", err)
		return rr
	}
	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		rr.Error = "fetch_link: " + strings.TrimSpace(string(data))
		return rr
	}
	rr.LinksMs = elapsed.Milliseconds()
	rr.UniqueLinks = len(links)
	rr.Success = true
	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.CrawlMs += float64(r.CrawlMs)
		avg.BrowserSec += r.BrowserSec
		avg.LinksMs += float64(r.LinksMs)
		avg.HTMLLength += float64(r.HTMLLength)
		avg.UniqueLinks += float64(r.UniqueLinks)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.CrawlMs /= n
	avg.BrowserSec /= n
	avg.LinksMs /= n
	avg.HTMLLength /= n
	avg.UniqueLinks /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\t/crawl\tbrowser\t/fetch_link\tHTML len\tlinks\n")
	fmt.Fprintf(w, "───\t──────\t───────\t───────────\t────────\t─────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%.2fs\t%dms\t%s\t%.0f\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.CrawlMs),
			r.Averages.BrowserSec,
			int64(r.Averages.LinksMs),
			formatInt(int(r.Averages.HTMLLength)),
			r.Averages.UniqueLinks,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
