// Command pagegrab-mcp exposes a running pagegrab API as MCP tools over
// stdio.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// fetchRequest mirrors the pagegrab API request body.
type fetchRequest struct {
	URL string `json:"url"`
}

// pageBundle mirrors the successful /crawl response.
type pageBundle struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Links []struct {
		Href string `json:"href"`
		Text string `json:"text"`
	} `json:"links"`
	HTMLLength int     `json:"html_length"`
	CrawlTime  float64 `json:"crawl_time"`
}

// failure covers both the 200 {error, url} body and 4xx/5xx {detail}.
type failure struct {
	Error  string `json:"error"`
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

func main() {
	apiURL := os.Getenv("PAGEGRAB_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := server.NewMCPServer(
		"pagegrab",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	fetchPageTool := mcp.NewTool("fetch_page",
		mcp.WithDescription("Render a web page in a headless browser and return its title, visible text and links."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The http(s) URL of the page to fetch"),
		),
	)
	s.AddTool(fetchPageTool, handleFetchPage(apiURL))

	fetchLinksTool := mcp.NewTool("fetch_links",
		mcp.WithDescription("List the unique links found on a site's root page. Inner-page URLs are returned unchanged without fetching."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The site root URL, e.g. https://example.com/"),
		),
	)
	s.AddTool(fetchLinksTool, handleFetchLinks(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the pagegrab API and returns the status
// code and response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(apiURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, err
}

// failureMessage returns a non-empty message when body is an error object.
func failureMessage(status int, body []byte) string {
	var f failure
	if err := json.Unmarshal(body, &f); err != nil {
		if status != http.StatusOK {
			return fmt.Sprintf("API returned HTTP %d", status)
		}
		return ""
	}
	switch {
	case f.Detail != "":
		return f.Detail
	case f.Error != "":
		return fmt.Sprintf("fetching %s failed: %s", f.URL, f.Error)
	case status != http.StatusOK:
		return fmt.Sprintf("API returned HTTP %d", status)
	}
	return ""
}

func handleFetchPage(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		status, body, err := apiPost(ctx, client, apiURL, "/crawl", fetchRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if msg := failureMessage(status, body); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}

		var bundle pageBundle
		if err := json.Unmarshal(body, &bundle); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Title: %s\nSource: %s\n\n%s", bundle.Title, bundle.URL, bundle.Text)
		if len(bundle.Links) > 0 {
			sb.WriteString("\n\n---\nLinks:\n")
			for _, l := range bundle.Links {
				fmt.Fprintf(&sb, "- %s %s\n", l.Href, l.Text)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleFetchLinks(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		status, body, err := apiPost(ctx, client, apiURL, "/fetch_link", fetchRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// Inner pages come back as a bare JSON string.
		var passthrough string
		if status == http.StatusOK && json.Unmarshal(body, &passthrough) == nil {
			return mcp.NewToolResultText(passthrough), nil
		}

		var links []string
		if status == http.StatusOK && json.Unmarshal(body, &links) == nil {
			return mcp.NewToolResultText(fmt.Sprintf("%d links\n%s", len(links), strings.Join(links, "\n"))), nil
		}

		if msg := failureMessage(status, body); msg != "" {
			return mcp.NewToolResultError(msg), nil
		}
		return mcp.NewToolResultError("unexpected API response"), nil
	}
}
