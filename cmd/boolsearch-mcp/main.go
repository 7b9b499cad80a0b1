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

// searchRequest mirrors the boolsearch API request model.
type searchRequest struct {
	Domain string `json:"domain"`
	Query  string `json:"query"`
}

// searchResponse mirrors the boolsearch API response model. Error is set
// for both an empty result and a failure; Code only for a failure.
type searchResponse struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Error       *string `json:"error"`
	Code        string  `json:"code"`
}

func main() {
	apiURL := os.Getenv("BOOLSEARCH_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:10000"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	s := server.NewMCPServer(
		"boolsearch",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	siteSearchTool := mcp.NewTool("site_search",
		mcp.WithDescription("Search one website for an exact phrase and return the top result (title, URL and snippet). Runs a real browser search, so expect a few seconds of latency."),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Site to search, e.g. 'wikipedia.org'. A trailing '.*', '*' or '.' is ignored."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Phrase to search for; matched exactly"),
		),
	)
	s.AddTool(siteSearchTool, handleSiteSearch(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the boolsearch API and returns the status
// code and response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
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
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func handleSiteSearch(apiURL string) server.ToolHandlerFunc {
	// Launch + navigation + render wait can take most of a minute.
	client := &http.Client{Timeout: 90 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		domain, err := request.RequireString("domain")
		if err != nil {
			return mcp.NewToolResultError("domain is required"), nil
		}
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		status, body, err := apiPost(ctx, client, apiURL, "/api/search", searchRequest{Domain: domain, Query: query})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return formatResult(status, body), nil
	}
}

// formatResult renders an API response as tool output. An empty result
// is a successful tool call; rejected input and failures are tool errors.
func formatResult(status int, body []byte) *mcp.CallToolResult {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response (HTTP %d): %v", status, err))
	}

	switch {
	case status == http.StatusOK && resp.Error == nil:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Title: %s\nURL: %s\n", resp.Title, resp.URL)
		if resp.Description != "" {
			fmt.Fprintf(&sb, "\n%s\n", resp.Description)
		}
		return mcp.NewToolResultText(sb.String())
	case status == http.StatusOK:
		return mcp.NewToolResultText(*resp.Error)
	default:
		msg := fmt.Sprintf("search failed (HTTP %d)", status)
		if resp.Error != nil {
			msg = *resp.Error
		}
		if resp.Code != "" {
			msg = fmt.Sprintf("[%s] %s", resp.Code, msg)
		}
		return mcp.NewToolResultError(msg)
	}
}
