package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"
)

// CLI flags
var (
	apiURL      = flag.String("api-url", "http://localhost:10000", "boolsearch API base URL")
	runs        = flag.Int("runs", 3, "Number of runs per case")
	concurrency = flag.Int("concurrency", 1, "Requests in flight at once (exercise BOOLSEARCH_MAX_SESSIONS)")
	output      = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test cases covering common site shapes and a deliberately empty one.
var testCases = []struct {
	Label  string
	Domain string
	Query  string
}{
	{"Encyclopedia", "wikipedia.org", "turing award"},
	{"Docs", "go.dev", "effective go"},
	{"Code host", "github.com.*", "go-rod"},
	{"News", "bbc.com*", "climate"},
	{"No match", "example.com.", "zxqv unlikely phrase 0192"},
}

// --- Request / Response types (mirrors models package) ---

type searchRequest struct {
	Domain string `json:"domain"`
	Query  string `json:"query"`
}

type searchResponse struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Error       *string `json:"error"`
	Code        string  `json:"code"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	LatencyMs  int64  `json:"latency_ms"`
	StatusCode int    `json:"status_code"`
	Outcome    string `json:"outcome"` // success, empty, failure
	Code       string `json:"code,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

type caseSummary struct {
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P95LatencyMs int64   `json:"p95_latency_ms"`
	Success      int     `json:"success"`
	Empty        int     `json:"empty"`
	Failure      int     `json:"failure"`
}

type caseResult struct {
	Label   string       `json:"label"`
	Domain  string       `json:"domain"`
	Query   string       `json:"query"`
	Runs    []runResult  `json:"runs"`
	Summary *caseSummary `json:"summary,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string       `json:"timestamp"`
	APIURL      string       `json:"api_url"`
	RunsPerCase int          `json:"runs_per_case"`
	Concurrency int          `json:"concurrency"`
	WallMs      int64        `json:"wall_ms"`
	Results     []caseResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== boolsearch Benchmark Suite ===")
	fmt.Printf("API URL:      %s\n", *apiURL)
	fmt.Printf("Runs/case:    %d\n", *runs)
	fmt.Printf("Concurrency:  %d\n", *concurrency)
	fmt.Printf("Output:       %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure boolsearch is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerCase: *runs,
		Concurrency: *concurrency,
		Results:     make([]caseResult, len(testCases)),
	}
	for i, tc := range testCases {
		report.Results[i] = caseResult{Label: tc.Label, Domain: tc.Domain, Query: tc.Query}
	}

	client := &http.Client{Timeout: 120 * time.Second}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*concurrency, 1))

	start := time.Now()
	for i, tc := range testCases {
		for run := 1; run <= *runs; run++ {
			g.Go(func() error {
				rr := benchmarkCase(ctx, client, searchRequest{Domain: tc.Domain, Query: tc.Query}, run)
				fmt.Printf("[%s] run %d: %-7s %5dms %s\n", tc.Label, run, rr.Outcome, rr.LatencyMs, rr.Error)

				mu.Lock()
				report.Results[i].Runs = append(report.Results[i].Runs, rr)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()
	report.WallMs = time.Since(start).Milliseconds()

	for i := range report.Results {
		sort.Slice(report.Results[i].Runs, func(a, b int) bool {
			return report.Results[i].Runs[a].Run < report.Results[i].Runs[b].Run
		})
		report.Results[i].Summary = summarize(report.Results[i].Runs)
	}

	fmt.Println()
	printTable(report)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func benchmarkCase(ctx context.Context, client *http.Client, body searchRequest, run int) runResult {
	rr := runResult{Run: run, Outcome: "failure"}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *apiURL+"/api/search", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr searchResponse
	err = json.NewDecoder(resp.Body).Decode(&sr)
	rr.LatencyMs = time.Since(start).Milliseconds()
	rr.StatusCode = resp.StatusCode
	if err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Outcome = classify(resp.StatusCode, sr)
	rr.Code = sr.Code
	rr.URL = sr.URL
	if sr.Error != nil {
		rr.Error = *sr.Error
	}
	return rr
}

// classify mirrors the API's status mapping: 200 without error is a hit,
// 200 with error is an empty result, anything else failed.
func classify(status int, sr searchResponse) string {
	switch {
	case status == http.StatusOK && sr.Error == nil:
		return "success"
	case status == http.StatusOK:
		return "empty"
	default:
		return "failure"
	}
}

func summarize(runs []runResult) *caseSummary {
	if len(runs) == 0 {
		return nil
	}
	var s caseSummary
	latencies := make([]int64, 0, len(runs))
	for _, r := range runs {
		switch r.Outcome {
		case "success":
			s.Success++
		case "empty":
			s.Empty++
		default:
			s.Failure++
		}
		if r.LatencyMs > 0 {
			latencies = append(latencies, r.LatencyMs)
			s.AvgLatencyMs += float64(r.LatencyMs)
		}
	}
	if len(latencies) > 0 {
		s.AvgLatencyMs /= float64(len(latencies))
		s.P95LatencyMs = percentile(latencies, 95)
	}
	return &s
}

// percentile returns the nearest-rank percentile of xs. xs is sorted in place.
func percentile(xs []int64, p int) int64 {
	if len(xs) == 0 {
		return 0
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	rank := (p*len(xs) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return xs[rank-1]
}

func printTable(report benchmarkReport) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Case\tQuery\tAvg Latency\tp95\tOK/Empty/Fail\n")
	fmt.Fprintf(w, "────\t─────\t───────────\t───\t─────────────\n")

	for _, r := range report.Results {
		if r.Summary == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", r.Label)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%dms\t%d/%d/%d\n",
			r.Label,
			truncate(fmt.Sprintf("site:%s %q", r.Domain, r.Query), 40),
			int64(r.Summary.AvgLatencyMs),
			r.Summary.P95LatencyMs,
			r.Summary.Success, r.Summary.Empty, r.Summary.Failure,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
	fmt.Printf("Wall time: %dms\n", report.WallMs)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
