package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
)

// Config holds the benchmark options
type Config struct {
	Host           string
	NumRequests    int
	Concurrency    int
	DeductionShare int
	MinIncome      int
	MaxIncome      int
	Tables         []string
	Periods        []string
	Verbose        bool
	OutputFormat   string
}

// RequestResult is the outcome of a single request
type RequestResult struct {
	Endpoint    string
	StatusCode  int
	Duration    time.Duration
	Error       error
	ContentSize int64
}

// BenchmarkResults summarises the whole run
type BenchmarkResults struct {
	TotalRequests      int            `json:"totalRequests"`
	SuccessfulRequests int            `json:"successfulRequests"`
	FailedRequests     int            `json:"failedRequests"`
	TotalDuration      time.Duration  `json:"-"`
	MinDuration        time.Duration  `json:"-"`
	MaxDuration        time.Duration  `json:"-"`
	AvgDuration        time.Duration  `json:"-"`
	RequestsPerSecond  float64        `json:"requestsPerSecond"`
	TotalBytes         int64          `json:"totalBytes"`
	BytesPerSecond     float64        `json:"bytesPerSecond"`
	StatusCodes        map[int]int    `json:"statusCodes"`
	Endpoints          map[string]int `json:"endpoints"`
}

func main() {
	host := flag.String("host", "http://localhost:8080", "Host URL of the tax application")
	numRequests := flag.Int("n", 100, "Total number of requests to send")
	concurrency := flag.Int("c", 10, "Number of concurrent requests")
	deductionShare := flag.Int("deduction", 80, "Percentage of /deduction requests (versus /payslip)")
	minIncome := flag.Int("min-income", 10000, "Minimum gross income")
	maxIncome := flag.Int("max-income", 150000, "Maximum gross income")
	tables := flag.String("tables", "7100,7107,7133,6300", "Comma separated tax tables to sample")
	periods := flag.String("periods", "Monthly,2 weeks,1 week", "Comma separated periods to sample")
	verbose := flag.Bool("v", false, "Verbose output")
	outputFormat := flag.String("o", "text", "Output format: text or json")

	flag.Parse()

	config := Config{
		Host:           *host,
		NumRequests:    *numRequests,
		Concurrency:    *concurrency,
		DeductionShare: *deductionShare,
		MinIncome:      *minIncome,
		MaxIncome:      *maxIncome,
		Tables:         strings.Split(*tables, ","),
		Periods:        strings.Split(*periods, ","),
		Verbose:        *verbose,
		OutputFormat:   *outputFormat,
	}

	fmt.Printf("Starting benchmark against %s\n", config.Host)
	fmt.Printf("Sending %d requests (%d%% /deduction, %d%% /payslip) with %d concurrent workers\n",
		config.NumRequests, config.DeductionShare, 100-config.DeductionShare, config.Concurrency)

	results := runBenchmark(config)

	if config.OutputFormat == "json" {
		outputJSON(results)
	} else {
		outputText(results)
	}
}

func runBenchmark(config Config) BenchmarkResults {
	endpoints := make([]string, config.NumRequests)
	deductionCount := (config.NumRequests * config.DeductionShare) / 100
	for i := range endpoints {
		if i < deductionCount {
			endpoints[i] = "/deduction"
		} else {
			endpoints[i] = "/payslip"
		}
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(endpoints), func(i, j int) {
		endpoints[i], endpoints[j] = endpoints[j], endpoints[i]
	})

	client := &http.Client{Timeout: 30 * time.Second}
	var (
		mu      sync.Mutex
		results = make([]RequestResult, 0, config.NumRequests)
	)

	startTime := time.Now()

	p := pool.New().WithMaxGoroutines(config.Concurrency)
	for _, endpoint := range endpoints {
		p.Go(func() {
			result := sendRequest(client, config, endpoint)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return summarise(config, results, time.Since(startTime))
}

func summarise(config Config, results []RequestResult, totalDuration time.Duration) BenchmarkResults {
	benchResults := BenchmarkResults{
		TotalRequests: len(results),
		TotalDuration: totalDuration,
		MinDuration:   time.Duration(1<<63 - 1), // Max possible duration
		StatusCodes:   make(map[int]int),
		Endpoints:     make(map[string]int),
	}

	var totalDurationSum time.Duration
	for _, result := range results {
		if result.Error == nil && result.StatusCode >= 200 && result.StatusCode < 400 {
			benchResults.SuccessfulRequests++
		} else {
			benchResults.FailedRequests++
		}

		totalDurationSum += result.Duration
		benchResults.TotalBytes += result.ContentSize

		if result.Duration < benchResults.MinDuration {
			benchResults.MinDuration = result.Duration
		}
		if result.Duration > benchResults.MaxDuration {
			benchResults.MaxDuration = result.Duration
		}

		benchResults.StatusCodes[result.StatusCode]++
		benchResults.Endpoints[result.Endpoint]++

		if config.Verbose {
			if result.Error != nil {
				fmt.Printf("%s request error: %s (%s)\n", result.Endpoint, result.Error, result.Duration)
			} else {
				fmt.Printf("%s request: %d status (%s)\n", result.Endpoint, result.StatusCode, result.Duration)
			}
		}
	}

	if benchResults.TotalRequests > 0 {
		benchResults.AvgDuration = totalDurationSum / time.Duration(benchResults.TotalRequests)
		benchResults.RequestsPerSecond = float64(benchResults.TotalRequests) / totalDuration.Seconds()
		benchResults.BytesPerSecond = float64(benchResults.TotalBytes) / totalDuration.Seconds()
	} else {
		benchResults.MinDuration = 0
	}

	return benchResults
}

func sendRequest(client *http.Client, config Config, endpoint string) RequestResult {
	income := rand.Intn(config.MaxIncome-config.MinIncome+1) + config.MinIncome

	params := url.Values{}
	params.Set("income", fmt.Sprintf("%d", income))
	if endpoint == "/deduction" {
		params.Set("table", config.Tables[rand.Intn(len(config.Tables))])
		params.Set("period", config.Periods[rand.Intn(len(config.Periods))])
	}

	req, err := http.NewRequest(http.MethodGet, config.Host+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return RequestResult{Endpoint: endpoint, Error: err}
	}

	start := time.Now()
	resp, err := client.Do(req)
	result := RequestResult{
		Endpoint: endpoint,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	bodyBytes, _ := io.ReadAll(resp.Body)
	result.ContentSize = int64(len(bodyBytes))
	return result
}

func outputText(results BenchmarkResults) {
	fmt.Println("\n--- Benchmark Results ---")
	fmt.Printf("Total Requests:       %d\n", results.TotalRequests)
	if results.TotalRequests == 0 {
		return
	}
	fmt.Printf("Successful Requests:  %d (%.1f%%)\n",
		results.SuccessfulRequests,
		float64(results.SuccessfulRequests)*100/float64(results.TotalRequests))
	fmt.Printf("Failed Requests:      %d (%.1f%%)\n",
		results.FailedRequests,
		float64(results.FailedRequests)*100/float64(results.TotalRequests))
	fmt.Printf("Total Duration:       %s\n", results.TotalDuration)
	fmt.Printf("Average Response:     %s\n", results.AvgDuration)
	fmt.Printf("Min Response:         %s\n", results.MinDuration)
	fmt.Printf("Max Response:         %s\n", results.MaxDuration)
	fmt.Printf("Requests Per Second:  %.2f\n", results.RequestsPerSecond)
	fmt.Printf("Transfer:             %.2f KB\n", float64(results.TotalBytes)/1024)
	fmt.Printf("Bandwidth:            %.2f KB/s\n", results.BytesPerSecond/1024)

	fmt.Println("\nRequests per endpoint:")
	for endpoint, count := range results.Endpoints {
		fmt.Printf("  %-12s %d\n", endpoint, count)
	}

	codes := make([]int, 0, len(results.StatusCodes))
	for code := range results.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	fmt.Println("\nResponse Status Codes:")
	for _, code := range codes {
		count := results.StatusCodes[code]
		fmt.Printf("  HTTP %d:  %d (%.1f%%)\n",
			code, count, float64(count)*100/float64(results.TotalRequests))
	}
}

func outputJSON(results BenchmarkResults) {
	type jsonResults struct {
		BenchmarkResults
		TotalDurationMs int64   `json:"totalDurationMs"`
		AvgDurationMs   float64 `json:"avgDurationMs"`
		MinDurationMs   float64 `json:"minDurationMs"`
		MaxDurationMs   float64 `json:"maxDurationMs"`
	}

	data, err := json.MarshalIndent(jsonResults{
		BenchmarkResults: results,
		TotalDurationMs:  results.TotalDuration.Milliseconds(),
		AvgDurationMs:    float64(results.AvgDuration.Microseconds()) / 1000,
		MinDurationMs:    float64(results.MinDuration.Microseconds()) / 1000,
		MaxDurationMs:    float64(results.MaxDuration.Microseconds()) / 1000,
	}, "", "  ")
	if err != nil {
		fmt.Printf("could not encode results: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
