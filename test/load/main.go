package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type PurchaseItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type PurchasePayload struct {
	UserID int64          `json:"userId"`
	Items  []PurchaseItem `json:"items"`
}

type LoadTestConfig struct {
	URL               string
	RequestsPerSecond int
	DurationSeconds   int
	ConcurrentWorkers int
	UserIDs           []int64
	ProductIDs        []int64
	// AuthToken is sent as a bearer token for AUTH_MODE=jwt deployments and
	// must belong to an admin; otherwise X-User-Id names each buyer.
	AuthToken string
}

// Stats separates business rejections (insufficient balance, out of stock)
// from transport and server errors.
type Stats struct {
	successCount  atomic.Int64
	rejectedCount atomic.Int64
	errorCount    atomic.Int64
	responseTimes []float64
	mu            sync.Mutex
}

func (s *Stats) addResponseTime(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseTimes = append(s.responseTimes, duration)
}

func (s *Stats) getResponseTimes() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	times := make([]float64, len(s.responseTimes))
	copy(times, s.responseTimes)
	return times
}

var seq atomic.Int64

func nextPayload(config LoadTestConfig) (int64, []byte) {
	n := seq.Add(1)
	payload := PurchasePayload{
		UserID: config.UserIDs[int(n)%len(config.UserIDs)],
		Items: []PurchaseItem{{
			ProductID: config.ProductIDs[int(n)%len(config.ProductIDs)],
			Quantity:  1,
		}},
	}
	b, _ := json.Marshal(payload)
	return payload.UserID, b
}

func sendRequest(client *http.Client, config LoadTestConfig, stats *Stats) {
	start := time.Now()

	userID, body := nextPayload(config)
	req, err := http.NewRequest("POST", config.URL, bytes.NewReader(body))
	if err != nil {
		stats.errorCount.Add(1)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", fmt.Sprintf("load-%d-%d", start.UnixNano(), seq.Load()))
	if config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+config.AuthToken)
	} else {
		req.Header.Set("X-User-Id", strconv.FormatInt(userID, 10))
	}

	resp, err := client.Do(req)
	if err != nil {
		stats.errorCount.Add(1)
		stats.addResponseTime(time.Since(start).Seconds())
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)

	stats.addResponseTime(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == 200 || resp.StatusCode == 201:
		stats.successCount.Add(1)
	case resp.StatusCode == 400:
		stats.rejectedCount.Add(1)
	default:
		stats.errorCount.Add(1)
	}
}

func worker(client *http.Client, config LoadTestConfig, stats *Stats, jobs <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	for range jobs {
		sendRequest(client, config, stats)
	}
}

func calculatePercentile(sorted []float64, percentile float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)) * percentile)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIDs(key, defaultValue string) []int64 {
	var ids []int64
	for _, raw := range strings.Split(getEnvOrDefault(key, defaultValue), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func main() {
	config := LoadTestConfig{
		URL:               getEnvOrDefault("TARGET_URL", "http://localhost:5000/api/purchases"),
		RequestsPerSecond: getEnvIntOrDefault("REQUESTS_PER_SECOND", 500),
		DurationSeconds:   getEnvIntOrDefault("DURATION_SECONDS", 30),
		ConcurrentWorkers: getEnvIntOrDefault("CONCURRENT_WORKERS", 100),
		UserIDs:           getEnvIDs("USER_IDS", "1"),
		ProductIDs:        getEnvIDs("PRODUCT_IDS", "1"),
		AuthToken:         getEnvOrDefault("AUTH_TOKEN", ""),
	}
	if len(config.UserIDs) == 0 || len(config.ProductIDs) == 0 {
		fmt.Println("USER_IDS and PRODUCT_IDS need at least one positive id each")
		os.Exit(1)
	}

	fmt.Println("Starting purchase load test...")
	fmt.Printf("Target: %s\n", config.URL)
	fmt.Printf("Total requests: %d\n", config.RequestsPerSecond*config.DurationSeconds)
	fmt.Printf("Target RPS: %d\n", config.RequestsPerSecond)
	fmt.Printf("Concurrent workers: %d\n", config.ConcurrentWorkers)
	fmt.Printf("Users: %v Products: %v\n", config.UserIDs, config.ProductIDs)
	fmt.Println(strings.Repeat("-", 50))

	stats := &Stats{}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        config.ConcurrentWorkers,
			MaxIdleConnsPerHost: config.ConcurrentWorkers,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 60 * time.Second,
	}

	jobs := make(chan struct{}, config.RequestsPerSecond)

	var wg sync.WaitGroup
	for i := 0; i < config.ConcurrentWorkers; i++ {
		wg.Add(1)
		go worker(client, config, stats, jobs, &wg)
	}

	startTime := time.Now()
	totalRequests := config.RequestsPerSecond * config.DurationSeconds
	requestsSent := 0

	for i := 0; i < config.DurationSeconds && requestsSent < totalRequests; i++ {
		batchStart := time.Now()

		for j := 0; j < config.RequestsPerSecond && requestsSent < totalRequests; j++ {
			jobs <- struct{}{}
			requestsSent++
		}

		success := stats.successCount.Load()
		rejected := stats.rejectedCount.Load()
		errors := stats.errorCount.Load()
		fmt.Printf("[%ds] Completed: %d | Success: %d | Rejected: %d | Errors: %d\n",
			i+1, success+rejected+errors, success, rejected, errors)

		elapsed := time.Since(batchStart)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()

	duration := time.Since(startTime).Seconds()

	success := stats.successCount.Load()
	rejected := stats.rejectedCount.Load()
	errors := stats.errorCount.Load()
	total := success + rejected + errors

	times := stats.getResponseTimes()
	sort.Float64s(times)
	var avgResponseTime float64
	if len(times) > 0 {
		sum := 0.0
		for _, t := range times {
			sum += t
		}
		avgResponseTime = sum / float64(len(times))
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("LOAD TEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Duration: %.2f seconds\n", duration)
	fmt.Printf("Total requests: %d\n", total)
	fmt.Printf("Purchased: %d\n", success)
	fmt.Printf("Rejected (balance/stock): %d\n", rejected)
	fmt.Printf("Failed: %d\n", errors)
	if total > 0 {
		fmt.Printf("Error rate: %.2f%%\n", float64(errors)/float64(total)*100)
	}
	fmt.Printf("\nActual RPS: %.2f\n", float64(total)/duration)
	if len(times) > 0 {
		fmt.Printf("\nResponse times:\n")
		fmt.Printf("  Average: %.2f ms\n", avgResponseTime*1000)
		fmt.Printf("  P50: %.2f ms\n", calculatePercentile(times, 0.50)*1000)
		fmt.Printf("  P95: %.2f ms\n", calculatePercentile(times, 0.95)*1000)
		fmt.Printf("  P99: %.2f ms\n", calculatePercentile(times, 0.99)*1000)
		fmt.Printf("  Min: %.2f ms\n", times[0]*1000)
		fmt.Printf("  Max: %.2f ms\n", times[len(times)-1]*1000)
	}
}
