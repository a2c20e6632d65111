package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
	maxClients  int
	maxOrders   int
)

// Metrics
var (
	totalRequests uint64
	success       uint64
	notFound      uint64
	failOther     uint64
)

var statuses = []string{"received", "cutting", "sewing", "fitting", "ready"}

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "payments", "Workload type: payments | status")
	flag.IntVar(&maxClients, "clients", 100, "Highest seeded client id")
	flag.IntVar(&maxOrders, "orders", 100, "Highest seeded order id")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		var url string
		var payload map[string]any

		if workload == "status" {
			orderID := rand.Intn(maxOrders) + 1
			url = fmt.Sprintf("%s/orders/%d/status", targetURL, orderID)
			payload = map[string]any{"status": statuses[rand.Intn(len(statuses))]}
		} else {
			clientID := rand.Intn(maxClients) + 1
			url = fmt.Sprintf("%s/client/%d/payment", targetURL, clientID)
			payload = map[string]any{
				"amount":      float64(rand.Intn(20000)) / 100,
				"description": "Benchmark payment",
				"method":      "cash",
			}
		}

		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", url, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 200, 201:
			atomic.AddUint64(&success, 1)
		case 404:
			atomic.AddUint64(&notFound, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	ok := atomic.LoadUint64(&success)
	nf := atomic.LoadUint64(&notFound)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]any{
		"workload":       workload,
		"duration_sec":   d.Seconds(),
		"total_requests": total,
		"throughput_tps": tps,
		"success":        ok,
		"not_found":      nf,
		"errors":         fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	// Also save to file
	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
