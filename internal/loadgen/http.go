package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/types"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostJSON posts body as JSON and decodes a 200 response into out.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return json.Unmarshal(raw, out)
}

// uploadReports stores every player's report in chunks.
func uploadReports(ctx context.Context, config *Config, players []Player, stats *Stats) error {
	log.Printf("📤 Uploading %d reports...", len(players))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/reports"

	for start := 0; start < len(players); start += reportUploadChunk {
		end := min(start+reportUploadChunk, len(players))
		rows := make([]model.UploadedReportRow, 0, end-start)
		for _, p := range players[start:end] {
			rows = append(rows, p.Report)
		}

		var res types.UploadResult
		if err := client.PostJSON(ctx, url, rows, &res); err != nil {
			return fmt.Errorf("upload rows %d-%d: %w", start, end, err)
		}
		stats.ReportsStored += res.Stored
	}

	log.Printf("✅ Reports stored: %d", stats.ReportsStored)
	return nil
}

// submitBatches computes every player through /metrics/batch using a
// worker pool. Results are keyed by player id.
func submitBatches(ctx context.Context, config *Config, players []Player, stats *Stats) (map[string]types.BatchItem, error) {
	log.Printf("📤 Submitting %d players in batches of %d with %d workers...", len(players), config.BatchSize, config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/metrics/batch"

	var (
		submitted int64
		failed    int64
		mu        sync.Mutex
		results   = make(map[string]types.BatchItem, len(players))
	)

	batchChan := make(chan []Player, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batchChan {
				if ctx.Err() != nil {
					return
				}
				req := types.BatchRequest{Items: make([]types.ComputeRequest, len(batch))}
				for j, p := range batch {
					req.Items[j] = types.ComputeRequest{Status: p.Status}
				}

				var res types.BatchResult
				err := client.PostJSON(ctx, url, req, &res)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("⚠️  Batch failed: %v", err)
					}
					continue
				}

				mu.Lock()
				for _, item := range res.Items {
					results[item.PlayerID] = item
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(batchChan)
		for start := 0; start < len(players); start += config.BatchSize {
			end := min(start+config.BatchSize, len(players))
			select {
			case <-ctx.Done():
				return
			case batchChan <- players[start:end]:
			}
		}
	}()

	wg.Wait()

	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))
	for _, item := range results {
		if item.Error != "" {
			stats.ItemsFailed++
			continue
		}
		stats.MetricsComputed++
	}

	log.Printf(`✅ Batch submission completed:
   Batches: %d
   Failed batches: %d
   Metrics computed: %d
   Failed items: %d
`, stats.BatchesSubmitted, stats.BatchesFailed, stats.MetricsComputed, stats.ItemsFailed)

	if ctx.Err() != nil {
		return results, fmt.Errorf("submission interrupted: %w", ctx.Err())
	}
	return results, nil
}
