package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/teams"
	"github.com/okian/pelada/pkg/logger"
)

// httpClient wraps http.Client with the service base URL.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request with an optional JSON body and decodes a JSON reply into out.
func (c *httpClient) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) (int, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// submitPlayers registers signups concurrently and returns the created
// players indexed like signups. Failed slots hold a zero Player.
func submitPlayers(ctx context.Context, client *httpClient, cfg *Config, signups []signup, stats *Stats) []model.Player {
	logger.Get().Info(ctx, "submitting players",
		logger.Int("players", len(signups)),
		logger.Int("workers", cfg.Workers))

	created := make([]model.Player, len(signups))
	var submitted, ok, replayed, failed int64

	jobs := make(chan signup, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				atomic.AddInt64(&submitted, 1)
				p, err := addPlayer(ctx, client, s, http.StatusCreated)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "add player failed", logger.String("name", s.name), logger.Error(err))
					continue
				}
				atomic.AddInt64(&ok, 1)
				created[s.index] = p

				if cfg.Replay {
					again, err := addPlayer(ctx, client, s, http.StatusOK)
					if err != nil || again.ID != p.ID {
						atomic.AddInt64(&failed, 1)
						logger.Get().Warn(ctx, "replay did not return the original player",
							logger.String("name", s.name), logger.Error(err))
						continue
					}
					atomic.AddInt64(&replayed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, s := range signups {
			select {
			case <-ctx.Done():
				return
			case jobs <- s:
			}
		}
	}()

	wg.Wait()

	stats.PlayersSubmitted = int(atomic.LoadInt64(&submitted))
	stats.PlayersCreated = int(atomic.LoadInt64(&ok))
	stats.PlayersReplayed = int(atomic.LoadInt64(&replayed))
	stats.PlayersFailed = int(atomic.LoadInt64(&failed))
	return created
}

func addPlayer(ctx context.Context, client *httpClient, s signup, wantStatus int) (model.Player, error) {
	var p model.Player
	status, err := client.do(ctx, http.MethodPost, "/players",
		map[string]string{"name": s.name},
		map[string]string{"Idempotency-Key": s.key}, &p)
	if err != nil {
		return model.Player{}, err
	}
	if status != wantStatus {
		return model.Player{}, fmt.Errorf("unexpected status %d, want %d", status, wantStatus)
	}
	return p, nil
}

// toggle posts to /players/{id}/{what} and reports the status code.
func toggle(ctx context.Context, client *httpClient, id, what string) (int, error) {
	return client.do(ctx, http.MethodPost, "/players/"+id+"/"+what, nil, nil, nil)
}

func buildTeams(ctx context.Context, client *httpClient, seed string) (teams.Result, error) {
	var result teams.Result
	path := "/teams"
	if seed != "" {
		path += "?seed=" + seed
	}
	status, err := client.do(ctx, http.MethodPost, path, nil, nil, &result)
	if err != nil {
		return teams.Result{}, err
	}
	if status != http.StatusOK {
		return teams.Result{}, fmt.Errorf("build teams failed with status: %d", status)
	}
	return result, nil
}

func listPlayers(ctx context.Context, client *httpClient) ([]model.Player, error) {
	var body struct {
		Players []model.Player `json:"players"`
	}
	status, err := client.do(ctx, http.MethodGet, "/players", nil, nil, &body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list players failed with status: %d", status)
	}
	return body.Players, nil
}
