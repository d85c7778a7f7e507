package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"campusboard/internal/models"

	"go.uber.org/zap"
)

// Client talks to the matcher service that computes per-job match
// scores for a student.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:    logger,
		userAgent: "CampusBoard-Applications/1.0",
	}
}

// JobScore is one scored posting. Older matcher deployments send the
// score as a percent string, which models.Score absorbs.
type JobScore struct {
	JobID string       `json:"job_id"`
	Score models.Score `json:"score"`
}

type scoresResponse struct {
	StudentID string     `json:"student_id"`
	Scores    []JobScore `json:"scores"`
}

// FetchScores returns a student's scores keyed by job id. Entries with
// an unparseable score are dropped rather than defaulted, so a stale
// stored score is not overwritten by garbage.
func (c *Client) FetchScores(ctx context.Context, studentID string) (map[string]float64, error) {
	path := "/v1/students/" + url.PathEscape(studentID) + "/scores"

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var resp scoresResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	scores := make(map[string]float64, len(resp.Scores))
	for _, entry := range resp.Scores {
		if entry.JobID == "" || !entry.Score.Valid {
			continue
		}
		scores[entry.JobID] = entry.Score.Float64
	}

	return scores, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if params != nil {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Debug("retrying request",
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		c.logger.Error("matcher error",
			zap.String("url", fullURL),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			c.logger.Warn("matcher rate limit hit, backing off")
			time.Sleep(5 * time.Second)
			lastErr = fmt.Errorf("rate limit exceeded")
			continue
		case http.StatusNotFound:
			return nil, fmt.Errorf("student not found")
		default:
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("request failed after retries: %w", lastErr)
}
