package visionai

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/padelhq/courtsight/internal/domain/analysis"
	"github.com/padelhq/courtsight/internal/platform/logging"
	"github.com/padelhq/courtsight/internal/platform/resilience"
	"github.com/padelhq/courtsight/internal/usecase"
)

// Source tags raw payload captures originating from this provider.
const Source = "rallyeye"

const (
	defaultBaseURL   = "https://api.rallyeye.io/v1"
	maxResponseBytes = 6 << 20
)

var errRallyEyeTransient = crerr.New("rallyeye transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Retry          resilience.RetryConfig
}

// Client talks to the RallyEye computer-vision service that runs match video
// analysis jobs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	retryCfg       resilience.RetryConfig
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	retryCfg := resilience.NormalizeRetryConfig(cfg.Retry)
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries + 1
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		retryCfg:       retryCfg,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// SubmitJobRequest describes one match video to analyze.
type SubmitJobRequest struct {
	VideoURL string `json:"video_url"`
	MatchRef string `json:"match_ref"`
}

// SubmitJobResponse is the provider acknowledgement for a submitted job.
type SubmitJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (c *Client) SubmitJob(ctx context.Context, req SubmitJobRequest) (SubmitJobResponse, error) {
	if strings.TrimSpace(req.VideoURL) == "" {
		return SubmitJobResponse{}, fmt.Errorf("video url is required")
	}

	var out SubmitJobResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/jobs", req, &out); err != nil {
		return SubmitJobResponse{}, fmt.Errorf("submit analysis job match_ref=%s: %w", req.MatchRef, err)
	}
	if strings.TrimSpace(out.JobID) == "" {
		return SubmitJobResponse{}, fmt.Errorf("provider returned empty job id")
	}

	return out, nil
}

// SubmitAnalysis submits a match video and returns the provider job id. It is
// the usecase-facing form of SubmitJob.
func (c *Client) SubmitAnalysis(ctx context.Context, matchID, videoURL string) (string, error) {
	resp, err := c.SubmitJob(ctx, SubmitJobRequest{VideoURL: videoURL, MatchRef: matchID})
	if err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// FetchResult polls one job. The returned raw bytes are the verbatim provider
// body, kept so completed payloads can be captured for replay.
func (c *Client) FetchResult(ctx context.Context, jobID string) (analysis.RawAnalysisPayload, []byte, error) {
	if strings.TrimSpace(jobID) == "" {
		return analysis.RawAnalysisPayload{}, nil, fmt.Errorf("job id is required")
	}

	var payload analysis.RawAnalysisPayload
	raw, err := c.doJSON(ctx, http.MethodGet, "/jobs/"+jobID, nil, &payload)
	if err != nil {
		return analysis.RawAnalysisPayload{}, nil, fmt.Errorf("fetch analysis job_id=%s: %w", jobID, err)
	}

	return payload, raw, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "rallyeye circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: vision provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	var reqBody []byte
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = encoded
	}

	fullURL := c.baseURL + path

	run := func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, method, fullURL, reqBody)
		if c.circuitEnabled {
			if reqErr != nil && isRallyEyeCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	}

	var raw []byte
	var err error
	if method == http.MethodGet {
		// Concurrent polls of the same job collapse into one upstream call.
		raw, err, _ = c.flight.Do(method+" "+fullURL, run)
	} else {
		raw, err = run()
	}
	if err != nil {
		return nil, err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body []byte) ([]byte, error) {
	var raw []byte
	err := resilience.Retry(ctx, c.retryCfg, isRallyEyeCircuitFailure, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		if body != nil {
			req.Header.Set("content-type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: send request: %s", errRallyEyeTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		}
		defer resp.Body.Close()

		out, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if readErr != nil {
			return fmt.Errorf("%w: read response body: %v", errRallyEyeTransient, readErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) {
				return fmt.Errorf("%w: provider status=%d body=%s", errRallyEyeTransient, resp.StatusCode, abbreviateBody(out))
			}
			return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(out))
		}

		raw = out
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "rallyeye request failed", "method", method, "url", fullURL, "error", err)
		return nil, err
	}

	return raw, nil
}

func isRallyEyeCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errRallyEyeTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
