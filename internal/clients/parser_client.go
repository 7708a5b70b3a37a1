/**
 * Parser Client - backend prescription parsing relay
 *
 * Forwards recognized prescription text to the backend parsing service
 * and maps the drug records it returns to medications. The call is
 * bounded by a fixed deadline and can be switched off by configuration.
 */

package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/adverant/nexus/prescription-ocr/internal/errors"
	"github.com/adverant/nexus/prescription-ocr/internal/logging"
	"github.com/adverant/nexus/prescription-ocr/internal/medication"
)

const (
	DefaultRelayTimeout = 10 * time.Second
	parsePath           = "/api/prescriptions/parse"
)

// ParserClient handles communication with the backend parsing service
type ParserClient struct {
	baseURL    string
	enabled    bool
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// ParserConfig holds parser client configuration
type ParserConfig struct {
	BaseURL    string
	Enabled    bool
	Timeout    time.Duration // defaults to DefaultRelayTimeout
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// ParseRequest is the body sent to the parsing service
type ParseRequest struct {
	Text string `json:"text"`
}

// RelayResult is a successful relay outcome
type RelayResult struct {
	Success     bool                    `json:"success"`
	Medications []medication.Medication `json:"data"`
}

// NewParserClient creates a new parser client
func NewParserClient(cfg *ParserConfig) *ParserClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Deadline comes from the request context
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("ParserClient")
	}

	return &ParserClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		enabled:    cfg.Enabled,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Enabled reports whether relaying is switched on
func (c *ParserClient) Enabled() bool {
	return c.enabled
}

// HealthCheck verifies the parsing service is available
func (c *ParserClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("parser health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("parser health check returned status %d", resp.StatusCode)
	}

	return nil
}

// Relay sends text to the parsing service.
//
// It returns (nil, nil) without any network call when relaying is disabled.
// Every failure returns a nil result; the error's code tells a timeout
// (RELAY_TIMEOUT) from other transport failures (RELAY_FAILED) and from an
// undecodable body (RELAY_MALFORMED).
func (c *ParserClient) Relay(ctx context.Context, text string) (*RelayResult, error) {
	if !c.enabled {
		c.logger.Info("Backend parsing is disabled, skipping relay")
		return nil, nil
	}

	relayCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(ParseRequest{Text: text})
	if err != nil {
		return nil, apperrors.NewRelayFailedError("", 0, fmt.Errorf("failed to marshal parse request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(relayCtx, http.MethodPost, c.baseURL+parsePath, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewRelayFailedError("", 0, fmt.Errorf("failed to create parse request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info("Relaying recognized text", "textLength", len(text), "timeout", c.timeout)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(relayCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(relayCtx, fmt.Errorf("failed to read parse response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Backend parsing returned error status", "status", resp.StatusCode, "body", truncate(string(body), 256))
		return nil, apperrors.NewRelayFailedError("", resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 256)))
	}

	var parsed medication.ParseResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("Backend parsing response is not valid JSON", "error", err)
		return nil, apperrors.NewRelayMalformedError("", err)
	}
	if parsed.Drugs == nil {
		c.logger.Error("Backend parsing response has no drugs field")
		return nil, apperrors.NewRelayMalformedError("", fmt.Errorf("missing drugs"))
	}

	medications := medication.FromBackendDrugs(parsed.Drugs)
	c.logger.Info("Backend parsing succeeded", "medications", len(medications))

	return &RelayResult{
		Success:     true,
		Medications: medications,
	}, nil
}

func (c *ParserClient) transportError(relayCtx context.Context, err error) error {
	if errors.Is(relayCtx.Err(), context.DeadlineExceeded) {
		c.logger.Error("Backend parsing request timed out", "timeout", c.timeout)
		return apperrors.NewRelayTimeoutError("", c.timeout, err)
	}
	c.logger.Error("Backend parsing request failed", "error", err)
	return apperrors.NewRelayFailedError("", 0, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
