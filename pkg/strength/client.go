package strength

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/sony/gobreaker"
)

// Endpoint is the path of the strength API.
const Endpoint = "/api/check-password-strength"

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("strength")
	if err != nil {
		debugLog.Warnf("Failed to initialize strength logger, using stderr fallback: %v", err)
	}
}

// Request is the body posted to Endpoint.
type Request struct {
	Password   string   `json:"password"`
	UserInputs []string `json:"user_inputs"`
}

// Source produces an estimate for a password.
type Source interface {
	Check(ctx context.Context, pw string, userInputs []string) Result
}

// Client asks the strength endpoint and falls back to Local on any failure.
// Repeated failures open a circuit breaker so keystrokes stop waiting on a
// dead backend.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "password-strength",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				debugLog.Infof("circuit %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// State reports the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Check returns the server estimate, or Local(pw) when the request fails,
// the server answers non-2xx, or the breaker is open.
func (c *Client) Check(ctx context.Context, pw string, userInputs []string) Result {
	if pw == "" {
		return Local(pw)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, pw, userInputs)
	})
	if err != nil {
		debugLog.Warnf("strength check failed, using local estimate: %v", err)
		return Local(pw)
	}
	return out.(Result)
}

func (c *Client) post(ctx context.Context, pw string, userInputs []string) (Result, error) {
	if userInputs == nil {
		userInputs = []string{}
	}
	body, err := json.Marshal(Request{Password: pw, UserInputs: userInputs})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("strength endpoint returned status %d", resp.StatusCode)
	}

	var r Result
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return r, nil
}
