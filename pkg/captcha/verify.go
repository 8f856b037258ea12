package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/pagekit/pkg/config"
)

// DefaultVerifyURL is the hCaptcha siteverify endpoint.
const DefaultVerifyURL = "https://api.hcaptcha.com/siteverify"

// ErrMissingToken is returned when a form arrives without a response token.
var ErrMissingToken = errors.New("captcha response missing")

// ErrRejected is returned when hCaptcha answers but refuses the token.
var ErrRejected = errors.New("captcha rejected")

// VerifyResponse is the siteverify reply.
type VerifyResponse struct {
	Success     bool     `json:"success"`
	Hostname    string   `json:"hostname"`
	ChallengeTS string   `json:"challenge_ts"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks response tokens with hCaptcha. A disabled verifier
// accepts everything.
type Verifier struct {
	enabled   bool
	siteKey   string
	secretKey string
	verifyURL string
	http      *http.Client
}

// NewVerifier creates a verifier from the server configuration.
func NewVerifier(cfg config.HCaptchaConfig) *Verifier {
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Verifier{
		enabled:   cfg.Enabled,
		siteKey:   cfg.SiteKey,
		secretKey: cfg.SecretKey,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether tokens are checked.
func (v *Verifier) Enabled() bool {
	return v.enabled
}

// SiteKey is the public key rendered into the widget.
func (v *Verifier) SiteKey() string {
	return v.siteKey
}

// Verify checks token for the client at remoteIP.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.enabled {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)
	if v.siteKey != "" {
		form.Set("sitekey", v.siteKey)
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach captcha service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("captcha service returned status %d", resp.StatusCode)
	}

	var out VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode verify response: %w", err)
	}
	if !out.Success {
		debugLog.Warnf("captcha rejected: %v", out.ErrorCodes)
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(out.ErrorCodes, ", "))
	}
	return nil
}
