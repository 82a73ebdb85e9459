package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultDeviceCodeURL = "https://github.com/login/device/code"
	defaultTokenURL      = "https://github.com/login/oauth/access_token"

	// OAuth app client id for this tool. Not a secret.
	clientID = "Iv1.8f2a44c07b6e19d3"

	grantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// Flow drives the device-authorization protocol.
type Flow struct {
	ClientID      string
	Scope         string
	DeviceCodeURL string
	TokenURL      string
	HTTP          *http.Client

	// MinInterval is the floor for the poll interval; the provider-specified
	// interval is respected when larger.
	MinInterval time.Duration

	// MaxAttempts caps the poll loop. With the provider's usual 5s interval
	// the default gives a ceiling of roughly five minutes.
	MaxAttempts int

	// OnPending, if set, is called after each poll that did not complete.
	OnPending func()
}

// NewFlow returns a Flow with GitHub defaults and the gist scope.
func NewFlow() *Flow {
	return &Flow{
		ClientID:      clientID,
		Scope:         "gist",
		DeviceCodeURL: defaultDeviceCodeURL,
		TokenURL:      defaultTokenURL,
		HTTP:          &http.Client{Timeout: 30 * time.Second},
		MinInterval:   5 * time.Second,
		MaxAttempts:   60,
	}
}

// DeviceCode is the provider's response to a device-code request.
type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// tokenResponse is the provider's response to a token poll. On error the
// access token is empty and Err holds one of the protocol error codes.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Err         string `json:"error"`
	ErrDesc     string `json:"error_description"`
}

// Start requests a device code. The caller presents UserCode and
// VerificationURI to the user before calling Wait.
func (f *Flow) Start(ctx context.Context) (*DeviceCode, error) {
	body := map[string]string{"client_id": f.ClientID, "scope": f.Scope}
	var code DeviceCode
	if err := f.post(ctx, f.DeviceCodeURL, body, &code); err != nil {
		return nil, err
	}
	if code.DeviceCode == "" {
		return nil, fmt.Errorf("device code request returned no code")
	}
	return &code, nil
}

// Wait polls the token endpoint until the user authorizes, the attempt cap is
// reached, the context is cancelled, or the provider reports a terminal
// error. Transient transport failures on individual polls are swallowed and
// count as ordinary attempts.
func (f *Flow) Wait(ctx context.Context, code *DeviceCode) (string, error) {
	interval := time.Duration(code.Interval) * time.Second
	if interval < f.MinInterval {
		interval = f.MinInterval
	}

	for attempt := 0; attempt < f.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ErrCancelled
		case <-time.After(interval):
		}

		body := map[string]string{
			"client_id":   f.ClientID,
			"device_code": code.DeviceCode,
			"grant_type":  grantType,
		}
		var tok tokenResponse
		if err := f.post(ctx, f.TokenURL, body, &tok); err != nil {
			if ctx.Err() != nil {
				return "", ErrCancelled
			}
			// Connection-level failure; try again after the interval.
			if f.OnPending != nil {
				f.OnPending()
			}
			continue
		}

		if tok.AccessToken != "" {
			return tok.AccessToken, nil
		}

		switch tok.Err {
		case "authorization_pending":
			if f.OnPending != nil {
				f.OnPending()
			}
		case "slow_down":
			// Provider back-pressure; treated as pending with a wider gap.
			interval += 5 * time.Second
			if f.OnPending != nil {
				f.OnPending()
			}
		case "expired_token":
			return "", ErrAuthorizationExpired
		case "access_denied":
			return "", ErrAuthorizationDenied
		default:
			if tok.ErrDesc != "" {
				return "", fmt.Errorf("device authorization failed: %s: %s", tok.Err, tok.ErrDesc)
			}
			return "", fmt.Errorf("device authorization failed: %s", tok.Err)
		}
	}

	return "", ErrTimeout
}

// post sends a JSON request and decodes a JSON response. GitHub's OAuth
// endpoints return protocol errors with a 200 status and an error field, so
// only transport and non-2xx failures surface here.
func (f *Flow) post(ctx context.Context, url string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
