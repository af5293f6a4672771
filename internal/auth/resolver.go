package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrVerificationFailed = errors.New("credential verification failed")

// HTTPResolver verifies credentials against the external auth service.
// The engine treats the returned id as an opaque, already-authenticated
// identity; no local token parsing happens here.
type HTTPResolver struct {
	verifyURL string
	client    *http.Client
}

func NewHTTPResolver(verifyURL string) *HTTPResolver {
	return &HTTPResolver{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, credential string) (int64, error) {
	payload, err := json.Marshal(map[string]string{"credential": credential})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.verifyURL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("verify credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, ErrVerificationFailed
	}

	var body struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode verify response: %w", err)
	}
	if body.UserID == 0 {
		return 0, ErrVerificationFailed
	}
	return body.UserID, nil
}
