package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Outcome is a processor response in the 2xx range.
type Outcome struct {
	StatusCode int
	Body       []byte
}

// Dispatcher sends one synchronous call per job to an external processor.
// The shared secret travels only as the Authorization header, never in the
// body. There are no retries; retry policy belongs to the processor side.
type Dispatcher struct {
	client *http.Client
	secret string
}

func NewDispatcher(secret string) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: 60 * time.Second},
		secret: secret,
	}
}

func (d *Dispatcher) Send(ctx context.Context, endpoint string, payload any) (*Outcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", d.secret)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DispatchError{Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return &Outcome{StatusCode: resp.StatusCode, Body: respBody}, nil
}
