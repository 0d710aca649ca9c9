// Package announce talks to the on-site announcer service, which turns a
// welcome line into speech over the venue PA. Everything here is best-effort:
// a failed announcement is logged by the caller and never surfaces to staff.
package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Welcome is one spoken-welcome request.
type Welcome struct {
	StudentName   string `json:"student_name"`
	Accompaniment string `json:"accompaniment"`
	Program       string `json:"program,omitempty"`
}

// Client calls the announcer microservice.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. With skip set, Speak succeeds without a network call,
// which is how dev environments and tests run.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Health checks the announcer is reachable.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("announcer health: status %d", resp.StatusCode)
	}
	return nil
}

// Speak asks the announcer to read out a welcome for a just-marked student.
func (c *Client) Speak(ctx context.Context, w Welcome) error {
	if c.Skip {
		return nil
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/speak", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("announcer speak: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
