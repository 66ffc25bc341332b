// Package signing holds the two signing backends: the live XUMM platform
// client and the in-process simulation used when the platform is
// unreachable.
package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

// DefaultBaseURL is the XUMM platform API root.
const DefaultBaseURL = "https://xumm.app/api/v1/platform"

const maxBodySize = 1 << 20

var errNoPong = errors.New("signing service did not answer ping")

// XummClient is the live signing backend.
type XummClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
}

// NewXummClient creates a client; apiSecret may be empty.
func NewXummClient(baseURL, apiKey, apiSecret string, httpClient *http.Client) *XummClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &XummClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      httpClient,
	}
}

var _ ports.SigningBackend = (*XummClient)(nil)

type returnURL struct {
	Web string `json:"web,omitempty"`
}

type payloadOptions struct {
	Submit    bool       `json:"submit"`
	ReturnURL *returnURL `json:"return_url,omitempty"`
}

type payloadCustomMeta struct {
	Instruction string `json:"instruction,omitempty"`
}

type createPayloadRequest struct {
	TxJSON     core.TxJSON        `json:"txjson"`
	Options    payloadOptions     `json:"options"`
	CustomMeta *payloadCustomMeta `json:"custom_meta,omitempty"`
}

type createPayloadResponse struct {
	UUID string `json:"uuid"`
	Next struct {
		Always string `json:"always"`
	} `json:"next"`
	Refs struct {
		QRPNG           string `json:"qr_png"`
		WebsocketStatus string `json:"websocket_status"`
	} `json:"refs"`
	Pushed bool `json:"pushed"`
}

type payloadStatusResponse struct {
	Meta struct {
		UUID      string `json:"uuid"`
		Resolved  bool   `json:"resolved"`
		Signed    bool   `json:"signed"`
		Cancelled bool   `json:"cancelled"`
		Expired   bool   `json:"expired"`
	} `json:"meta"`
	Response struct {
		Account          string `json:"account"`
		TxID             string `json:"txid"`
		DispatchedResult string `json:"dispatched_result"`
	} `json:"response"`
}

type pingResponse struct {
	Pong bool `json:"pong"`
}

// Ping verifies credentials and reachability.
func (c *XummClient) Ping(ctx context.Context) error {
	var resp pingResponse
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &resp); err != nil {
		return err
	}
	if !resp.Pong {
		return errNoPong
	}
	return nil
}

// CreateRequest registers a payload with the signing service.
func (c *XummClient) CreateRequest(ctx context.Context, draft core.RequestDraft) (core.CreatedRequest, error) {
	body := createPayloadRequest{
		TxJSON: draft.TxJSON,
		Options: payloadOptions{
			Submit: draft.Options.SubmitOr(draft.Kind == core.KindTransaction),
		},
	}
	if draft.Options.ReturnURL != "" {
		body.Options.ReturnURL = &returnURL{Web: draft.Options.ReturnURL}
	}
	if draft.Options.Instruction != "" {
		body.CustomMeta = &payloadCustomMeta{Instruction: draft.Options.Instruction}
	}

	var resp createPayloadResponse
	if err := c.do(ctx, http.MethodPost, "/payload", body, &resp); err != nil {
		return core.CreatedRequest{}, err
	}
	if resp.UUID == "" {
		return core.CreatedRequest{}, errors.New("signing service returned no payload uuid")
	}

	return core.CreatedRequest{
		ID:            resp.UUID,
		ResolutionURL: resp.Next.Always,
		QRCodeURL:     resp.Refs.QRPNG,
	}, nil
}

// RequestStatus fetches the status envelope of a payload.
func (c *XummClient) RequestStatus(ctx context.Context, requestID string) (core.PollResult, error) {
	var resp payloadStatusResponse
	if err := c.do(ctx, http.MethodGet, "/payload/"+url.PathEscape(requestID), nil, &resp); err != nil {
		return core.PollResult{}, err
	}

	return core.PollResult{
		Resolved:   resp.Meta.Resolved,
		Signed:     resp.Meta.Signed,
		Cancelled:  resp.Meta.Cancelled,
		Expired:    resp.Meta.Expired,
		Account:    resp.Response.Account,
		TxID:       resp.Response.TxID,
		Dispatched: resp.Response.DispatchedResult,
	}, nil
}

// Simulated is always false for the live client.
func (c *XummClient) Simulated() bool { return false }

func (c *XummClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	if c.apiSecret != "" {
		req.Header.Set("X-API-Secret", c.apiSecret)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode body: %w", method, path, err)
	}

	return nil
}
