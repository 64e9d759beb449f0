package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"

	"contafeira/internal/app/client/config"
	"contafeira/internal/domain/tenant"
)

// httpClient talks to the remote record store. Every failure it reports is a
// connectivity-class error: callers above the sync engine never see it.
type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func newHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "ContaFeira-Client/1.0",
	}
}

func (h *httpClient) SetToken(token string) {
	h.token = token
}

// Health probes the remote store. Used by the connectivity monitor.
func (h *httpClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", ErrConnectivity, resp.StatusCode)
	}
	return nil
}

type sessionResponse struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_id"`
}

// Login exchanges credentials for a bearer token and the tenant identity.
func (h *httpClient) Login(ctx context.Context, login, password string) (*sessionResponse, error) {
	body := map[string]string{"login": login, "password": password}
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", body)
	if err != nil {
		return nil, err
	}

	var session sessionResponse
	if err := h.parseResponse(resp, &session); err != nil {
		return nil, err
	}
	h.token = session.Token
	return &session, nil
}

// Register creates an account and returns a session like Login.
func (h *httpClient) Register(ctx context.Context, login, password string) (*sessionResponse, error) {
	body := map[string]string{"login": login, "password": password}
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", body)
	if err != nil {
		return nil, err
	}

	var session sessionResponse
	if err := h.parseResponse(resp, &session); err != nil {
		return nil, err
	}
	h.token = session.Token
	return &session, nil
}

// FetchProfile pulls the tenant profile; the remote side is its single
// source of truth.
func (h *httpClient) FetchProfile(ctx context.Context) (*tenant.Profile, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/profile", nil)
	if err != nil {
		return nil, err
	}

	var profile tenant.Profile
	if err := h.parseResponse(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// upsertRows pushes a batch of wire rows to the collection, keyed by id.
func (h *httpClient) upsertRows(ctx context.Context, collection string, rows any) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/sync/"+collection, map[string]any{
		"rows": rows,
	})
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// fetchRows pulls all rows of the collection with updated_at strictly after
// since. The tenant filter is implied by the bearer token.
func fetchRows[W any](h *httpClient, ctx context.Context, collection string, since time.Time) ([]W, error) {
	path := "/api/v1/sync/" + collection
	if !since.IsZero() {
		path += "?updated_after=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Rows []W `json:"rows"`
	}
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: server returned status %d", ErrConnectivity, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("remote store rejected request: status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
