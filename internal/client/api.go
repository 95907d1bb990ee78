// Package client talks to the transaction API and keeps a local mirror of
// the list for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// API is a typed client for the /api endpoints.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI targets baseURL (scheme and host, e.g. http://localhost:5000).
// A nil httpClient gets a 10 second timeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (a *API) List(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := a.do(ctx, http.MethodGet, "/api/transactions", nil, &out); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

func (a *API) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	var out core.Transaction
	if err := a.do(ctx, http.MethodPost, "/api/transactions", in, &out); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return out, nil
}

// Update maps a 404 answer to core.ErrNotFound.
func (a *API) Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	var out core.Transaction
	err := a.do(ctx, http.MethodPut, "/api/transactions/"+strconv.FormatInt(id, 10), in, &out)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return out, nil
}

func (a *API) Delete(ctx context.Context, id int64) error {
	if err := a.do(ctx, http.MethodDelete, "/api/transactions/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (a *API) Summary(ctx context.Context) (core.Summary, error) {
	var out core.Summary
	if err := a.do(ctx, http.MethodGet, "/api/summary", nil, &out); err != nil {
		return core.Summary{}, fmt.Errorf("fetch summary: %w", err)
	}
	return out, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&msg) == nil {
			se.Message = msg.Message
		}
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
