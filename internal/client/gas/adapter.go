// Package gasclient talks to the spreadsheet-backed web-script endpoint that
// owns all persisted data.
package gasclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

const serviceName = "remote data api"

// maxBody caps how much of a reply is read; the sheet dumps are small.
const maxBody = 32 << 20

type Adapter struct {
	httpClient *http.Client
	baseURL    *url.URL
	group      singleflight.Group
	newID      func() string
}

func NewAdapter(httpClient *http.Client, baseURL string) (*Adapter, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		return nil, errs.NewValidationError("remote data API URL is not configured")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, errs.NewValidationError("invalid remote data API URL: " + baseURL)
	}
	return &Adapter{
		httpClient: httpClient,
		baseURL:    u,
		newID:      uuid.NewString,
	}, nil
}

// Host is the endpoint's host name; the asset cache never intercepts it.
func (a *Adapter) Host() string {
	return a.baseURL.Hostname()
}

// Init fetches categories, payment methods and (newer scripts) the wish list.
// Concurrent callers share one request, which outlives the caller that
// started it; the HTTP client's timeout bounds it.
func (a *Adapter) Init(ctx context.Context) (dto.InitResponse, error) {
	v, err, _ := a.group.Do(dto.ActionInit, func() (any, error) {
		body, err := a.get(context.WithoutCancel(ctx), dto.ActionInit)
		if err != nil {
			return dto.InitResponse{}, err
		}
		var resp dto.InitResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return dto.InitResponse{}, errs.NewValidationError("malformed init response: " + err.Error())
		}
		if err := resp.Validate(); err != nil {
			return dto.InitResponse{}, err
		}
		return resp, nil
	})
	if err != nil {
		return dto.InitResponse{}, err
	}
	return v.(dto.InitResponse), nil
}

// GetLogs fetches every ledger row. Concurrent callers share one request.
func (a *Adapter) GetLogs(ctx context.Context) ([]dto.LogRecord, error) {
	v, err, _ := a.group.Do(dto.ActionGetLogs, func() (any, error) {
		body, err := a.get(context.WithoutCancel(ctx), dto.ActionGetLogs)
		if err != nil {
			return nil, err
		}
		body = bytes.TrimSpace(body)
		if len(body) > 0 && body[0] == '{' {
			var status dto.ActionResponse
			if err := json.Unmarshal(body, &status); err == nil && status.Status == dto.StatusError {
				return nil, errs.NewRemoteError(dto.ActionGetLogs, status.Message)
			}
			return nil, errs.NewValidationError("malformed getLogs response: expected a list")
		}
		var rows []dto.LogRecord
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, errs.NewValidationError("malformed getLogs response: " + err.Error())
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dto.LogRecord), nil
}

// Post sends one mutation. A reply with status "error" becomes a
// *errs.RemoteError carrying the server's message; a 2xx reply that is not
// JSON counts as success.
func (a *Adapter) Post(ctx context.Context, payload dto.ActionPayload) (dto.ActionResponse, error) {
	env := payload.Base()
	if env.RequestID == "" {
		env.RequestID = a.newID()
	}
	log := logger.FromContext(ctx).With("action", env.Action, "request_id", env.RequestID)

	raw, err := json.Marshal(payload)
	if err != nil {
		return dto.ActionResponse{}, fmt.Errorf("encode %s payload: %w", env.Action, err)
	}
	// the script endpoint reads the raw body; it is sent as plain text
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL.String(), bytes.NewReader(raw))
	if err != nil {
		return dto.ActionResponse{}, fmt.Errorf("build %s request: %w", env.Action, err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	body, err := a.do(req)
	if err != nil {
		log.Warn("remote post failed", "error", err)
		return dto.ActionResponse{}, err
	}

	var resp dto.ActionResponse
	if err := json.Unmarshal(bytes.TrimSpace(body), &resp); err != nil {
		log.Debug("non-JSON reply treated as success")
		return dto.ActionResponse{Status: "success"}, nil
	}
	if resp.Status == dto.StatusError {
		log.Info("remote rejected action", "message", resp.Message)
		return resp, errs.NewRemoteError(env.Action, resp.Message)
	}
	return resp, nil
}

func (a *Adapter) get(ctx context.Context, action string) ([]byte, error) {
	u := *a.baseURL
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	return a.do(req)
}

func (a *Adapter) do(req *http.Request) ([]byte, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewExternalServiceError(serviceName, true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errs.NewExternalServiceError(serviceName, true, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, errs.NewExternalServiceError(serviceName, transient, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return body, nil
}
