package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
)

const analysisPath = "/api/analysis"

// API is the analysis backend as seen by the rest of the client.
type API interface {
	List(ctx context.Context, query domain.ListQuery) (domain.ListPage, error)
	Get(ctx context.Context, id string) (domain.AnalysisWithResult, error)
	Status(ctx context.Context, id string) (domain.Status, error)
	Create(ctx context.Context, input domain.CreateAnalysisInput) (domain.Analysis, error)
	Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.Analysis, error)
	Reset(ctx context.Context, id string) (domain.Analysis, error)
	Delete(ctx context.Context, id string) error
}

type Settings struct {
	Host    string
	Token   string
	Timeout time.Duration
}

type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

func NewAnalysisClient(settings Settings) (*Client, error) {
	if strings.TrimSpace(settings.Host) == "" {
		return nil, fmt.Errorf("api host is required")
	}
	base, err := url.Parse(strings.TrimRight(settings.Host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api host %q: %w", settings.Host, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api host %q must be an absolute url", settings.Host)
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		base:  base,
		token: settings.Token,
		http:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) List(ctx context.Context, query domain.ListQuery) (domain.ListPage, error) {
	const msg = "Failed to fetch analysis list"

	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Status != "" {
		params.Set("status", string(query.Status))
	}
	if query.RiskLevel != "" {
		params.Set("risk_level", string(query.RiskLevel))
	}
	if query.SortBy != "" {
		params.Set("sort_by", query.SortBy)
	}
	if query.SortOrder != "" {
		params.Set("sort_order", string(query.SortOrder))
	}

	var res api.AnalysisListResponse
	if err := c.do(ctx, http.MethodGet, analysisPath, params, nil, &res); err != nil {
		return domain.ListPage{}, wrap(err, msg)
	}
	return adapters.MapListResponseApiToDomain(res), nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.AnalysisWithResult, error) {
	var res api.AnalysisWithResults
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, nil, &res); err != nil {
		return domain.AnalysisWithResult{}, wrap(err, "Failed to fetch analysis")
	}
	return adapters.MapAnalysisWithResultsApiToDomain(res), nil
}

func (c *Client) Status(ctx context.Context, id string) (domain.Status, error) {
	var res api.StatusResponse
	if err := c.do(ctx, http.MethodGet, itemPath(id)+"/status", nil, nil, &res); err != nil {
		return "", wrap(err, "Failed to fetch analysis status")
	}
	status := domain.Status(res.Status)
	if !status.Valid() {
		return "", domain.NewError(domain.KindNetwork, "Failed to fetch analysis status",
			fmt.Errorf("unknown status %q", res.Status))
	}
	return status, nil
}

func (c *Client) Create(ctx context.Context, input domain.CreateAnalysisInput) (domain.Analysis, error) {
	var res api.Analysis
	body := adapters.MapCreateInputDomainToApi(input)
	if err := c.do(ctx, http.MethodPost, analysisPath, nil, body, &res); err != nil {
		return domain.Analysis{}, domain.NewError(domain.KindCreation, "Failed to create analysis", err)
	}
	return adapters.MapAnalysisApiToDomain(res), nil
}

func (c *Client) Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.Analysis, error) {
	var res api.Analysis
	body := adapters.MapPatchDomainToApi(patch)
	if err := c.do(ctx, http.MethodPatch, itemPath(id), nil, body, &res); err != nil {
		return domain.Analysis{}, wrap(err, "Failed to update analysis")
	}
	return adapters.MapAnalysisApiToDomain(res), nil
}

// Reset puts the analysis back to pending so the backend reprocesses it.
func (c *Client) Reset(ctx context.Context, id string) (domain.Analysis, error) {
	var res api.Analysis
	body := api.ResetAnalysisInput{Status: string(domain.StatusPending)}
	if err := c.do(ctx, http.MethodPut, itemPath(id), nil, body, &res); err != nil {
		return domain.Analysis{}, wrap(err, "Failed to update analysis")
	}
	return adapters.MapAnalysisApiToDomain(res), nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil, nil); err != nil {
		return wrap(err, "Failed to delete analysis")
	}
	return nil
}

func itemPath(id string) string {
	return analysisPath + "/" + url.PathEscape(id)
}

type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.code, e.message)
	}
	return fmt.Sprintf("unexpected status %d", e.code)
}

// wrap classifies a transport failure. 404 becomes not_found and wraps
// domain.ErrNotFound, everything else is a network error.
func wrap(err error, message string) error {
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return domain.NewError(domain.KindNotFound, message, fmt.Errorf("%w: %s", domain.ErrNotFound, se.Error()))
	}
	return domain.NewError(domain.KindNetwork, message, err)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	logger := zerolog.Ctx(ctx)

	// path arrives escaped; ids may carry reserved characters
	u := *c.base
	escaped := strings.TrimRight(c.base.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", escaped, err)
	}
	u.Path = unescaped
	u.RawPath = escaped
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		logger.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("unexpected response")
		return &statusError{code: resp.StatusCode, message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
