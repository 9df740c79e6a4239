package aur

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/glorpus-work/aurseek/pkg/errors"
)

// DefaultBaseURL is the public AUR instance.
const DefaultBaseURL = "https://aur.archlinux.org"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 16 << 20

// HTTPClient talks to the AUR RPC endpoint over HTTP.
type HTTPClient struct {
	client    *http.Client
	baseURL   *url.URL
	userAgent string
}

// NewHTTPClient creates a client for the AUR instance at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errors.Wrapf(errors.ErrAURURLInvalid, "invalid AUR URL %q", baseURL)
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:   parsed,
		userAgent: "aurseek/1.0",
	}, nil
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (hc *HTTPClient) SetUserAgent(userAgent string) {
	hc.userAgent = userAgent
}

// Lookup performs a search and reports the outcome as a resolved status.
// It never returns an error: every failure becomes a Failure status.
func (hc *HTTPClient) Lookup(ctx context.Context, q Query) Status {
	resp, err := hc.Search(ctx, q)
	if err != nil {
		return Failure(FailureMessage(err))
	}
	return Success(resp)
}

// Search performs a single search request for q.
func (hc *HTTPClient) Search(ctx context.Context, q Query) (*Response, error) {
	searchURL, err := hc.buildSearchURL(q)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := hc.getJSON(ctx, searchURL, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Message: resp.Error}
	}
	if resp.Results == nil {
		resp.Results = []PackageSummary{}
	}
	return &resp, nil
}

// Info fetches the detail records for the named packages.
func (hc *HTTPClient) Info(ctx context.Context, names ...string) ([]PackageDetail, error) {
	if len(names) == 0 {
		return nil, ErrNoPackageNames
	}

	infoURL := hc.endpoint("rpc", "v5", "info")
	params := url.Values{}
	for _, name := range names {
		params.Add("arg[]", name)
	}
	infoURL.RawQuery = params.Encode()

	var resp infoResponse
	if err := hc.getJSON(ctx, infoURL.String(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Message: resp.Error}
	}
	return resp.Results, nil
}

// getJSON issues a GET request and decodes the body into out. A non-2xx
// response whose body still decodes to an RPC error is reported as that error.
func (hc *HTTPClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return errors.WithKind(errors.ErrTransport, errors.Wrap(err, "failed to create request"))
	}

	req.Header.Set("User-Agent", hc.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := hc.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return transportError(errors.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var rpcErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &rpcErr) == nil && rpcErr.Error != "" {
			return &APIError{Message: rpcErr.Error}
		}
		return errors.WithKind(errors.ErrTransport, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.WithKind(errors.ErrTransport, errors.Wrap(err, "invalid response body"))
	}
	return nil
}

func (hc *HTTPClient) buildSearchURL(q Query) (string, error) {
	if q.IsEmpty() {
		return "", errors.Wrap(errors.ErrApplication, "empty search query")
	}
	searchURL := hc.endpoint("rpc", "v5", "search", q.Text)
	searchURL.RawQuery = url.Values{"by": []string{q.Mode.SearchBy()}}.Encode()
	return searchURL.String(), nil
}

// endpoint joins path elements onto the base URL, escaping each element.
func (hc *HTTPClient) endpoint(elems ...string) *url.URL {
	escaped := make([]string, len(elems))
	for i, elem := range elems {
		escaped[i] = url.PathEscape(elem)
	}
	u := *hc.baseURL
	u.RawQuery = ""
	return u.JoinPath(escaped...)
}

func transportError(err error) error {
	var netErr net.Error
	if goerrors.Is(err, context.DeadlineExceeded) || (goerrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.WithKind(errors.ErrTransport, fmt.Errorf("request timed out: %w", err))
	}
	return errors.WithKind(errors.ErrTransport, err)
}

// FailureMessage renders err as the message of a Failure status. RPC errors
// keep the message the AUR sent; other errors keep their full chain.
func FailureMessage(err error) string {
	var apiErr *APIError
	if goerrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
