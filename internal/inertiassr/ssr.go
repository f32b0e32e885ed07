// Package inertiassr talks to server-side rendering services that
// pre-render Inertia pages.
package inertiassr

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"

	"go.loamy.dev/inertia/internal/inertiaproto"
)

var _ SSRClient = (*httpClient)(nil)

// SSRTemplateData contains the head and body HTML fragments produced by
// server-side rendering.
type SSRTemplateData struct {
	Head string `json:"head"`
	Body string `json:"body"`
}

// SSRClient renders a page object into HTML fragments.
//
//go:generate mockgen -destination ssr_mock.go -package inertiassr . SSRClient
type SSRClient interface {
	// Render submits the page object to the rendering service.
	Render(context.Context, *inertiaproto.Page) (*SSRTemplateData, error)
}

// httpClient submits pages to an Inertia SSR server over HTTP.
type httpClient struct {
	client *http.Client
	url    string
}

func NewHTTPSSRClient(url string, client *http.Client) SSRClient {
	debug.Assert(url != "", "url must be provided")
	debug.Assert(client != nil, "client must be provided")

	return &httpClient{client, url}
}

func (s *httpClient) Render(ctx context.Context, page *inertiaproto.Page) (*SSRTemplateData, error) {
	debug.Assert(page != nil, "page must be set")

	b, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to marshal page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to create HTTP request: %w", err)
	}

	req.Header.Set(inertiaproto.HeaderContentType, inertiaproto.ContentTypeJSON)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inertia: unexpected HTTP status code: %d", resp.StatusCode)
	}

	var data SSRTemplateData
	if err := json.UnmarshalRead(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("inertia: failed to decode JSON response: %w", err)
	}

	return &data, nil
}
