package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/logging"
	"github.com/dshills/packwizml/internal/mods"
	"github.com/dshills/packwizml/internal/version"
)

const defaultTimeout = 30 * time.Second

// Item is the outcome of fetching one id of a batch.
type Item struct {
	ID     string
	Record mods.Record
	Err    error
}

// Fetcher is the upstream client abstraction used by the resolver.
type Fetcher interface {
	Source() mods.Source
	// Fetch retrieves a single project by its source-specific id.
	Fetch(ctx context.Context, id string) (mods.Record, error)
	// FetchBatch retrieves every id in as few calls as the source allows.
	// A non-nil error fails the whole batch; otherwise each Item carries its
	// own result, in the order of ids.
	FetchBatch(ctx context.Context, ids []string) ([]Item, error)
}

// Options configures a Fetcher. Zero values select defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout applies to the default HTTP client only.
	Timeout time.Duration
	// APIKey is required by CurseForge only.
	APIKey string
	// Concurrency caps in-flight CurseForge requests; 0 means unbounded.
	Concurrency int
	Logger      *log.Logger
}

// New creates a fetcher for source.
func New(source mods.Source, opts Options) (Fetcher, error) {
	switch source {
	case mods.Modrinth:
		return NewModrinth(opts), nil
	case mods.CurseForge:
		return NewCurseForge(opts), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}
}

func httpClient(opts Options) *http.Client {
	if opts.HTTPClient != nil {
		return opts.HTTPClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logging.Discard()
}

// doJSON sends req with the common headers and decodes a 200 response into
// out.
func doJSON(client *http.Client, req *http.Request, source mods.Source, out any) error {
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s request: %w", source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", source, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &apperr.UpstreamError{Source: string(source), Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apperr.DecodeError{Source: string(source), Body: string(body), Err: err}
	}
	return nil
}

func notFound(source mods.Source, id string) error {
	return &apperr.UpstreamError{
		Source: string(source),
		Status: http.StatusNotFound,
		Body:   fmt.Sprintf("project %q not returned", id),
	}
}
