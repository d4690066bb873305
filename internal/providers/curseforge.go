package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/mods"
)

const (
	curseForgeAPIURL = "https://api.curseforge.com/v1"

	// DefaultConcurrency is the default cap on in-flight CurseForge requests.
	DefaultConcurrency = 8
)

// CurseForge fetches mod metadata from the CurseForge API.
type CurseForge struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	concurrency int
	logger      *log.Logger
}

// NewCurseForge creates a CurseForge client. A missing API key is reported
// when the client is first used, so packs without CurseForge mods never need
// one.
func NewCurseForge(opts Options) *CurseForge {
	base := opts.BaseURL
	if base == "" {
		base = curseForgeAPIURL
	}
	return &CurseForge{
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(base, "/"),
		client:      httpClient(opts),
		concurrency: opts.Concurrency,
		logger:      logger(opts),
	}
}

func (c *CurseForge) Source() mods.Source { return mods.CurseForge }

type curseForgeModResponse struct {
	Data *mods.CurseForgeProject `json:"data"`
}

// GetMod returns a single mod by its numeric id.
func (c *CurseForge) GetMod(ctx context.Context, id int) (mods.CurseForgeProject, error) {
	if c.apiKey == "" {
		return mods.CurseForgeProject{}, apperr.Validation("CurseForge API key is not set (CF_API_KEY or CF_API_KEY_FILE)")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/mods/"+strconv.Itoa(id), nil)
	if err != nil {
		return mods.CurseForgeProject{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	var resp curseForgeModResponse
	if err := doJSON(c.client, req, mods.CurseForge, &resp); err != nil {
		return mods.CurseForgeProject{}, err
	}
	switch {
	case resp.Data == nil || resp.Data.ID == 0:
		return mods.CurseForgeProject{}, &apperr.DecodeError{
			Source: string(mods.CurseForge),
			Err:    fmt.Errorf("mod %d: response has no data", id),
		}
	case resp.Data.ID != id:
		return mods.CurseForgeProject{}, &apperr.DecodeError{
			Source: string(mods.CurseForge),
			Err:    fmt.Errorf("mod %d: response is for mod %d", id, resp.Data.ID),
		}
	}
	return *resp.Data, nil
}

func (c *CurseForge) Fetch(ctx context.Context, id string) (mods.Record, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return mods.Record{}, apperr.Validation("curseforge project id %q is not a number", id)
	}
	p, err := c.GetMod(ctx, n)
	if err != nil {
		return mods.Record{}, err
	}
	return mods.FromCurseForge(p), nil
}

// FetchBatch requests every id concurrently and joins the results. A failed
// request does not cancel its siblings; each failure is reported in its Item.
func (c *CurseForge) FetchBatch(ctx context.Context, ids []string) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, apperr.Validation("CurseForge API key is not set (CF_API_KEY or CF_API_KEY_FILE)")
	}

	c.logger.Debug("fetching mods", "source", mods.CurseForge, "count", len(ids), "concurrency", c.concurrency)

	items := make([]Item, len(ids))
	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := c.Fetch(ctx, id)
			items[i] = Item{ID: id, Record: rec, Err: err}
			return nil
		})
	}
	g.Wait()

	return items, nil
}
