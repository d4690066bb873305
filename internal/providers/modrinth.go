package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dshills/packwizml/internal/mods"
)

const modrinthAPIURL = "https://api.modrinth.com/v2"

// Modrinth fetches project metadata from the Modrinth API.
type Modrinth struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewModrinth creates a Modrinth client. No API key is required.
func NewModrinth(opts Options) *Modrinth {
	base := opts.BaseURL
	if base == "" {
		base = modrinthAPIURL
	}
	return &Modrinth{
		baseURL: strings.TrimRight(base, "/"),
		client:  httpClient(opts),
		logger:  logger(opts),
	}
}

func (m *Modrinth) Source() mods.Source { return mods.Modrinth }

// GetProject returns a single project by id or slug.
func (m *Modrinth) GetProject(ctx context.Context, id string) (mods.ModrinthProject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/project/"+url.PathEscape(id), nil)
	if err != nil {
		return mods.ModrinthProject{}, fmt.Errorf("creating request: %w", err)
	}
	var p mods.ModrinthProject
	if err := doJSON(m.client, req, mods.Modrinth, &p); err != nil {
		return mods.ModrinthProject{}, err
	}
	return p, nil
}

// GetProjects returns every project matching ids in one request. The API
// omits ids it does not know; callers must check for missing results.
func (m *Modrinth) GetProjects(ctx context.Context, ids []string) ([]mods.ModrinthProject, error) {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshaling ids: %w", err)
	}
	q := url.Values{}
	q.Set("ids", string(encoded))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/projects?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	m.logger.Debug("fetching projects", "source", mods.Modrinth, "count", len(ids))
	var projects []mods.ModrinthProject
	if err := doJSON(m.client, req, mods.Modrinth, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (m *Modrinth) Fetch(ctx context.Context, id string) (mods.Record, error) {
	p, err := m.GetProject(ctx, id)
	if err != nil {
		return mods.Record{}, err
	}
	return mods.FromModrinth(p), nil
}

// FetchBatch issues a single request for all ids. Results are matched back
// to the requested ids by project id or slug.
func (m *Modrinth) FetchBatch(ctx context.Context, ids []string) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	projects, err := m.GetProjects(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]mods.ModrinthProject, len(projects)*2)
	for _, p := range projects {
		byID[p.ID] = p
		if p.Slug != "" {
			byID[p.Slug] = p
		}
	}

	items := make([]Item, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			items[i] = Item{ID: id, Err: notFound(mods.Modrinth, id)}
			continue
		}
		items[i] = Item{ID: id, Record: mods.FromModrinth(p)}
	}
	return items, nil
}
