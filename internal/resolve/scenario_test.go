package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dshills/packwizml/internal/cache"
	"github.com/dshills/packwizml/internal/mods"
	"github.com/dshills/packwizml/internal/providers"
)

// upstream fakes both APIs on one server and records every request.
type upstream struct {
	mu       sync.Mutex
	modrinth []string
	curse    []string
}

func (u *upstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/modrinth/projects", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.modrinth = append(u.modrinth, r.URL.Query().Get("ids"))
		u.mu.Unlock()
		w.Write([]byte(`[{"id":"abc","slug":"sodium","title":"Sodium","description":"Rendering engine"}]`))
	})
	mux.HandleFunc("/curseforge/mods/42", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.curse = append(u.curse, r.URL.Path)
		u.mu.Unlock()
		if r.Header.Get("x-api-key") != "secret" {
			t.Error("missing x-api-key")
		}
		w.Write([]byte(`{"data":{"id":42,"name":"JEI","slug":"jei","summary":"Item viewer"}}`))
	})
	return mux
}

func (u *upstream) counts() (int, int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.modrinth), len(u.curse)
}

func runScenario(t *testing.T, server *httptest.Server, path string, refs []mods.Reference) []mods.Record {
	t.Helper()
	store, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	fetchers := []providers.Fetcher{
		providers.NewModrinth(providers.Options{BaseURL: server.URL + "/modrinth"}),
		providers.NewCurseForge(providers.Options{BaseURL: server.URL + "/curseforge", APIKey: "secret"}),
	}
	recs, err := New(store, fetchers, Options{}).Resolve(context.Background(), refs)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	return recs
}

func TestScenario_EndToEnd(t *testing.T) {
	up := &upstream{}
	server := httptest.NewServer(up.handler(t))
	defer server.Close()

	path := filepath.Join(t.TempDir(), ".packwizml.cache")
	refs := []mods.Reference{
		{Source: mods.Modrinth, ID: "abc", Token: "t1"},
		{Source: mods.CurseForge, ID: "42", Token: "t2"},
	}

	first := runScenario(t, server, path, refs)
	mrCalls, cfCalls := up.counts()
	if mrCalls != 1 || up.modrinth[0] != `["abc"]` {
		t.Errorf("modrinth requests = %v, want one with [\"abc\"]", up.modrinth)
	}
	if cfCalls != 1 {
		t.Errorf("curseforge requests = %d, want 1", cfCalls)
	}
	if len(first) != 2 || first[0].Title() != "Sodium" || first[1].Title() != "JEI" {
		t.Fatalf("records = %+v", first)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading cache: %v", err)
	}
	var raw map[string]cache.Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("cache file is not valid JSON: %v", err)
	}
	if len(raw) != 2 || raw["modrinth:abc"].Token != "t1" || raw["curseforge:42"].Token != "t2" {
		t.Errorf("cache entries = %+v", raw)
	}

	info, _ := os.Stat(path)
	second := runScenario(t, server, path, refs)
	mrCalls, cfCalls = up.counts()
	if mrCalls != 1 || cfCalls != 1 {
		t.Errorf("re-run made upstream calls: modrinth=%d curseforge=%d", mrCalls, cfCalls)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("re-run records differ:\n%s\n%s", a, b)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("clean re-run should not rewrite the cache file")
	}
}
