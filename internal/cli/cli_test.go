package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/cache"
	"github.com/dshills/packwizml/internal/config"
	"github.com/dshills/packwizml/internal/mods"
)

const packTOML = `name = "Test Pack"
pack-format = "packwiz:1.1.0"

[versions]
minecraft = "1.20.1"
`

const sodiumTOML = `name = "Sodium"
filename = "sodium.jar"

[update.modrinth]
mod-id = "abc"
version = "v1"
`

const jeiTOML = `name = "JEI"
filename = "jei.jar"

[update.curseforge]
project-id = 42
file-id = 7
`

// fakeAPI serves both upstream APIs and counts requests.
type fakeAPI struct {
	modrinth   atomic.Int32
	curseforge atomic.Int32
	cfStatus   int
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mr/projects", func(w http.ResponseWriter, r *http.Request) {
		f.modrinth.Add(1)
		w.Write([]byte(`[{"id":"abc","slug":"sodium","title":"Sodium","description":"Fast rendering"}]`))
	})
	mux.HandleFunc("/cf/mods/42", func(w http.ResponseWriter, r *http.Request) {
		f.curseforge.Add(1)
		if f.cfStatus != 0 {
			w.WriteHeader(f.cfStatus)
			w.Write([]byte(`{"error":"denied"}`))
			return
		}
		w.Write([]byte(`{"data":{"id":42,"name":"JEI","slug":"jei","summary":"Item viewer"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setup creates a pack in a temp working directory and points the CLI at
// srv. It returns the working directory.
func setup(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	work := t.TempDir()
	chdir(t, work)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(work, "xdg"))
	t.Setenv("PACKWIZML_API_MODRINTH_URL", srv.URL+"/mr")
	t.Setenv("PACKWIZML_API_CURSEFORGE_URL", srv.URL+"/cf")
	t.Setenv("CF_API_KEY", "test-key")
	t.Setenv("CF_API_KEY_FILE", "")
	os.Unsetenv("CF_API_KEY_FILE")

	files := map[string]string{
		"pack/pack.toml":           packTOML,
		"pack/mods/sodium.pw.toml": sodiumTOML,
		"pack/mods/jei.pw.toml":    jeiTOML,
	}
	for name, content := range files {
		path := filepath.Join(work, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return work
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := RunArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGenerate_DefaultTemplate(t *testing.T) {
	api := &fakeAPI{}
	setup(t, api.server(t))

	code, out, errOut := run(t, "-p", "pack")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	want := "- [Sodium](https://modrinth.com/mod/sodium) - Fast rendering\n" +
		"- [JEI](https://www.curseforge.com/minecraft/mc-mods/jei) - Item viewer\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
	if _, err := os.Stat(cache.DefaultPath); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
}

func TestGenerate_SecondRunUsesCache(t *testing.T) {
	api := &fakeAPI{}
	setup(t, api.server(t))

	if code, _, errOut := run(t, "-p", "pack"); code != ExitSuccess {
		t.Fatalf("first run exit = %d: %s", code, errOut)
	}
	code, out, errOut := run(t, "-p", "pack", "--json")
	if code != ExitSuccess {
		t.Fatalf("second run exit = %d: %s", code, errOut)
	}
	if api.modrinth.Load() != 1 || api.curseforge.Load() != 1 {
		t.Errorf("requests modrinth=%d curseforge=%d, want 1 each", api.modrinth.Load(), api.curseforge.Load())
	}
	var entries []map[string]string
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("--json output invalid: %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[1]["source"] != "curseforge" || entries[1]["id"] != "42" {
		t.Errorf("entries = %v", entries)
	}
}

func TestGenerate_SortTemplateAndOutputFile(t *testing.T) {
	api := &fakeAPI{}
	work := setup(t, api.server(t))

	code, out, errOut := run(t, "-p", "pack", "-s", "name", "-r", "-f", `{INDEX}:{SLUG}\n`, "-o", "MODS.txt")
	if code != ExitSuccess {
		t.Fatalf("exit = %d: %s", code, errOut)
	}
	if out != "" {
		t.Errorf("stdout should be empty when writing a file, got %q", out)
	}
	data, err := os.ReadFile(filepath.Join(work, "pack", "MODS.txt"))
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if string(data) != "1:sodium\n2:jei\n" {
		t.Errorf("file = %q", data)
	}

	code, _, errOut = run(t, "-p", "pack", "-o", "MODS.txt")
	if code != ExitUsageError || !strings.Contains(errOut, "already exists") {
		t.Errorf("existing output without --force: exit = %d, stderr = %q", code, errOut)
	}
	if code, _, errOut := run(t, "-p", "pack", "-o", "MODS.txt", "-F"); code != ExitSuccess {
		t.Errorf("--force: exit = %d: %s", code, errOut)
	}
}

func TestGenerate_AuthFailure(t *testing.T) {
	api := &fakeAPI{cfStatus: http.StatusForbidden}
	setup(t, api.server(t))

	code, out, errOut := run(t, "-p", "pack", "--color", "never")
	if code != ExitAuthError {
		t.Errorf("exit = %d, want %d (stderr %s)", code, ExitAuthError, errOut)
	}
	if out != "" {
		t.Errorf("no output expected on failure, got %q", out)
	}
	if strings.Contains(errOut, "test-key") {
		t.Errorf("API key leaked to stderr: %s", errOut)
	}

	// The Modrinth sublist resolved before the failure and is persisted.
	store, err := cache.Load(cache.DefaultPath)
	if err != nil {
		t.Fatalf("loading cache: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", store.Len())
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	api := &fakeAPI{}
	setup(t, api.server(t))
	os.Unsetenv("CF_API_KEY")

	code, _, errOut := run(t, "-p", "pack")
	if code != ExitUsageError || !strings.Contains(errOut, "CF_API_KEY") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
	if api.curseforge.Load() != 0 {
		t.Error("no CurseForge request should be sent without a key")
	}
}

func TestGenerate_List(t *testing.T) {
	api := &fakeAPI{}
	work := setup(t, api.server(t))
	list := filepath.Join(work, "mods.txt")
	if err := os.WriteFile(list, []byte("# only modrinth\nmr:abc:v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("CF_API_KEY")

	code, out, errOut := run(t, "--list", list, "-f", `{TITLE}\n`)
	if code != ExitSuccess {
		t.Fatalf("exit = %d: %s", code, errOut)
	}
	if out != "Sodium\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestGenerate_Errors(t *testing.T) {
	api := &fakeAPI{}
	setup(t, api.server(t))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing pack", []string{"-p", "nope"}, ExitUsageError},
		{"bad sort", []string{"-p", "pack", "-s", "author"}, ExitUsageError},
		{"bad policy", []string{"-p", "pack", "--on-error", "retry"}, ExitUsageError},
		{"unknown flag", []string{"--bogus"}, ExitUsageError},
		{"unexpected arg", []string{"extra"}, ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := run(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit = %d, want %d (stderr %s)", code, tt.code, errOut)
			}
		})
	}
}

func TestGenerate_CorruptCache(t *testing.T) {
	api := &fakeAPI{}
	setup(t, api.server(t))
	if err := os.WriteFile(cache.DefaultPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, _ := run(t, "-p", "pack")
	if code != ExitRuntimeError {
		t.Errorf("exit = %d, want %d", code, ExitRuntimeError)
	}
}

func TestCacheCommands(t *testing.T) {
	api := &fakeAPI{}
	setup(t, api.server(t))
	if code, _, errOut := run(t, "-p", "pack"); code != ExitSuccess {
		t.Fatalf("generate exit = %d: %s", code, errOut)
	}

	code, out, _ := run(t, "cache", "show")
	if code != ExitSuccess {
		t.Fatalf("cache show exit = %d", code)
	}
	var stats cache.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("cache show output: %v\n%s", err, out)
	}
	if stats.Entries != 2 || stats.BySource["modrinth"] != 1 || stats.FileBytes == 0 {
		t.Errorf("stats = %+v", stats)
	}

	if code, _, _ := run(t, "cache", "clear"); code != ExitSuccess {
		t.Fatalf("cache clear exit = %d", code)
	}
	if _, err := os.Stat(cache.DefaultPath); !os.IsNotExist(err) {
		t.Errorf("cache file still present: %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	api := &fakeAPI{}
	work := setup(t, api.server(t))
	t.Setenv("CF_API_KEY", "0123456789abcdefSECRET")
	path := filepath.Join(work, config.FileName)

	if code, _, errOut := run(t, "config", "init", "--config", path); code != ExitSuccess {
		t.Fatalf("config init exit = %d: %s", code, errOut)
	}
	if code, _, _ := run(t, "config", "init", "--config", path); code != ExitUsageError {
		t.Errorf("second config init exit = %d, want usage error", code)
	}
	if code, _, errOut := run(t, "config", "set", "sort-by", "slug", "--config", path); code != ExitSuccess {
		t.Fatalf("config set exit = %d: %s", code, errOut)
	}

	code, out, _ := run(t, "config", "show")
	if code != ExitSuccess {
		t.Fatalf("config show exit = %d", code)
	}
	if strings.Contains(out, "SECRET") {
		t.Errorf("config show leaked the key: %s", out)
	}
	var shown map[string]any
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("config show output: %v", err)
	}
	if shown["sortBy"] != "slug" {
		t.Errorf("sortBy = %v, want slug from ./%s", shown["sortBy"], config.FileName)
	}
	if shown["apiKey"] != "[REDACTED]...CRET" {
		t.Errorf("apiKey = %v", shown["apiKey"])
	}
}

func TestSourcesList(t *testing.T) {
	api := &fakeAPI{}
	srv := api.server(t)
	setup(t, srv)
	t.Setenv("CF_API_KEY", "0123456789abcdefSECRET")

	code, out, errOut := run(t, "sources", "list")
	if code != ExitSuccess {
		t.Fatalf("sources list exit = %d: %s", code, errOut)
	}
	for _, want := range []string{"modrinth:", "curseforge:", srv.URL + "/mr", "[REDACTED]...CRET"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "SECRET") {
		t.Errorf("sources list leaked the key: %s", out)
	}
}

func TestSourcesDoctor(t *testing.T) {
	tests := []struct {
		name     string
		cfStatus int
		want     int
	}{
		{"healthy", http.StatusOK, ExitSuccess},
		{"auth failure", http.StatusForbidden, ExitAuthError},
		{"server error", http.StatusInternalServerError, ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/mr/project/P7dR8mSH", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"P7dR8mSH","slug":"fabric-api","title":"Fabric API"}`))
			})
			mux.HandleFunc("/cf/mods/238222", func(w http.ResponseWriter, r *http.Request) {
				if tt.cfStatus != http.StatusOK {
					w.WriteHeader(tt.cfStatus)
					w.Write([]byte(`{"error":"nope"}`))
					return
				}
				w.Write([]byte(`{"data":{"id":238222,"name":"JEI","slug":"jei"}}`))
			})
			srv := httptest.NewServer(mux)
			t.Cleanup(srv.Close)
			setup(t, srv)

			code, out, errOut := run(t, "sources", "doctor")
			if code != tt.want {
				t.Fatalf("exit = %d, want %d\nstdout: %s\nstderr: %s", code, tt.want, out, errOut)
			}
			if !strings.Contains(out, "OK: modrinth is reachable") {
				t.Errorf("modrinth not reported reachable:\n%s", out)
			}
			if strings.Contains(out+errOut, "test-key") {
				t.Error("doctor output leaked the key")
			}
		})
	}
}

func TestNewFetchers(t *testing.T) {
	cfg := config.Default()
	fetchers, err := newFetchers(cfg, nil)
	if err != nil {
		t.Fatalf("newFetchers error: %v", err)
	}
	if len(fetchers) != len(mods.Sources) {
		t.Fatalf("got %d fetchers, want %d", len(fetchers), len(mods.Sources))
	}
	for i, src := range mods.Sources {
		if fetchers[i].Source() != src {
			t.Errorf("fetchers[%d].Source() = %s, want %s", i, fetchers[i].Source(), src)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := run(t, "version")
	if code != ExitSuccess || !strings.HasPrefix(out, "packwizml ") {
		t.Errorf("version: exit = %d, out = %q", code, out)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", apperr.Validation("bad"), ExitUsageError},
		{"auth", fmt.Errorf("wrapped: %w", &apperr.UpstreamError{Status: 401}), ExitAuthError},
		{"upstream", &apperr.UpstreamError{Status: 500}, ExitRuntimeError},
		{"file", apperr.File("reading", "x", errors.New("boom")), ExitRuntimeError},
		{"flag", usageError{errors.New("bad flag")}, ExitUsageError},
		{"unknown command", errors.New(`unknown command "x" for "packwizml"`), ExitUsageError},
		{"plain", errors.New("boom"), ExitRuntimeError},
	}
	for _, tt := range tests {
		if got := exitCodeFor(tt.err); got != tt.want {
			t.Errorf("%s: exitCodeFor = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
