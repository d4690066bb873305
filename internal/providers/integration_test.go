//go:build integration

package providers

import (
	"context"
	"os"
	"testing"
	"time"
)

// These tests call the live APIs. Run with: go test -tags integration ./internal/providers

func integrationContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)
	return ctx
}

func TestIntegration_Modrinth(t *testing.T) {
	m := NewModrinth(Options{})
	items, err := m.FetchBatch(integrationContext(t), []string{"AANobbMI", "P7dR8mSH"})
	if err != nil {
		t.Fatalf("FetchBatch error: %v", err)
	}
	for _, it := range items {
		if it.Err != nil {
			t.Errorf("%s: %v", it.ID, it.Err)
			continue
		}
		if it.Record.Title() == "" || it.Record.Slug() == "" {
			t.Errorf("%s: incomplete record %+v", it.ID, it.Record)
		}
	}
}

func TestIntegration_CurseForge(t *testing.T) {
	key := os.Getenv("CF_API_KEY")
	if key == "" {
		t.Skip("skipping: CF_API_KEY not set")
	}
	c := NewCurseForge(Options{APIKey: key, Concurrency: 2})
	items, err := c.FetchBatch(integrationContext(t), []string{"238222", "306612"})
	if err != nil {
		t.Fatalf("FetchBatch error: %v", err)
	}
	for _, it := range items {
		if it.Err != nil {
			t.Errorf("%s: %v", it.ID, it.Err)
			continue
		}
		if it.Record.ID() != it.ID {
			t.Errorf("record id = %q, want %q", it.Record.ID(), it.ID)
		}
	}
}
