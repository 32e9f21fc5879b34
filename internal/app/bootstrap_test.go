package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gold_price/internal/domain"
)

func setupConfig(t *testing.T, upstreamURL string) {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`
server:
  addr: "127.0.0.1:0"
upstream:
  url: %q
refresh:
  interval_sec: 60
logging:
  level: "error"
  dir: %q
`, upstreamURL, filepath.Join(dir, "logs"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("GOLD_CONFIG", path)
}

func TestBootstrap_InitializeAndWarm(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"USD","symbol":"GC=F","regularMarketPrice":2000.0,"previousClose":1990.0}}],"error":null}}`))
	}))
	defer upstream.Close()
	setupConfig(t, upstream.URL)

	b := NewBootstrap()
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if b.Scheduler.Interval().Seconds() != 60 {
		t.Errorf("Expected 60s interval from config, got %v", b.Scheduler.Interval())
	}
	if _, ok := b.Cache.CachedData(); ok {
		t.Error("Cache should be cold before WarmCache")
	}

	if err := b.WarmCache(context.Background()); err != nil {
		t.Fatalf("WarmCache failed: %v", err)
	}

	rec, ok := b.Cache.CachedData()
	if !ok {
		t.Fatal("Cache should be warm after WarmCache")
	}
	if rec.Price.InexactFloat64() != 2000.0 {
		t.Errorf("Expected 2000, got %v", rec.Price)
	}
	if b.Metrics.Snapshot().UpstreamCalls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", b.Metrics.Snapshot().UpstreamCalls)
	}
}

func TestBootstrap_WarmFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()
	setupConfig(t, upstream.URL)

	b := NewBootstrap()
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	err := b.WarmCache(context.Background())

	var initErr *domain.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("Expected InitializationError, got %v", err)
	}
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	setupConfig(t, "ftp://example.com")

	if err := NewBootstrap().Initialize(); err == nil {
		t.Error("Invalid upstream URL should fail bootstrapping")
	}
}
