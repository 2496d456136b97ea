package config

import (
	"os"
	"path/filepath"
	"testing"

	rerr "github.com/recall-oss/recall/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "recall" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Store.Driver)
	}
	if cfg.Store.Path == "" {
		t.Error("expected a default sqlite path")
	}
	if cfg.Index.Driver != "chromem" {
		t.Errorf("expected chromem index, got %q", cfg.Index.Driver)
	}
	if cfg.Limits.SearchDefault != 10 || cfg.Limits.HistoryDefault != 50 {
		t.Errorf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `
name: recall-staging
server:
  port: 9090
store:
  driver: memory
index:
  driver: none
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(filepath.Join(dir, "recall.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "recall-staging" {
		t.Errorf("expected recall-staging, got %q", cfg.Name)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.Store.Driver)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoad_EnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECALL_TEST_DB", "/tmp/recall-test.db")
	content := `
store:
  driver: sqlite
  path: ${RECALL_TEST_DB}
`
	if err := os.WriteFile(filepath.Join(dir, "recall.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Path != "/tmp/recall-test.db" {
		t.Errorf("expected interpolated path, got %q", cfg.Store.Path)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	dir := t.TempDir()
	content := `
store:
  driver: postgres
`
	if err := os.WriteFile(filepath.Join(dir, "recall.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
	if rerr.AsCode(err) != rerr.CodeConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %q", rerr.AsCode(err))
	}
}

func TestValidate_SQLiteRequiresPath(t *testing.T) {
	cfg := &Config{
		Store:  StoreConfig{Driver: "sqlite"},
		Limits: LimitsConfig{SearchDefault: 10, HistoryDefault: 50},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error for a missing sqlite path")
	}
	if rerr.Suggestion(err) == "" {
		t.Error("expected a suggestion on the config error")
	}
}
