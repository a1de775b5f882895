package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalToml = `
[source]
base_url = "https://example.test/auctions"

[filters]
min_price = 1000
min_flip = 500
categories = ["Weapon", "armor", "weapon", ""]
exceptions = ["Enchanted Book"]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "user.toml", minimalToml)

	cfg, err := Load(path, filepath.Join(dir, "missing-default.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Source.RefreshIntervalSec != 50 {
		t.Errorf("expected default refresh interval 50, got %d", cfg.Source.RefreshIntervalSec)
	}
	if cfg.Filters.MinSupply != 2 {
		t.Errorf("expected default min supply 2, got %d", cfg.Filters.MinSupply)
	}

	// categories lowercased and deduped
	if len(cfg.Filters.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", cfg.Filters.Categories)
	}
	if _, ok := cfg.CategorySet()["weapon"]; !ok {
		t.Errorf("weapon missing from category set: %v", cfg.Filters.Categories)
	}
	// exceptions keep their case
	if _, ok := cfg.ExceptionSet()["Enchanted Book"]; !ok {
		t.Errorf("exception lost: %v", cfg.Filters.Exceptions)
	}
}

func TestLoadFallsBackToDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	fallback := writeFile(t, dir, "default.toml", minimalToml)

	cfg, err := Load(filepath.Join(dir, "nope.toml"), fallback)
	if err != nil {
		t.Fatalf("fallback load failed: %v", err)
	}
	if cfg.Source.BaseURL != "https://example.test/auctions" {
		t.Errorf("unexpected base url %q", cfg.Source.BaseURL)
	}
}

func TestLoadFailsWithoutAnyConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.toml")); err == nil {
		t.Fatal("expected error when both configs are missing")
	}
}

func TestLoadRejectsEmptyBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "user.toml", `
[filters]
categories = ["weapon"]
`)
	if _, err := Load(path, path); err == nil {
		t.Fatal("expected validation error for empty base_url")
	}
}

func TestLoadRejectsEnabledBackendWithoutAddr(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "user.toml", minimalToml+`
[redis]
enabled = true
`)
	if _, err := Load(path, path); err == nil {
		t.Fatal("expected validation error for redis without addr")
	}
}
