// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monforge/monforge/lib/snapshot"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monforge.yaml")
	content := `
paths:
  root: ` + dir + `
  name_tables: ${MONFORGE_ROOT}/names
snapshots:
  compression: lz4
verbosity:
  "": 1
  encounters/route-3: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.Root != dir {
		t.Errorf("Paths.Root = %q, want %q", cfg.Paths.Root, dir)
	}
	if want := dir + "/names"; cfg.Paths.NameTables != want {
		t.Errorf("Paths.NameTables = %q, want %q (variable expansion)", cfg.Paths.NameTables, want)
	}
	if cfg.Snapshots.Compression != "lz4" {
		t.Errorf("Snapshots.Compression = %q", cfg.Snapshots.Compression)
	}
	if cfg.CompressionTag() != snapshot.CompressionLZ4 {
		t.Errorf("CompressionTag = %v", cfg.CompressionTag())
	}
	if cfg.Verbosity["encounters/route-3"] != 3 {
		t.Errorf("Verbosity = %v", cfg.Verbosity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile accepted a missing file")
	}
}

func TestLoadRequiresEnv(t *testing.T) {
	t.Setenv("MONFORGE_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without MONFORGE_CONFIG")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Snapshots.Compression = "brotli"
	cfg.Verbosity = map[string]int{"trainers": 9}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted bad config")
	}
	if !strings.Contains(err.Error(), "compression") {
		t.Errorf("error does not mention compression: %v", err)
	}
	if !strings.Contains(err.Error(), "verbosity") {
		t.Errorf("error does not mention verbosity: %v", err)
	}
}

func TestEnsurePaths(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths = PathsConfig{
		Root:       filepath.Join(dir, "root"),
		NameTables: filepath.Join(dir, "root", "names"),
		Presets:    filepath.Join(dir, "root", "presets"),
		Reports:    filepath.Join(dir, "root", "reports"),
	}
	cfg.Snapshots.Dir = filepath.Join(dir, "root", "snapshots")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	for _, p := range []string{cfg.Paths.NameTables, cfg.Snapshots.Dir} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", p, err)
		}
	}
}
