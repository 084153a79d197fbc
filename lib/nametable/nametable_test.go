// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package nametable

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "species.txt")
	if err := os.WriteFile(path, []byte("Bulbasaur\nIvysaur\n\nCharmander\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	table, err := Load(path, discard())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("Len = %d, want 4 (trailing newline must not add an entry)", table.Len())
	}
	if name, ok := table.Name(1); !ok || name != "Ivysaur" {
		t.Errorf("Name(1) = %q, %v", name, ok)
	}
	if _, ok := table.Name(2); ok {
		t.Error("Name(2) resolved an empty line")
	}
	if _, ok := table.Name(4); ok {
		t.Error("Name(4) resolved past the table end")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt"), discard()); err == nil {
		t.Error("Load succeeded on a missing file")
	}
}

func TestReverseLookup(t *testing.T) {
	table := New("forms", []string{"Deerling", "Sawsbuck", "Deerling", "Deerling"}, discard())
	if got := table.IDs("Deerling"); !reflect.DeepEqual(got, []int{0, 2, 3}) {
		t.Errorf("IDs = %v, want [0 2 3]", got)
	}
	if got := table.IDs("Missingno"); got != nil {
		t.Errorf("IDs for unknown name = %v, want nil", got)
	}
}

func TestUniqueWarnsOnAmbiguity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	table := New("forms", []string{"Deerling", "Sawsbuck", "Deerling"}, logger)

	id, ok := table.Unique("Sawsbuck")
	if !ok || id != 1 {
		t.Errorf("Unique(Sawsbuck) = %d, %v, want 1, true", id, ok)
	}
	if buf.Len() != 0 {
		t.Errorf("unambiguous lookup warned: %s", buf.String())
	}

	id, ok = table.Unique("Deerling")
	if !ok || id != 0 {
		t.Errorf("Unique(Deerling) = %d, %v, want 0, true", id, ok)
	}
	if !strings.Contains(buf.String(), "ambiguous") {
		t.Errorf("ambiguous lookup did not warn: %s", buf.String())
	}

	if _, ok := table.Unique("Missingno"); ok {
		t.Error("Unique resolved an unknown name")
	}
}
