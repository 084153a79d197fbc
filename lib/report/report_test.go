// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sample() *Report {
	return &Report{
		Seed:  424242,
		Steps: []string{"randomize-encounters", "randomize-trainers"},
		Image: ImageIdentity{
			Title:    "MONTEST",
			GameCode: "IRBO",
			Before:   "aa11",
			After:    "bb22",
		},
		Containers: []ContainerChange{
			{Path: "/a/0/1/2", Before: "c1", After: "c2"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.report")
	want := sample()
	if err := want.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip diverged:\n got  %+v\n want %+v", got, want)
	}
}

func TestEncodingIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.report")
	second := filepath.Join(dir, "second.report")
	if err := sample().WriteFile(first); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := sample().WriteFile(second); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two encodings of the same report differ")
	}
}

func TestReadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.report")
	if err := os.WriteFile(path, []byte("not cbor at all"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile accepted garbage")
	}
}
