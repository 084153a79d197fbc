// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package narc

import (
	"bytes"
	"crypto/rand"
	mrand "math/rand"
	"testing"
)

func TestBuildParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		buffers [][]byte
	}{
		{"empty container", nil},
		{"single buffer", [][]byte{{1, 2, 3, 4}}},
		{"unaligned lengths", [][]byte{{1}, {2, 3}, {4, 5, 6}, {7, 8, 9, 10, 11}}},
		{"empty buffers between", [][]byte{{}, {1, 2}, {}, {3}}},
		{"trailing empty buffer", [][]byte{{1, 2, 3}, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := Build(tt.buffers)
			parsed, err := Parse(blob)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(parsed) != len(tt.buffers) {
				t.Fatalf("parsed %d buffers, want %d", len(parsed), len(tt.buffers))
			}
			for i := range parsed {
				if !bytes.Equal(parsed[i], tt.buffers[i]) {
					t.Errorf("buffer %d = %x, want %x", i, parsed[i], tt.buffers[i])
				}
			}
		})
	}
}

func TestRebuildIsByteIdentical(t *testing.T) {
	// Parse then rebuild without touching anything: the container
	// bytes must not change. This is what guarantees a run with no
	// steps leaves the archive alone.
	source := mrand.New(mrand.NewSource(42))
	buffers := make([][]byte, 20)
	for i := range buffers {
		buffers[i] = make([]byte, source.Intn(100))
		if _, err := rand.Read(buffers[i]); err != nil {
			t.Fatalf("rand.Read failed: %v", err)
		}
	}
	blob := Build(buffers)
	parsed, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rebuilt := Build(parsed)
	if !bytes.Equal(rebuilt, blob) {
		t.Error("rebuild of an untouched container changed its bytes")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	valid := Build([][]byte{{1, 2, 3}})

	corrupt := func(mutate func(b []byte)) []byte {
		b := append([]byte(nil), valid...)
		mutate(b)
		return b
	}

	tests := []struct {
		name string
		blob []byte
	}{
		{"short blob", valid[:8]},
		{"bad magic", corrupt(func(b []byte) { b[0] = 'X' })},
		{"bad byte order", corrupt(func(b []byte) { b[4] = 0 })},
		{"wrong total size", corrupt(func(b []byte) { b[8] = 1 })},
		{"bad fat magic", corrupt(func(b []byte) { b[16] = 'X' })},
		{"truncated", valid[:len(valid)-2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.blob); err == nil {
				t.Error("Parse accepted a malformed container")
			}
		})
	}
}

func TestParseRejectsOutOfRangeEntry(t *testing.T) {
	blob := Build([][]byte{{1, 2, 3, 4}})
	// Push the buffer's end offset past the image section.
	blob[headerSize+fatHeaderSize+4] = 0xFF
	// Keep the header's total size honest so we hit the entry check.
	if _, err := Parse(blob); err == nil {
		t.Error("Parse accepted a buffer spanning outside the data section")
	}
}
