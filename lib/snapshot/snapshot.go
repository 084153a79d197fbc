// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the algorithm a snapshot's payload was
// compressed with. Stored as one byte in the snapshot header; the
// values are format constants.
type CompressionTag uint8

const (
	// CompressionNone stores the payload raw. Chosen automatically
	// when compression does not actually shrink the image.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is the fast default: images are hundreds of
	// megabytes and mostly already-packed binary data.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd trades CPU for ratio; worthwhile for archival
	// snapshot directories.
	CompressionZstd CompressionTag = 2
)

// String returns the tag's name.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseCompressionTag parses a tag name as written in config files
// and flags.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag %q", name)
	}
}

// Snapshot file layout: 8-byte magic, 1-byte compression tag, 7 bytes
// reserved (keeps the 8-byte fields aligned), 8-byte raw size, 32-byte
// image-domain hash of the raw payload, then the payload.
const (
	snapshotVersion    = 1
	snapshotHeaderSize = 8 + 1 + 7 + 8 + 32
)

var snapshotMagic = [8]byte{'M', 'F', 'S', 'N', 'A', 'P', snapshotVersion, 0}

// errIncompressible reports that compression produced output no
// smaller than the input.
var errIncompressible = errors.New("data is incompressible")

// Reused across calls; both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

// Info describes a written or read snapshot.
type Info struct {
	// Hash is the image-domain hash of the raw payload.
	Hash Hash

	// RawSize is the uncompressed payload length.
	RawSize int64

	// CompressedSize is the stored payload length.
	CompressedSize int64

	// Compression is the algorithm actually used. May be
	// CompressionNone even when another tag was requested, if the
	// payload did not shrink.
	Compression CompressionTag
}

// Write stores data as a snapshot file at path. The requested tag is
// a preference: incompressible payloads fall back to raw storage.
func Write(path string, data []byte, tag CompressionTag) (*Info, error) {
	payload, err := compress(data, tag)
	if err != nil {
		if !errors.Is(err, errIncompressible) {
			return nil, err
		}
		payload, tag = data, CompressionNone
	}

	info := &Info{
		Hash:           HashImage(data),
		RawSize:        int64(len(data)),
		CompressedSize: int64(len(payload)),
		Compression:    tag,
	}

	header := make([]byte, 0, snapshotHeaderSize)
	header = append(header, snapshotMagic[:]...)
	header = append(header, byte(tag), 0, 0, 0, 0, 0, 0, 0)
	header = binary.LittleEndian.AppendUint64(header, uint64(len(data)))
	header = append(header, info.Hash[:]...)

	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}
	return info, nil
}

// Read loads a snapshot and verifies the payload hash. A hash
// mismatch is corruption, reported as an error rather than returned
// as silently wrong bytes.
func Read(path string) ([]byte, *Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if len(raw) < snapshotHeaderSize {
		return nil, nil, fmt.Errorf("snapshot %s: %d bytes is shorter than the header", path, len(raw))
	}
	if [8]byte(raw[0:8]) != snapshotMagic {
		return nil, nil, fmt.Errorf("snapshot %s: bad magic %q", path, raw[0:8])
	}
	tag := CompressionTag(raw[8])
	rawSize := binary.LittleEndian.Uint64(raw[16:24])
	var want Hash
	copy(want[:], raw[24:56])
	payload := raw[snapshotHeaderSize:]

	data, err := decompress(payload, tag, int(rawSize))
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if got := HashImage(data); got != want {
		return nil, nil, fmt.Errorf("snapshot %s: payload hash %s does not match recorded %s", path, got.Short(), want.Short())
	}
	return data, &Info{
		Hash:           want,
		RawSize:        int64(rawSize),
		CompressedSize: int64(len(payload)),
		Compression:    tag,
	}, nil
}

func compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag %d", tag)
	}
}

func decompress(payload []byte, tag CompressionTag, rawSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(payload) != rawSize {
			return nil, fmt.Errorf("raw payload is %d bytes, header claims %d", len(payload), rawSize)
		}
		return payload, nil
	case CompressionLZ4:
		destination := make([]byte, rawSize)
		read, err := lz4.UncompressBlock(payload, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != rawSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, rawSize)
		}
		return destination, nil
	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != rawSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), rawSize)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag %d", tag)
	}
}
