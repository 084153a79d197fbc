// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package rom

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Header layout constants. Offsets are format constants of the image
// header; the checksum covers everything before its own field.
const (
	headerLen       = 0x200
	titleOffset     = 0x00
	titleLen        = 12
	gameCodeOffset  = 0x0C
	gameCodeLen     = 4
	fntOffsetField  = 0x40
	fntSizeField    = 0x44
	fatOffsetField  = 0x48
	fatSizeField    = 0x4C
	usedSizeField   = 0x80
	headerCRCField  = 0x15E
	fatEntrySize    = 8
	fntMainEntryLen = 8
	rootDirID       = 0xF000

	// fileAlign is the alignment of each file in the rebuilt data
	// region. Padding bytes are 0xFF, matching flash-style padding
	// in shipped images.
	fileAlign = 0x200
)

// Image is a loaded game image: the raw bytes, the decoded directory
// tree, and any pending file replacements.
type Image struct {
	data     []byte
	files    [][]byte // extracted contents, indexed by file id
	paths    map[string]int
	names    map[int]string
	replaced map[int]bool
	order    []int // file ids sorted by original data offset
	// dataStart is where the file data region begins; everything
	// before it is preserved verbatim on rebuild.
	dataStart int
}

// Load reads an image from disk.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	img, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadBytes parses an in-memory image.
func LoadBytes(data []byte) (*Image, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("rom: %d bytes is shorter than the header", len(data))
	}
	img := &Image{
		data:     data,
		paths:    make(map[string]int),
		names:    make(map[int]string),
		replaced: make(map[int]bool),
	}

	fatOffset := int(binary.LittleEndian.Uint32(data[fatOffsetField:]))
	fatSize := int(binary.LittleEndian.Uint32(data[fatSizeField:]))
	if fatSize%fatEntrySize != 0 || fatOffset+fatSize > len(data) {
		return nil, fmt.Errorf("rom: allocation table [%#x, %#x) is malformed", fatOffset, fatOffset+fatSize)
	}
	count := fatSize / fatEntrySize

	img.files = make([][]byte, count)
	img.dataStart = len(data)
	type span struct{ id, start int }
	spans := make([]span, 0, count)
	for id := 0; id < count; id++ {
		entry := data[fatOffset+id*fatEntrySize:]
		start := int(binary.LittleEndian.Uint32(entry[0:4]))
		end := int(binary.LittleEndian.Uint32(entry[4:8]))
		if start > end || end > len(data) {
			return nil, fmt.Errorf("rom: file %d spans [%#x, %#x) outside the image", id, start, end)
		}
		img.files[id] = append([]byte(nil), data[start:end]...)
		spans = append(spans, span{id: id, start: start})
		if start > 0 && start < img.dataStart {
			img.dataStart = start
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	img.order = make([]int, count)
	for i, s := range spans {
		img.order[i] = s.id
	}

	if err := img.parseNameTable(); err != nil {
		return nil, err
	}
	return img, nil
}

// parseNameTable walks the directory tree and records the full
// symbolic path of every named file.
func (img *Image) parseNameTable() error {
	fntOffset := int(binary.LittleEndian.Uint32(img.data[fntOffsetField:]))
	fntSize := int(binary.LittleEndian.Uint32(img.data[fntSizeField:]))
	if fntOffset+fntSize > len(img.data) {
		return fmt.Errorf("rom: name table [%#x, %#x) is outside the image", fntOffset, fntOffset+fntSize)
	}
	fnt := img.data[fntOffset : fntOffset+fntSize]
	if len(fnt) < fntMainEntryLen {
		return fmt.Errorf("rom: name table is %d bytes, too short for the root entry", len(fnt))
	}
	var walk func(dirID int, prefix string) error
	walk = func(dirID int, prefix string) error {
		entry := (dirID - rootDirID) * fntMainEntryLen
		if entry < 0 || entry+fntMainEntryLen > len(fnt) {
			return fmt.Errorf("rom: directory %#x has no main table entry", dirID)
		}
		offset := int(binary.LittleEndian.Uint32(fnt[entry:]))
		fileID := int(binary.LittleEndian.Uint16(fnt[entry+4:]))
		for {
			if offset >= len(fnt) {
				return fmt.Errorf("rom: name sub-table of %s runs off the table", prefix)
			}
			length := int(fnt[offset])
			offset++
			if length == 0 {
				return nil
			}
			nameLen := length & 0x7F
			if offset+nameLen > len(fnt) {
				return fmt.Errorf("rom: truncated name in %s", prefix)
			}
			name := string(fnt[offset : offset+nameLen])
			offset += nameLen
			if length < 0x80 {
				if fileID >= len(img.files) {
					return fmt.Errorf("rom: %s/%s names file %d beyond the allocation table", prefix, name, fileID)
				}
				img.paths[prefix+"/"+name] = fileID
				img.names[fileID] = prefix + "/" + name
				fileID++
				continue
			}
			if offset+2 > len(fnt) {
				return fmt.Errorf("rom: truncated directory id in %s", prefix)
			}
			child := int(binary.LittleEndian.Uint16(fnt[offset:]))
			offset += 2
			if err := walk(child, prefix+"/"+name); err != nil {
				return err
			}
		}
	}
	return walk(rootDirID, "")
}

// Title returns the image title, trimmed of zero padding.
func (img *Image) Title() string {
	return strings.TrimRight(string(img.data[titleOffset:titleOffset+titleLen]), "\x00")
}

// GameCode returns the four-character game code.
func (img *Image) GameCode() string {
	return string(img.data[gameCodeOffset : gameCodeOffset+gameCodeLen])
}

// FileCount returns the number of allocation table entries.
func (img *Image) FileCount() int { return len(img.files) }

// Resolve maps a symbolic path like "/a/0/1/6" to its file id.
func (img *Image) Resolve(path string) (int, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	id, ok := img.paths[path]
	if !ok {
		return 0, fmt.Errorf("rom: no file at %q", path)
	}
	return id, nil
}

// ReadFile returns the contents of a file by id. The returned slice
// is the stored content; callers must not mutate it.
func (img *Image) ReadFile(id int) ([]byte, error) {
	if id < 0 || id >= len(img.files) {
		return nil, fmt.Errorf("rom: file id %d out of range [0, %d)", id, len(img.files))
	}
	return img.files[id], nil
}

// ReplaceFile substitutes a file's contents. The image bytes are
// untouched until Bytes or Save rebuilds them.
func (img *Image) ReplaceFile(id int, contents []byte) error {
	if id < 0 || id >= len(img.files) {
		return fmt.Errorf("rom: file id %d out of range [0, %d)", id, len(img.files))
	}
	img.files[id] = contents
	img.replaced[id] = true
	return nil
}

// Replaced returns the ids of files substituted since load, in id
// order. The run report uses it to record what a run actually
// touched.
func (img *Image) Replaced() []int {
	ids := make([]int, 0, len(img.replaced))
	for id := range img.replaced {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// PathOf returns the symbolic path of a file id, if it has one.
func (img *Image) PathOf(id int) (string, bool) {
	path, ok := img.names[id]
	return path, ok
}

// Bytes rebuilds the image: the preamble (header, binaries, tables)
// verbatim, then every file laid out contiguously in its original
// order, with the allocation table, header size, and header checksum
// updated to match.
func (img *Image) Bytes() ([]byte, error) {
	out := append([]byte(nil), img.data[:img.dataStart]...)

	fatOffset := int(binary.LittleEndian.Uint32(out[fatOffsetField:]))
	for _, id := range img.order {
		contents := img.files[id]
		for len(out)%fileAlign != 0 {
			out = append(out, 0xFF)
		}
		entry := out[fatOffset+id*fatEntrySize:]
		binary.LittleEndian.PutUint32(entry[0:4], uint32(len(out)))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(out)+len(contents)))
		out = append(out, contents...)
	}

	binary.LittleEndian.PutUint32(out[usedSizeField:], uint32(len(out)))
	binary.LittleEndian.PutUint16(out[headerCRCField:], crc16(out[:headerCRCField]))
	return out, nil
}

// Save rebuilds the image and writes it to disk.
func (img *Image) Save(path string) error {
	data, err := img.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// crc16 is the image header checksum: CRC-16 with the reflected
// polynomial 0xA001 and initial value 0xFFFF.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for bit := 0; bit < 8; bit++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
