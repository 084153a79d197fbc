// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package narc reads and writes NARC containers, the multi-buffer
// archive format the game stores structured data in. A container is
// an ordered list of opaque byte buffers; everything above this
// package treats it as exactly that.
//
// The format is three sections behind a 16-byte header: BTAF (the
// allocation table: start/end offset per buffer), BTNF (the name
// table — game data containers are nameless, so it is the fixed
// 8-byte placeholder), and GMIF (the buffer bytes, each aligned to 4).
package narc

import (
	"encoding/binary"
	"fmt"
)

// Section and header layout constants. These are format constants —
// changing any of them breaks compatibility with the game's files.
const (
	headerSize     = 16
	byteOrderMark  = 0xFFFE
	formatVersion  = 0x0100
	sectionCount   = 3
	fatEntrySize   = 8
	fatHeaderSize  = 12
	fntHeaderSize  = 8
	imgHeaderSize  = 8
	bufferAlign    = 4
	namelessFNTLen = 8
)

var (
	magicNARC = [4]byte{'N', 'A', 'R', 'C'}
	magicBTAF = [4]byte{'B', 'T', 'A', 'F'}
	magicBTNF = [4]byte{'B', 'T', 'N', 'F'}
	magicGMIF = [4]byte{'G', 'M', 'I', 'F'}
)

// namelessFNT is the placeholder name table every game data container
// carries: one root directory, first file id 0, no names.
var namelessFNT = [namelessFNTLen]byte{0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00}

// Parse splits a container blob into its ordered buffers. The input
// must be a complete well-formed container; a truncated or misordered
// one is a fatal data error, never a partial result.
func Parse(blob []byte) ([][]byte, error) {
	if len(blob) < headerSize {
		return nil, fmt.Errorf("narc: %d bytes is shorter than the header", len(blob))
	}
	if [4]byte(blob[0:4]) != magicNARC {
		return nil, fmt.Errorf("narc: bad magic %q", blob[0:4])
	}
	if bom := binary.LittleEndian.Uint16(blob[4:6]); bom != byteOrderMark {
		return nil, fmt.Errorf("narc: byte order mark %#04x, want %#04x", bom, byteOrderMark)
	}
	if total := binary.LittleEndian.Uint32(blob[8:12]); int(total) != len(blob) {
		return nil, fmt.Errorf("narc: header claims %d bytes, blob is %d", total, len(blob))
	}

	// BTAF: buffer count and offsets.
	fat := blob[headerSize:]
	if len(fat) < fatHeaderSize {
		return nil, fmt.Errorf("narc: truncated allocation table header")
	}
	if [4]byte(fat[0:4]) != magicBTAF {
		return nil, fmt.Errorf("narc: allocation table magic %q", fat[0:4])
	}
	fatSize := binary.LittleEndian.Uint32(fat[4:8])
	count := int(binary.LittleEndian.Uint16(fat[8:10]))
	if int(fatSize) != fatHeaderSize+count*fatEntrySize {
		return nil, fmt.Errorf("narc: allocation table size %d does not match %d entries", fatSize, count)
	}
	if len(fat) < int(fatSize) {
		return nil, fmt.Errorf("narc: truncated allocation table")
	}

	// BTNF: skipped — game data containers are nameless, and buffer
	// order alone is the contract.
	fnt := fat[fatSize:]
	if len(fnt) < fntHeaderSize {
		return nil, fmt.Errorf("narc: truncated name table header")
	}
	if [4]byte(fnt[0:4]) != magicBTNF {
		return nil, fmt.Errorf("narc: name table magic %q", fnt[0:4])
	}
	fntSize := binary.LittleEndian.Uint32(fnt[4:8])
	if len(fnt) < int(fntSize) {
		return nil, fmt.Errorf("narc: truncated name table")
	}

	// GMIF: buffer bytes, addressed by BTAF offsets relative to the
	// start of the section's data.
	img := fnt[fntSize:]
	if len(img) < imgHeaderSize {
		return nil, fmt.Errorf("narc: truncated image section header")
	}
	if [4]byte(img[0:4]) != magicGMIF {
		return nil, fmt.Errorf("narc: image section magic %q", img[0:4])
	}
	data := img[imgHeaderSize:]

	buffers := make([][]byte, count)
	for i := 0; i < count; i++ {
		entry := fat[fatHeaderSize+i*fatEntrySize:]
		start := binary.LittleEndian.Uint32(entry[0:4])
		end := binary.LittleEndian.Uint32(entry[4:8])
		if start > end || int(end) > len(data) {
			return nil, fmt.Errorf("narc: buffer %d spans [%d, %d) outside %d data bytes", i, start, end, len(data))
		}
		buffers[i] = append([]byte(nil), data[start:end]...)
	}
	return buffers, nil
}

// Build packs ordered buffers into a container blob. Each buffer is
// 4-byte aligned in the image section; the alignment padding is not
// part of any buffer and reads back as absent, so Build∘Parse is the
// identity on blobs Build produced.
func Build(buffers [][]byte) []byte {
	count := len(buffers)
	fatSize := fatHeaderSize + count*fatEntrySize
	fntSize := fntHeaderSize + namelessFNTLen

	dataSize := 0
	for _, b := range buffers {
		dataSize += aligned(len(b))
	}
	// The final buffer needs no alignment tail.
	if count > 0 {
		dataSize -= aligned(len(buffers[count-1])) - len(buffers[count-1])
	}
	imgSize := imgHeaderSize + dataSize
	total := headerSize + fatSize + fntSize + imgSize

	blob := make([]byte, 0, total)
	blob = append(blob, magicNARC[:]...)
	blob = binary.LittleEndian.AppendUint16(blob, byteOrderMark)
	blob = binary.LittleEndian.AppendUint16(blob, formatVersion)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(total))
	blob = binary.LittleEndian.AppendUint16(blob, headerSize)
	blob = binary.LittleEndian.AppendUint16(blob, sectionCount)

	blob = append(blob, magicBTAF[:]...)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(fatSize))
	blob = binary.LittleEndian.AppendUint16(blob, uint16(count))
	blob = binary.LittleEndian.AppendUint16(blob, 0)
	offset := 0
	for i, b := range buffers {
		blob = binary.LittleEndian.AppendUint32(blob, uint32(offset))
		blob = binary.LittleEndian.AppendUint32(blob, uint32(offset+len(b)))
		if i < count-1 {
			offset += aligned(len(b))
		}
	}

	blob = append(blob, magicBTNF[:]...)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(fntSize))
	blob = append(blob, namelessFNT[:]...)

	blob = append(blob, magicGMIF[:]...)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(imgSize))
	for i, b := range buffers {
		blob = append(blob, b...)
		if i < count-1 {
			for pad := len(b); pad%bufferAlign != 0; pad++ {
				blob = append(blob, 0xFF)
			}
		}
	}
	return blob
}

// aligned rounds n up to the buffer alignment.
func aligned(n int) int {
	return (n + bufferAlign - 1) &^ (bufferAlign - 1)
}
