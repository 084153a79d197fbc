// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package rom reads and rebuilds the game image. It understands just
// enough of the image format to do its job: the header fields that
// locate the file name table and file allocation table, the name
// table's directory tree (for resolving "/a/0/1/6"-style symbolic
// paths to file ids), and the allocation table itself.
//
// The whole image is held in memory. Reads hand out the stored file
// contents; replacements are kept per file id and only materialize on
// save, when the file data region is rebuilt contiguously, the
// allocation table rewritten, and the header's size and checksum
// fields updated. Everything before the file data region — the ARM
// binaries, the tables themselves — is carried through untouched.
//
// [Archive] adapts an image to the pipeline boundary: a container is
// a NARC file inside the image.
package rom
