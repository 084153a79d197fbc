// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package rom

import (
	"fmt"

	"github.com/monforge/monforge/lib/narc"
)

// Archive adapts an Image to the pipeline's container boundary. A
// container id is a file id inside the image; its buffers are the
// contents of the NARC stored there.
type Archive struct {
	Image *Image
}

// Resolve maps a symbolic container path to a file id.
func (a *Archive) Resolve(path string) (int, error) {
	return a.Image.Resolve(path)
}

// ReadContainer parses the NARC at the given file id into its
// ordered buffers.
func (a *Archive) ReadContainer(id int) ([][]byte, error) {
	blob, err := a.Image.ReadFile(id)
	if err != nil {
		return nil, err
	}
	buffers, err := narc.Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("file %d: %w", id, err)
	}
	return buffers, nil
}

// WriteContainer rebuilds the NARC from the buffers and replaces the
// file wholesale.
func (a *Archive) WriteContainer(id int, buffers [][]byte) error {
	return a.Image.ReplaceFile(id, narc.Build(buffers))
}
