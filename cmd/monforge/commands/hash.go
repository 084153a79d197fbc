// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/monforge/monforge/cmd/monforge/cli"
	"github.com/monforge/monforge/lib/snapshot"
)

// HashCommand returns the "monforge hash" command.
func HashCommand() *cli.Command {
	return &cli.Command{
		Name:    "hash",
		Summary: "Print the identity hash of one or more image files",
		Description: `Print the identity hash of one or more image files.

The hash is the same image-domain hash recorded in snapshots and
reports, so the output can be compared directly against either.`,
		Usage: "monforge hash <image> [<image> ...]",
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one image path")
			}
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", snapshot.HashImage(data), path)
			}
			return nil
		},
	}
}
