// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/monforge/monforge/cmd/monforge/cli"
	"github.com/monforge/monforge/lib/narc"
	"github.com/monforge/monforge/lib/rom"
	"github.com/monforge/monforge/lib/snapshot"
)

// DumpCommand returns the "monforge dump" command.
func DumpCommand() *cli.Command {
	var containerPath string

	return &cli.Command{
		Name:    "dump",
		Summary: "Show an image's identity and file table",
		Description: `Show an image's identity and file table.

With --container, parse the NARC at the given path instead and list
its buffers with sizes and hashes.`,
		Usage: "monforge dump <image> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			flags.StringVar(&containerPath, "container", "", "container path to list (e.g. /a/0/9/2)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one image path, got %d arguments", len(args))
			}
			if containerPath != "" {
				return dumpContainer(args[0], containerPath)
			}
			return dumpImage(args[0])
		},
	}
}

func dumpImage(imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}
	img, err := rom.LoadBytes(data)
	if err != nil {
		return fmt.Errorf("loading %s: %w", imagePath, err)
	}

	fmt.Printf("title:     %s\n", img.Title())
	fmt.Printf("game code: %s\n", img.GameCode())
	fmt.Printf("files:     %d\n", img.FileCount())
	fmt.Printf("hash:      %s\n", snapshot.HashImage(data))

	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "\nID\tSIZE\tPATH\n")
	for id := 0; id < img.FileCount(); id++ {
		path, ok := img.PathOf(id)
		if !ok {
			path = "(unnamed)"
		}
		contents, err := img.ReadFile(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\n", id, len(contents), path)
	}
	return tw.Flush()
}

func dumpContainer(imagePath, containerPath string) error {
	img, err := rom.Load(imagePath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", imagePath, err)
	}
	id, err := img.Resolve(containerPath)
	if err != nil {
		return err
	}
	blob, err := img.ReadFile(id)
	if err != nil {
		return err
	}
	buffers, err := narc.Parse(blob)
	if err != nil {
		return fmt.Errorf("%s: %w", containerPath, err)
	}

	fmt.Printf("container: %s (file %d, %d buffers)\n\n", containerPath, id, len(buffers))
	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "INDEX\tSIZE\tHASH\n")
	for i, buffer := range buffers {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", i, len(buffer), snapshot.HashContainer(buffer).Short())
	}
	return tw.Flush()
}
