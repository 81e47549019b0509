package main

import (
	"fmt"

	"github.com/aligator/ecsfs"
	"github.com/spf13/cobra"
)

func lsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "list the files of the volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(vol *ecsfs.Volume) error {
				files, err := vol.List()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "FS Ls:")
				for _, file := range files {
					entry, err := vol.Lookup(file.Name)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "file: %s, size: %d, data_blk: %d\n", file.Name, file.Size, entry.FirstBlock)
				}
				return nil
			})
		},
	}

	return cmd
}
