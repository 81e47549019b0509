package main

import (
	"io"

	"github.com/aligator/ecsfs"
	"github.com/spf13/cobra"
)

func catCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <name>",
		Short: "print a file of the volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(vol *ecsfs.Volume) error {
				f, err := ecsfs.NewFs(vol).Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				_, err = io.Copy(cmd.OutOrStdout(), f)
				return err
			})
		},
	}

	return cmd
}
