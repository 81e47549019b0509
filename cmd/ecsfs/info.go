package main

import (
	"fmt"

	"github.com/aligator/ecsfs"
	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "print the geometry and free space of the volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(vol *ecsfs.Volume) error {
				info, err := vol.Info()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), info.String())
				return nil
			})
		},
	}

	return cmd
}
