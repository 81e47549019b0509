package main

import (
	"github.com/aligator/ecsfs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name>...",
		Short: "delete files from the volume",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(vol *ecsfs.Volume) error {
				for _, name := range args {
					if err := vol.Delete(name); err != nil {
						return err
					}
					log.Infof("Removed %s", name)
				}
				return nil
			})
		},
	}

	return cmd
}
