package main

import (
	"github.com/aligator/ecsfs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func formatCmd() *cobra.Command {
	var dataBlocks int
	cmd := &cobra.Command{
		Use:   "format <image>",
		Short: "create an empty volume image",
		Long: `Create an empty volume image with the given number of data blocks.
		An existing image is overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ecsfs.Format(hostFs, args[0], dataBlocks); err != nil {
				return errors.Wrapf(err, "cannot format %s", args[0])
			}
			log.Infof("Formatted %s with %d data blocks", args[0], dataBlocks)
			return nil
		},
	}
	cmd.Flags().IntVar(&dataBlocks, "data-blocks", 8192, "Number of data blocks, at most 65534")

	return cmd
}
