package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/aligator/ecsfs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <host-file> [name]",
		Short: "copy a file into the volume",
		Long: `Copy a file of the host into the volume.
		The file is stored under its base name unless a name is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := filepath.Base(args[0])
			if len(args) == 2 {
				name = args[1]
			}

			src, err := hostFs.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "cannot open source")
			}
			defer src.Close()

			return withVolume(func(vol *ecsfs.Volume) error {
				dst, err := ecsfs.NewFs(vol).OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0)
				if err != nil {
					return err
				}
				defer dst.Close()

				n, err := io.Copy(dst, src)
				if err != nil {
					return errors.Wrapf(err, "copied %d bytes of %s", n, args[0])
				}
				log.Infof("Added %s as %s, %d bytes", args[0], name, n)
				return nil
			})
		},
	}

	return cmd
}
