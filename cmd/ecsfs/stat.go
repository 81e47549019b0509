package main

import (
	"fmt"

	"github.com/aligator/ecsfs"
	"github.com/spf13/cobra"
)

func statCmd() *cobra.Command {
	var chain bool
	cmd := &cobra.Command{
		Use:   "stat <name>",
		Short: "print the size of a file",
		Long: `Print the size of a file.
		Run with option --chain to also print its data blocks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(vol *ecsfs.Volume) error {
				id, err := vol.Open(args[0])
				if err != nil {
					return err
				}
				defer vol.Close(id)

				size, err := vol.Stat(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Size of file '%s' is %d bytes\n", args[0], size)

				if !chain {
					return nil
				}
				blocks, err := vol.Chain(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "data blocks: %v\n", blocks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&chain, "chain", false, "print the data blocks of the file")

	return cmd
}
