package cmd

import (
	"os"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/embedded"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the embedded keys and module table to disk for editing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = config.BuildDirPath()
			}
			if err := os.MkdirAll(dir, config.PublicDirMode); err != nil {
				return oops.Wrapf(err, "creating %s", dir)
			}
			log.WithFields(logger.Fields{"at": "init", "dir": dir}).Debug("Extracting embedded assets")
			if err := embedded.Extract(dir); err != nil {
				return err
			}
			printField(cmd.OutOrStdout(), "assets", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "destination (default $HOME/.bootgate)")
	return cmd
}
