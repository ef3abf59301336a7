package cmd

import (
	"github.com/go-i2p/bootgate/lib/util"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check MODULE...",
		Short: "Check modules against the integrity hash table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cfg, err := loadGate()
			if err != nil {
				return err
			}
			rejected := 0
			for _, path := range args {
				// One byte over the limit is enough for the gate to refuse it.
				blob, err := util.ReadFileLimited(path, int64(cfg.MaxModuleSize)+1)
				if err == nil {
					err = g.LoadModule(blob)
				}
				printVerdict(cmd.OutOrStdout(), path, err)
				if err != nil {
					rejected++
				}
			}
			if rejected > 0 {
				return oops.Errorf("%d of %d modules rejected", rejected, len(args))
			}
			return nil
		},
	}
}
