// Package cmd implements the bootgate command line.
package cmd

import (
	"os"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/gate"
	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
)

var log = logger.GetGoI2PLogger()

// Table paths from the persistent flags. They are kept out of viper so a
// relative path means the working directory, not the bootgate directory.
var (
	keyTableFlag    string
	moduleTableFlag string
)

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bootgate",
		Short: "Verify boot images and gate loadable modules",
		Long: `bootgate checks DSA/SHA-1 signatures on boot images against a table of
trusted keys and admits loadable modules only when their SHA-1 digest is in a
table of known-good hashes. It also builds those tables and signs images.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&config.CfgFile, "config", "", "config file (default is $HOME/.bootgate/config.yaml)")
	flags.StringVar(&keyTableFlag, "key-table", "", "key table file (.pem, .words, .yaml); overrides keys.table")
	flags.StringVar(&moduleTableFlag, "module-table", "", "module hash table (.sha1, .hex, .txt, .bin); overrides modhash.table")

	root.AddCommand(
		newVerifyCmd(),
		newCheckCmd(),
		newSignCmd(),
		newKeygenCmd(),
		newKeyTableCmd(),
		newHashTableCmd(),
		newBundleCmd(),
		newInitCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadGate builds a gate from the current configuration.
func loadGate() (*gate.Gate, *config.GateConfig, error) {
	cfg, err := config.NewGateConfigFromViper()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.OverrideTables(keyTableFlag, moduleTableFlag); err != nil {
		return nil, nil, err
	}
	g, err := gate.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return g, cfg, nil
}
