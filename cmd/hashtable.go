package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/modhash"
	"github.com/go-i2p/bootgate/lib/util"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newHashTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashtable",
		Short: "Inspect and build module hash tables",
	}
	cmd.AddCommand(newHashTableShowCmd(), newHashTableBuildCmd())
	return cmd
}

func newHashTableShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the digests of the configured module table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cfg, err := loadGate()
			if err != nil {
				return err
			}
			table := g.Modules().Table()
			w := cmd.OutOrStdout()
			printTitle(w, "module table")
			printField(w, "source", sourceName(cfg.ModuleTable))
			printField(w, "entries", table.Len())
			printField(w, "max size", cfg.MaxModuleSize)
			for _, d := range table.Entries() {
				fmt.Fprintln(w, d.String())
			}
			return nil
		},
	}
}

func newHashTableBuildCmd() *cobra.Command {
	var maxSize int64
	cmd := &cobra.Command{
		Use:   "build OUT MODULE...",
		Short: "Hash modules into a sorted table",
		Long: `Hashes every MODULE with SHA-1 and writes the sorted, deduplicated table
to OUT. The extension of OUT picks the format: .bin for raw digests, .sha1,
.hex or .txt for one hex digest per line.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, modules := args[0], args[1:]
			format, err := modhash.FormatFor(out)
			if err != nil {
				return err
			}
			engine := modhash.NewEngine()
			digests := make([]modhash.Digest, 0, len(modules))
			for _, path := range modules {
				blob, err := util.ReadFileLimited(path, maxSize)
				if err != nil {
					return err
				}
				digests = append(digests, engine.Sum(blob))
			}
			table := modhash.BuildTable(digests)
			var buf bytes.Buffer
			if err := table.Write(&buf, format); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), config.PublicFileMode); err != nil {
				return oops.Wrapf(err, "writing %s", out)
			}
			printField(cmd.OutOrStdout(), "module table", fmt.Sprintf("%s (%d entries)", out, table.Len()))
			return nil
		},
	}
	cmd.Flags().Int64Var(&maxSize, "max-size", modhash.DefaultMaxModuleSize, "largest module accepted, bytes")
	return cmd
}
