package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/keys"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newKeyTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keytable",
		Short: "Inspect and build signing key tables",
	}
	cmd.AddCommand(newKeyTableShowCmd(), newKeyTableBuildCmd())
	return cmd
}

func newKeyTableShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the keys of the configured key table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cfg, err := loadGate()
			if err != nil {
				return err
			}
			table := g.Keys()
			w := cmd.OutOrStdout()
			printTitle(w, "key table")
			printField(w, "source", sourceName(cfg.KeyTable))
			printField(w, "profile", fmt.Sprintf("L=%d N=%d", table.Profile().L, table.Profile().N))
			printField(w, "sig size", table.SignatureSize())
			for i, e := range table.Entries() {
				printField(w, fmt.Sprintf("[%d] %s", i, e.Name), fmt.Sprintf("q=%x", e.Key.Q))
			}
			return nil
		},
	}
}

func newKeyTableBuildCmd() *cobra.Command {
	var profile dsa.Profile
	cmd := &cobra.Command{
		Use:   "build OUT INPUT...",
		Short: "Build a key table from PEM keys or convert an existing table",
		Long: `Each INPUT is either a PEM public key, named after its file ("0-rootfs.pem"
and "rootfs.pub.pem" both become "rootfs"), or a single key table file in any
supported format. The output format follows the extension of OUT.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, inputs := args[0], args[1:]
			format, err := keys.FormatFor(out)
			if err != nil {
				return err
			}
			table, err := buildKeyTable(inputs, profile)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := table.Write(&buf, format); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), config.PublicFileMode); err != nil {
				return oops.Wrapf(err, "writing %s", out)
			}
			printField(cmd.OutOrStdout(), "key table", fmt.Sprintf("%s (%d keys, %s)", out, table.Len(), format))
			return nil
		},
	}
	cmd.Flags().IntVar(&profile.L, "l", 0, "required bit length of p (0 takes it from the first key)")
	cmd.Flags().IntVar(&profile.N, "n", 0, "required bit length of q (0 takes it from the first key)")
	return cmd
}

func buildKeyTable(inputs []string, profile dsa.Profile) (*keys.Table, error) {
	if len(inputs) == 1 {
		if format, err := keys.FormatFor(inputs[0]); err == nil && format != keys.FormatPEM {
			return keys.Open(inputs[0], profile)
		}
	}
	sources := make([]keys.PEMSource, len(inputs))
	for i, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, oops.Wrapf(err, "reading %s", path)
		}
		sources[i] = keys.PEMSource{Name: keyNameFromFile(path), Data: data}
	}
	return keys.FromPEM(profile, sources...)
}

// keyNameFromFile strips directories, extensions and an "N-" index prefix.
func keyNameFromFile(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if prefix, rest, ok := strings.Cut(name, "-"); ok && rest != "" && strings.Trim(prefix, "0123456789") == "" {
		name = rest
	}
	return name
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
