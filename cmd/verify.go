package cmd

import (
	"crypto/sha1"
	"fmt"
	"os"

	"github.com/go-i2p/bootgate/lib/util"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var (
		sigPath   string
		sigFormat string
		key       string
		isDigest  bool
	)
	cmd := &cobra.Command{
		Use:   "verify IMAGE",
		Short: "Verify a detached DSA signature over an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cfg, err := loadGate()
			if err != nil {
				return err
			}
			table := g.Keys()
			idx, err := resolveKey(table, key)
			if err != nil {
				return err
			}
			rawSig, err := os.ReadFile(sigPath)
			if err != nil {
				return oops.Wrapf(err, "reading signature")
			}
			sig, err := toWire(rawSig, sigFormat, table.Profile().N)
			if err != nil {
				printVerdict(cmd.OutOrStdout(), args[0], err)
				return err
			}

			var digest []byte
			if isDigest {
				if digest, err = os.ReadFile(args[0]); err != nil {
					return oops.Wrapf(err, "reading digest")
				}
			} else {
				image, err := util.ReadFileLimited(args[0], cfg.MaxBundleContent)
				if err != nil {
					return err
				}
				sum := sha1.Sum(image)
				digest = sum[:]
			}

			err = g.VerifyDigest(digest, sig, idx)
			name, _ := table.Name(idx)
			printVerdict(cmd.OutOrStdout(), fmt.Sprintf("%s (key %d %s)", args[0], idx, name), err)
			return err
		},
	}
	cmd.Flags().StringVarP(&sigPath, "sig", "s", "", "signature file")
	cmd.Flags().StringVar(&sigFormat, "sig-format", sigWire, "signature encoding: wire, der or raw")
	cmd.Flags().StringVarP(&key, "key", "k", "0", "key index or name")
	cmd.Flags().BoolVar(&isDigest, "digest", false, "IMAGE holds a 20 byte SHA-1 digest instead of the image")
	cmd.MarkFlagRequired("sig")
	return cmd
}
