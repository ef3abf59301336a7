package cmd

import (
	"os"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newSignCmd() *cobra.Command {
	var (
		keyFile   string
		out       string
		sigFormat string
		isDigest  bool
	)
	cmd := &cobra.Command{
		Use:   "sign IMAGE",
		Short: "Sign an image with a DSA private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := loadSigner(keyFile)
			if err != nil {
				return err
			}
			signer, err := priv.NewSigner()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.Wrapf(err, "reading %s", args[0])
			}
			var wire []byte
			if isDigest {
				wire, err = signer.SignHash(data)
			} else {
				wire, err = signer.Sign(data)
			}
			if err != nil {
				return err
			}
			encoded, err := fromWire(wire, sigFormat, (priv.Q.BitLen()+7)/8*8)
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".sig"
			}
			if err := os.WriteFile(out, encoded, config.PublicFileMode); err != nil {
				return oops.Wrapf(err, "writing signature")
			}
			printField(cmd.OutOrStdout(), "signature", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "PEM private key (PKCS#8 or legacy DSA)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "signature output (default IMAGE.sig)")
	cmd.Flags().StringVar(&sigFormat, "sig-format", sigWire, "signature encoding: wire, der or raw")
	cmd.Flags().BoolVar(&isDigest, "digest", false, "IMAGE holds a 20 byte SHA-1 digest instead of the image")
	cmd.MarkFlagRequired("key-file")
	return cmd
}
