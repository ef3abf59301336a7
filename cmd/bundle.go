package cmd

import (
	"fmt"
	"os"

	"github.com/go-i2p/bootgate/lib/bundle"
	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/util"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Create and verify signed image bundles",
	}
	cmd.AddCommand(newBundleCreateCmd(), newBundleVerifyCmd())
	return cmd
}

func newBundleCreateCmd() *cobra.Command {
	var (
		keyFile     string
		keyIndex    int
		contentType string
		version     string
		out         string
	)
	cmd := &cobra.Command{
		Use:   "create IMAGE",
		Short: "Wrap an image and its signature into a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := bundle.ParseContentType(contentType)
			if err != nil {
				return oops.Wrapf(err, "content type %q", contentType)
			}
			priv, err := loadSigner(keyFile)
			if err != nil {
				return err
			}
			signer, err := priv.NewSigner()
			if err != nil {
				return err
			}
			content, err := util.ReadFileLimited(args[0], viper.GetInt64(config.KeyBundleMaxContentSize))
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".bgimg"
			}
			f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, config.PublicFileMode)
			if err != nil {
				return oops.Wrapf(err, "creating %s", out)
			}
			hdr := bundle.Header{ContentType: ct, KeyIndex: keyIndex, Version: version}
			if err := bundle.Write(f, hdr, content, signer); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return oops.Wrapf(err, "closing %s", out)
			}
			printField(cmd.OutOrStdout(), "bundle", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "PEM private key")
	cmd.Flags().IntVarP(&keyIndex, "index", "i", 0, "key table index the device will verify with")
	cmd.Flags().StringVarP(&contentType, "type", "t", "blob", "content type: kernel, rootfs, module or blob")
	cmd.Flags().StringVar(&version, "version", "", "version string stored in the header")
	cmd.Flags().StringVarP(&out, "out", "o", "", "bundle output (default IMAGE.bgimg)")
	cmd.MarkFlagRequired("key-file")
	cmd.MarkFlagRequired("version")
	return cmd
}

func newBundleVerifyCmd() *cobra.Command {
	var extract string
	cmd := &cobra.Command{
		Use:   "verify BUNDLE",
		Short: "Verify a bundle and optionally extract its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loadGate()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return oops.Wrapf(err, "opening %s", args[0])
			}
			defer f.Close()

			b, content, err := g.VerifyBundle(f)
			w := cmd.OutOrStdout()
			if b != nil {
				printField(w, "type", b.ContentType)
				printField(w, "version", b.Version)
				printField(w, "key index", b.KeyIndex)
				printField(w, "content", fmt.Sprintf("%d bytes", b.ContentLength))
			}
			printVerdict(w, args[0], err)
			if err != nil {
				return err
			}
			if extract != "" {
				if err := os.WriteFile(extract, content, config.PublicFileMode); err != nil {
					return oops.Wrapf(err, "writing %s", extract)
				}
				printField(w, "extracted", extract)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&extract, "extract", "x", "", "write the verified content to this file")
	return cmd
}
