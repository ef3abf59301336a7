package cmd

import (
	"os"
	"path/filepath"

	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/util"
	"github.com/go-i2p/crypto/rand"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var (
		dir     string
		name    string
		force   bool
		profile dsa.Profile
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a DSA signing key and its public PEM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyPath := filepath.Join(dir, name+".key")
			pubPath := filepath.Join(dir, name+".pub.pem")
			if !force && util.CheckFileExists(keyPath) {
				return oops.Errorf("%s already exists, use --force to replace it", keyPath)
			}
			priv, err := dsa.GenerateKey(profile, rand.Reader)
			if err != nil {
				return err
			}
			privPEM, err := priv.MarshalPEM()
			if err != nil {
				return err
			}
			pubPEM, err := priv.Public().MarshalPEM()
			if err != nil {
				return err
			}
			if err := config.WritePrivateKey(keyPath, privPEM); err != nil {
				return err
			}
			if err := os.WriteFile(pubPath, pubPEM, config.PublicFileMode); err != nil {
				return oops.Wrapf(err, "writing %s", pubPath)
			}
			w := cmd.OutOrStdout()
			printField(w, "private key", keyPath)
			printField(w, "public key", pubPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	cmd.Flags().StringVar(&name, "name", "signing", "base name of the key files")
	cmd.Flags().BoolVar(&force, "force", false, "replace existing key files")
	cmd.Flags().IntVar(&profile.L, "l", dsa.Classic.L, "bit length of p")
	cmd.Flags().IntVar(&profile.N, "n", dsa.Classic.N, "bit length of q")
	return cmd
}
