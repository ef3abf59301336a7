package config

import (
	"os"
	"path/filepath"

	"github.com/go-i2p/bootgate/lib/util"
	"github.com/go-i2p/logger"
	"github.com/spf13/viper"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const BOOTGATE_BASE_DIR = ".bootgate"

// Viper keys.
const (
	KeyKeysTable            = "keys.table"
	KeyKeysProfileL         = "keys.profile.l"
	KeyKeysProfileN         = "keys.profile.n"
	KeyModHashTable         = "modhash.table"
	KeyModHashMaxModuleSize = "modhash.max_module_size"
	KeyBundleMaxContentSize = "bundle.max_content_size"
)

func InitConfig() {
	if CfgFile != "" {
		viper.SetConfigFile(CfgFile)
	} else {
		// $HOME/.bootgate/config.yaml
		viper.AddConfigPath(BuildDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	handleConfigFile()
}

func setDefaults() {
	d := Defaults()
	viper.SetDefault(KeyKeysTable, d.Keys.Table)
	viper.SetDefault(KeyKeysProfileL, d.Keys.Profile.L)
	viper.SetDefault(KeyKeysProfileN, d.Keys.Profile.N)
	viper.SetDefault(KeyModHashTable, d.ModHash.Table)
	viper.SetDefault(KeyModHashMaxModuleSize, d.ModHash.MaxModuleSize)
	viper.SetDefault(KeyBundleMaxContentSize, d.Bundle.MaxContentSize)
}

func createDefaultConfig(defaultConfigDir string) {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	if err := os.MkdirAll(defaultConfigDir, PublicDirMode); err != nil {
		log.Fatalf("Could not create config directory: %s", err)
	}

	if err := viper.SafeWriteConfigAs(defaultConfigFile); err != nil {
		log.Fatalf("Could not write default config file: %s", err)
	}

	log.Debugf("Created default configuration at: %s", defaultConfigFile)
}

func handleConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if CfgFile != "" {
				log.Fatalf("Config file %s is not found: %s", CfgFile, err)
			} else {
				createDefaultConfig(BuildDirPath())
			}
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// BuildDirPath returns $HOME/.bootgate.
func BuildDirPath() string {
	return filepath.Join(util.UserHome(), BOOTGATE_BASE_DIR)
}
