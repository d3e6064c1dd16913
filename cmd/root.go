package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hoard/internal/config"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/paths"
)

const defaultConfigPath = paths.ProjectDir + "/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	cfgErr     error
	debugFlag  bool
	jsonOutput bool

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "hoard",
	Short: "Catalog and identify the things you own",
	Long: `hoard keeps an indexed catalog of a personal collection: assets with
tags, lifecycle stages, external identifiers (serial numbers, barcodes,
ULIDs) and relationships between them.

The catalog document lives in .hoard/inventory.yaml by default and can be
stored as YAML, JSON, TOML or SQLite.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .hoard/config.yaml, then ~/.config/hoard/config.yaml)")
	rootCmd.PersistentFlags().StringP("path", "p", "",
		"path to the inventory document or the directory holding .hoard")
	rootCmd.PersistentFlags().String("backend", "",
		"document store backend: file or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by HOARD_DEBUG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"print results as JSON")

	// Bind flags to viper
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("path"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("HOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .hoard/config.yaml (current directory)
		// 2. ~/.config/hoard/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			viper.AddConfigPath(paths.ConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config anywhere: create the default next to the document.
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
		} else {
			cfgErr = fmt.Errorf("reading config: %w", err)
			return
		}
	}

	cfg, cfgErr = config.Load(viper.GetViper())
}

func setup(*cobra.Command, []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	if debugFlag || os.Getenv("HOARD_DEBUG") != "" {
		logPath := os.Getenv("HOARD_LOG")
		if logPath == "" {
			logPath = filepath.Join(paths.DataDir(), "debug.log")
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "hoard starting", "config", viper.ConfigFileUsed(), "document", cfg.DocumentPath())
	}
	return nil
}

// configFileUsed returns the config path commands should edit.
func configFileUsed() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return defaultConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
