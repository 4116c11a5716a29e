package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

// appConfig is the resolved runtime configuration. Values come from flags,
// environment variables (CADENZA_ prefix), a .env file and an optional
// config file, in that order of precedence.
type appConfig struct {
	PlexURL     string
	PlexToken   string
	PlexSection string
	HTTPAddr    string
	DBPath      string
	Verbose     bool
}

func newRootCommand() *cobra.Command {
	var cfgFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "cadenza",
		Short:         "Playlist candidate engine for a Plex music library",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.cadenza/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newPresetCommand())

	return rootCmd
}

func initConfig(cfgFile string) error {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		viper.AddConfigPath(home + "/.cadenza")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("cadenza")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("db.path", "cadenza.db")
	viper.SetDefault("plex.section", "")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	return nil
}

func loadConfig() (appConfig, error) {
	cfg := appConfig{
		PlexURL:     viper.GetString("plex.url"),
		PlexToken:   viper.GetString("plex.token"),
		PlexSection: viper.GetString("plex.section"),
		HTTPAddr:    viper.GetString("http.addr"),
		DBPath:      viper.GetString("db.path"),
		Verbose:     viper.GetBool("verbose"),
	}
	if cfg.PlexURL == "" {
		return cfg, fmt.Errorf("plex.url is required (CADENZA_PLEX_URL)")
	}
	if cfg.PlexToken == "" {
		return cfg, fmt.Errorf("plex.token is required (CADENZA_PLEX_TOKEN)")
	}
	if cfg.PlexSection == "" {
		return cfg, fmt.Errorf("plex.section is required (CADENZA_PLEX_SECTION)")
	}
	return cfg, nil
}

func newLogger(cfg appConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
