package cmd

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/config"
)

//go:embed emgapi.yaml
var configText string

var (
	Version = "0.1.0"
	Build   = "n/a"

	cfgFile string
	opts    []config.Option
)

type cfgData struct {
	DataDir     string
	SQLitePath  string
	DocDir      string
	Backend     string
	PostgresURL string
	Listen      string
	LogLevel    string
	TopBiomes   []int
	PageSize    int
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "emgapi",
	Short: "Metagenomics API: biome hierarchy and analysis annotations",
	Long: `emgapi serves a read-only API over a relational store of biomes,
studies, samples and analyses, and a document store of functional and
taxonomic annotations.

Use "emgapi load" to fill the stores from a dataset file, then
"emgapi serve" to start the HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Cannot get flag:", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n", Version, Build)
			os.Exit(0)
		}
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (overrides the built-in defaults)")
	rootCmd.PersistentFlags().String("data-dir", "", "root directory of the stores")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")

	_ = viper.BindPFlag("DataDir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("LogLevel", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads the built-in defaults, then the config file, .env and
// EMGAPI_* variables, in increasing priority.
func initConfig() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env found, using local environment")
	}

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(configText)); err != nil {
		fmt.Fprintln(os.Stderr, "Cannot read built-in config:", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.MergeInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Cannot read config file:", err)
			os.Exit(1)
		}
	}

	viper.SetEnvPrefix("emgapi")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	opts = getOpts()
}

// getOpts imports data from the configuration. Some of the settings can
// be overriden by command line flags.
func getOpts() []config.Option {
	var res []config.Option
	cfg := cfgData{}
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Error("Cannot unmarshal config", zap.Error(err))
	}

	if cfg.DataDir != "" {
		res = append(res, config.OptDataDir(cfg.DataDir))
	}
	if cfg.SQLitePath != "" {
		res = append(res, config.OptSQLitePath(cfg.SQLitePath))
	}
	if cfg.DocDir != "" {
		res = append(res, config.OptDocDir(cfg.DocDir))
	}
	if cfg.Backend != "" {
		res = append(res, config.OptBackend(cfg.Backend))
	}
	if cfg.PostgresURL != "" {
		res = append(res, config.OptPostgresURL(cfg.PostgresURL))
	}
	if cfg.Listen != "" {
		res = append(res, config.OptListen(cfg.Listen))
	}
	if cfg.LogLevel != "" {
		res = append(res, config.OptLogLevel(cfg.LogLevel))
	}
	if len(cfg.TopBiomes) > 0 {
		res = append(res, config.OptTopBiomes(cfg.TopBiomes))
	}
	if cfg.PageSize != 0 {
		res = append(res, config.OptPageSize(cfg.PageSize))
	}
	return res
}

// setup builds the config and starts the logger at its level.
func setup() config.Config {
	cfg := config.New(opts...)
	if err := logger.InitLogger(logger.ParseLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "Cannot start logger:", err)
		os.Exit(1)
	}
	return cfg
}
