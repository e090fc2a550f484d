// Command parkingctl runs maintenance and layout tooling outside the HTTP server.
package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/config"
)

// ctlConfig is read from the optional --config file and PARKINGCTL_* variables.
type ctlConfig struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	DefaultPricePerHour float64 `mapstructure:"default_price_per_hour"`
}

// serverConfig adapts the CLI settings to what the repositories expect.
func (c ctlConfig) serverConfig() *config.Config {
	return &config.Config{
		DBHost:              c.Database.Host,
		DBPort:              c.Database.Port,
		DBUser:              c.Database.User,
		DBPassword:          c.Database.Password,
		DBName:              c.Database.Name,
		DBSslMode:           c.Database.SSLMode,
		LogLevel:            c.Log.Level,
		DefaultPricePerHour: c.DefaultPricePerHour,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "parking")
	v.SetDefault("database.password", "parking")
	v.SetDefault("database.name", "parking_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("log.level", "info")
	v.SetDefault("default_price_per_hour", 20.0)
}

// loadConfig merges defaults, the config file (if any) and the environment.
func loadConfig(v *viper.Viper, file string) (ctlConfig, error) {
	setDefaults(v)
	v.SetEnvPrefix("PARKINGCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return ctlConfig{}, err
		}
	}
	var cfg ctlConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ctlConfig{}, err
	}
	return cfg, nil
}

func newLogger(level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
	return &l
}

type app struct {
	cfg ctlConfig
	log *zerolog.Logger
}

func newRootCmd() *cobra.Command {
	var configFile string
	a := &app{}
	v := viper.New()

	root := &cobra.Command{
		Use:           "parkingctl",
		Short:         "Parking layout tooling and maintenance jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = newLogger(cfg.Log.Level)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("PARKINGCTL_CONFIG"), "Path to a YAML or JSON config file")

	root.AddCommand(
		templatesCmd(a),
		checkLayoutCmd(a),
		backfillSlotsCmd(a),
		releaseExpiredCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		newLogger("error").Error().Err(err).Msg("parkingctl failed")
		os.Exit(1)
	}
}
