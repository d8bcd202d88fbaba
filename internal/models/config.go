package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DateLayout is the layout used for dates in configuration and flags.
const DateLayout = "2006-01-02"

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString renders the config as a libpq keyword/value connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

// GenerateConfig drives the synthetic raw dataset generator.
type GenerateConfig struct {
	Rows        int       `mapstructure:"rows"`
	Seed        int64     `mapstructure:"seed"`
	MissingRate float64   `mapstructure:"missing_rate"`
	StartDate   time.Time `mapstructure:"start_date"`
	EndDate     time.Time `mapstructure:"end_date"`
	Deliverers  int       `mapstructure:"deliverers"`
}

type Config struct {
	DatasetPath  string `mapstructure:"dataset_path"`
	DatasetSheet string `mapstructure:"dataset_sheet"`
	StrictHeader bool   `mapstructure:"strict_header"`

	DateCutoff    time.Time `mapstructure:"date_cutoff"`
	TrafficFilter []string  `mapstructure:"traffic_filter"`

	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	KafkaReportTopic string `mapstructure:"kafka_report_topic"`
	KafkaOrderTopic  string `mapstructure:"kafka_order_topic"`

	PostgresEnabled bool           `mapstructure:"postgres_enabled"`
	Database        DatabaseConfig `mapstructure:"database"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	Generate GenerateConfig `mapstructure:"generate"`
}

// SetDefaults registers the default values on v. Every key needs one for
// environment overrides to reach keys missing from the config file. The
// traffic filter and cutoff match the initial dashboard sidebar state.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dataset_path", "dataset/train.csv")
	v.SetDefault("dataset_sheet", "")
	v.SetDefault("strict_header", true)
	v.SetDefault("date_cutoff", "2022-03-01")
	v.SetDefault("traffic_filter", strings.Join(TrafficDensities, ","))
	v.SetDefault("output_format", "json")
	v.SetDefault("output_folder", "curry")
	v.SetDefault("output_destination", "local")
	v.SetDefault("output_path", "")
	v.SetDefault("cloud_storage.provider", "s3")
	v.SetDefault("cloud_storage.region", "")
	v.SetDefault("cloud_storage.bucket_name", "")
	v.SetDefault("kafka_enabled", false)
	v.SetDefault("kafka_broker_list", "localhost:9092")
	v.SetDefault("kafka_report_topic", "dashboard_reports")
	v.SetDefault("kafka_order_topic", "normalized_orders")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "curry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("postgres_enabled", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("generate.rows", 1000)
	v.SetDefault("generate.seed", 42)
	v.SetDefault("generate.missing_rate", 0.02)
	v.SetDefault("generate.start_date", "2022-02-11")
	v.SetDefault("generate.end_date", "2022-04-06")
	v.SetDefault("generate.deliverers", 150)
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".curry-company")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return DecodeConfig(viper.GetViper())
}

// DecodeConfig unmarshals the settings held by v into a Config.
func DecodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(DateLayout),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	for i, t := range config.TrafficFilter {
		config.TrafficFilter[i] = strings.TrimSpace(t)
	}

	return &config, nil
}

func (cfg *Config) Validate() error {
	switch cfg.OutputFormat {
	case "json", "csv", "parquet":
	default:
		return fmt.Errorf("unsupported output format: %q", cfg.OutputFormat)
	}

	switch cfg.OutputDestination {
	case "local":
	case "s3":
		if cfg.CloudStorage.BucketName == "" {
			return errors.New("cloud_storage.bucket_name is required for s3 output")
		}
	default:
		return fmt.Errorf("unsupported output destination: %q", cfg.OutputDestination)
	}

	for _, t := range cfg.TrafficFilter {
		if !IsTrafficDensity(t) {
			return fmt.Errorf("unknown traffic density in filter: %q", t)
		}
	}

	if cfg.KafkaEnabled && cfg.KafkaBrokerList == "" {
		return errors.New("kafka_broker_list is required when kafka is enabled")
	}

	if cfg.Generate.MissingRate < 0 || cfg.Generate.MissingRate > 1 {
		return fmt.Errorf("generate.missing_rate must be within [0,1], got %v", cfg.Generate.MissingRate)
	}

	return nil
}
