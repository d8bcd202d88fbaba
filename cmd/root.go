package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/samuel262816/curry-company/internal/logging"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *models.Config
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "curry-company",
	Short: "Normalizes food delivery logs and computes the company dashboard",
	Long: `curry-company cleans the raw delivery log of a food delivery company and
computes the metrics behind its company, deliverer and restaurant dashboards.
Reports and normalized orders can be written to files, S3, Kafka or Postgres.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win over it.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error loading .env: %w", err)
		}

		var err error
		cfg, err = models.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.Setup(cfg)
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.WithField("file", used).Debug("using config file")
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.curry-company.yaml)")

	flags.String("dataset", "", "Raw dataset path (.csv or .xlsx)")
	flags.String("sheet", "", "Worksheet to read from an .xlsx dataset")
	flags.Bool("strict-header", true, "Require the dataset header names to match the source layout")
	flags.String("date-cutoff", "", "Keep orders strictly before this date (YYYY-MM-DD)")
	flags.StringSlice("traffic", nil, "Traffic densities to keep (Low,Medium,High,Jam)")
	flags.String("output-format", "", "Order file format: json, csv or parquet")
	flags.String("output-path", "", "Base directory for file output (stdout when empty)")
	flags.String("output-folder", "", "Folder under the output path or bucket")
	flags.String("output-destination", "", "Where files go: local or s3")
	flags.Bool("kafka-enabled", false, "Publish to Kafka")
	flags.String("kafka-broker-list", "", "Kafka broker list")
	flags.Bool("postgres-enabled", false, "Store orders and reports in Postgres")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log-file", "", "Write logs to this file instead of stderr")

	for key, flag := range map[string]string{
		"dataset_path":       "dataset",
		"dataset_sheet":      "sheet",
		"strict_header":      "strict-header",
		"date_cutoff":        "date-cutoff",
		"traffic_filter":     "traffic",
		"output_format":      "output-format",
		"output_path":        "output-path",
		"output_folder":      "output-folder",
		"output_destination": "output-destination",
		"kafka_enabled":      "kafka-enabled",
		"kafka_broker_list":  "kafka-broker-list",
		"postgres_enabled":   "postgres-enabled",
		"log_level":          "log-level",
		"log_file":           "log-file",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	rootCmd.AddCommand(reportCmd, exportCmd, generateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
