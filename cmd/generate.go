package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samuel262816/curry-company/internal/dataset"
	"github.com/samuel262816/curry-company/internal/factories"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic raw delivery log",
	Long: `generate writes a synthetic dataset in the raw source layout, padded cells and
NaN sentinels included, to a .csv or .xlsx file. The same seed always yields
the same file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := cfg.Generate
		raw := factories.NewRawRecordFactory(gen).CreateRawTable(gen.Rows)

		if dir := filepath.Dir(generateOut); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return err
			}
		}

		switch strings.ToLower(filepath.Ext(generateOut)) {
		case ".xlsx":
			if err := dataset.WriteXLSX(generateOut, cfg.DatasetSheet, raw); err != nil {
				return fmt.Errorf("write %s: %w", generateOut, err)
			}
		default:
			file, err := os.Create(generateOut)
			if err != nil {
				return err
			}
			if err := dataset.WriteCSV(file, raw); err != nil {
				file.Close()
				return fmt.Errorf("write %s: %w", generateOut, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
		}

		logger.WithFields(map[string]interface{}{
			"file": generateOut,
			"rows": raw.Len(),
			"seed": gen.Seed,
		}).Info("dataset generated")
		return nil
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateOut, "out", "o", "dataset/train.csv", "Output file (.csv or .xlsx)")
	flags.Int("rows", 0, "Number of rows to generate")
	flags.Int64("seed", 0, "Random seed")
	flags.Float64("missing-rate", 0, "Probability of a NaN sentinel per optional field")
	flags.Int("deliverers", 0, "Number of distinct delivery persons")

	for key, flag := range map[string]string{
		"generate.rows":         "rows",
		"generate.seed":         "seed",
		"generate.missing_rate": "missing-rate",
		"generate.deliverers":   "deliverers",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}
