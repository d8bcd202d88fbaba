package cmd

import (
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/normalizer"
	"github.com/samuel262816/curry-company/internal/output"
	"github.com/samuel262816/curry-company/internal/report"
	"github.com/spf13/cobra"
)

var fromDB bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute the dashboard report for the filtered orders",
	Long: `report normalizes the dataset (or reads the orders stored in Postgres with
--from-db), applies the date cutoff and traffic filter, and writes the
company, deliverer and restaurant views to the configured destinations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			table models.Table
			stats *normalizer.Stats
			err   error
		)
		if fromDB {
			table, err = loadStoredTable(ctx)
		} else {
			table, stats, err = loadTable()
		}
		if err != nil {
			return err
		}

		rep, err := report.Build(table, configuredFilter())
		if err != nil {
			return err
		}
		rep.Normalization = stats
		logger.WithFields(map[string]interface{}{
			"report":      rep.ID,
			"orders":      rep.Orders,
			"unavailable": len(rep.Unavailable),
		}).Info("report built")

		dest, err := output.New(ctx, cfg, output.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := dest.WriteReport(ctx, rep); err != nil {
			dest.Close()
			return err
		}
		return dest.Close()
	},
}

func init() {
	reportCmd.Flags().BoolVar(&fromDB, "from-db", false, "Read normalized orders from Postgres instead of the dataset")
}
