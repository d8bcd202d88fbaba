package cmd

import (
	"github.com/samuel262816/curry-company/internal/output"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var applyFilter bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Normalize the dataset and write the orders",
	Long: `export normalizes the dataset and writes the orders, partitioned by order
date, to the configured destinations. With --filtered only the orders that pass
the date cutoff and traffic filter are written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		table, stats, err := loadTable()
		if err != nil {
			return err
		}
		if applyFilter {
			table = configuredFilter().Apply(table)
		}
		logger.WithFields(map[string]interface{}{
			"read":    stats.Read,
			"kept":    stats.Kept,
			"dropped": stats.TotalDropped(),
			"writing": table.Len(),
		}).Info("dataset normalized")

		bar := progressbar.NewOptions(table.Len(),
			progressbar.OptionSetDescription("exporting orders"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		dest, err := output.New(ctx, cfg, output.WithLogger(logger), output.WithTracker(bar))
		if err != nil {
			return err
		}
		if err := dest.WriteOrders(ctx, table); err != nil {
			dest.Close()
			return err
		}
		if err := bar.Finish(); err != nil {
			logger.WithError(err).Warn("progress bar")
		}
		return dest.Close()
	},
}

func init() {
	exportCmd.Flags().BoolVar(&applyFilter, "filtered", false, "Apply the date cutoff and traffic filter before writing")
}
