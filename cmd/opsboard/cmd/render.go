package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsboard/opsboard/internal/chart"
	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/options"
)

func init() {
	rootCmd.AddCommand(renderCmd())
}

func renderCmd() *cobra.Command {
	var outFile string

	c := &cobra.Command{
		Use:   "render",
		Short: "Render every dashboard to a standalone HTML page",
		Example: `  opsboard render
  opsboard render --out dashboards.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			svc, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			sel := options.Selection{}

			procurement, err := svc.Procurement(ctx, sel)
			if err != nil {
				return err
			}
			crm, err := svc.CRM(ctx, sel)
			if err != nil {
				return err
			}
			marketing, err := svc.Marketing(ctx, sel)
			if err != nil {
				return err
			}
			network, err := svc.Network(ctx, sel)
			if err != nil {
				return err
			}

			f, err := os.Create(outFile) //nolint:gosec // output path from trusted CLI flag
			if err != nil {
				return fmt.Errorf("creating %s: %w", outFile, err)
			}
			defer f.Close() //nolint:errcheck

			err = chart.WritePage(f, "opsboard",
				chart.Bar("Cost by PO", procurement.Cost),
				chart.Bar("Revenue by customer", crm.Revenue),
				chart.Bar("Spend by campaign", marketing.Spend),
				chart.NetworkScatter("Supply network", network.Nodes),
				chart.MonthlyLine("Monthly volume", network.Monthly),
			)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "wrote", outFile)
			return nil
		},
	}

	c.Flags().StringVar(&outFile, "out", "dashboards.html", "output HTML file")
	return c
}
