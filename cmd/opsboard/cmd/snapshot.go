package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/dashboard"
	"github.com/opsboard/opsboard/internal/options"
)

func init() {
	rootCmd.AddCommand(snapshotCmd())
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [dashboard]",
		Short: "Fetch rows and print a dashboard report",
		Long: "Fetches the dashboard's rows from the source, runs one aggregation\n" +
			"pass with every filter at All, and prints the resulting report.\n" +
			"Without an argument, prints a KPI summary for every dashboard.",
		Example: `  opsboard snapshot
  opsboard snapshot procurement
  opsboard snapshot crm --output json`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: dashboard.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			svc, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				return printSnapshot(cmd, svc, args[0])
			}

			for _, name := range dashboard.Names() {
				if err := printSnapshot(cmd, svc, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printSnapshot(cmd *cobra.Command, svc *dashboard.Service, name string) error {
	ctx := cmd.Context()
	sel := options.Selection{}

	switch name {
	case dashboard.Procurement:
		report, err := svc.Procurement(ctx, sel)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputJSON(report)
		}
		tw := newTabWriter(os.Stdout)
		tw.writef("PROCUREMENT\n")
		tw.writef("POs:\t%d\n", report.KPIs.POCount)
		tw.writef("Cost per good unit:\t%s\n", fmtNullable(report.KPIs.CostPerGoodUnit))
		tw.writef("Defect rate %%:\t%s\n", fmtNullable(report.KPIs.DefectRatePct))
		tw.writef("On-time %%:\t%s\n", fmtNullable(report.KPIs.OnTimePct))
		tw.writef("Delivery risk:\t%s\n\n", report.KPIs.DeliveryRisk)
		return tw.finish()

	case dashboard.CRM:
		report, err := svc.CRM(ctx, sel)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputJSON(report)
		}
		tw := newTabWriter(os.Stdout)
		tw.writef("CRM\n")
		tw.writef("Leads:\t%d\n", report.KPIs.Leads)
		tw.writef("Customers:\t%d\n", report.KPIs.Customers)
		tw.writef("Opportunities:\t%d\n", report.KPIs.Opportunities)
		tw.writef("CLV:CAC:\t%s\n", fmtNullable(report.KPIs.CLVtoCAC))
		tw.writef("Conversion %%:\t%s\n", fmtNullable(report.KPIs.ConversionPct))
		tw.writef("Gross margin %%:\t%s\n\n", fmtNullable(report.KPIs.GrossMarginPct))
		return tw.finish()

	case dashboard.Marketing:
		report, err := svc.Marketing(ctx, sel)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputJSON(report)
		}
		tw := newTabWriter(os.Stdout)
		tw.writef("MARKETING\n")
		tw.writef("Campaigns:\t%d\n", report.KPIs.Campaigns)
		tw.writef("Leads:\t%d\n", report.KPIs.Leads)
		tw.writef("ROAS:\t%s\n", fmtNullable(report.KPIs.ROAS))
		tw.writef("Cost per lead:\t%s\n", fmtNullable(report.KPIs.CostPerLead))
		tw.writef("Conversion %%:\t%s\n\n", fmtNullable(report.KPIs.ConversionPct))
		return tw.finish()

	case dashboard.Network:
		report, err := svc.Network(ctx, sel)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputJSON(report)
		}
		tw := newTabWriter(os.Stdout)
		tw.writef("NETWORK\n")
		tw.writef("Nodes:\t%d\n", len(report.Nodes))
		tw.writef("ROLE\tLOCATION\tCOST\tLEAD AVG\tRISK\n")
		for _, n := range report.Nodes {
			tw.writef("%s\t%s\t%.2f\t%s\t%s\n",
				n.Role, n.Location, n.CostTotal, fmtNullable(n.LeadTimeAvg), n.RiskBucket)
		}
		tw.writef("\n")
		return tw.finish()

	default:
		return fmt.Errorf("unknown dashboard %q", name)
	}
}
