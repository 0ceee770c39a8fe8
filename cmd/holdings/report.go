package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/newthinker/holdings/internal/analytics"
	"github.com/newthinker/holdings/internal/app"
	"github.com/newthinker/holdings/internal/concentration"
	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	windowQuarters string
	windowLast     int
	reportLimit    int
	reportInvestor []string
)

var quartersCmd = &cobra.Command{
	Use:   "quarters",
	Short: "List known quarters and their coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(e *analytics.Engine, log *zap.Logger) error {
			return printSummary(cmd.OutOrStdout(), e.QuarterSummary())
		})
	},
}

var momentumCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Show investors reversing direction on a ticker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWindow(cmd, analytics.MomentumDepth, func(e *analytics.Engine, quarters []core.Quarter) error {
			return printMomentum(cmd.OutOrStdout(), e.MomentumShifts(quarters))
		})
	},
}

var exitsCmd = &cobra.Command{
	Use:   "exits",
	Short: "Show tickers investors sold out of",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWindow(cmd, 1, func(e *analytics.Engine, quarters []core.Quarter) error {
			return printExits(cmd.OutOrStdout(), e.ExitTracker(quarters))
		})
	},
}

var discoveriesCmd = &cobra.Command{
	Use:   "discoveries",
	Short: "Show tickers investors bought for the first time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWindow(cmd, 1, func(e *analytics.Engine, quarters []core.Quarter) error {
			return printDiscoveries(cmd.OutOrStdout(), e.NewDiscoveries(quarters))
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show buy/sell balance per quarter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWindow(cmd, 1, func(e *analytics.Engine, quarters []core.Quarter) error {
			return printBalance(cmd.OutOrStdout(), e.BuySellBalance(quarters))
		})
	},
}

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Show net flows by sector, or the largest sectors with --top",
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetBool("top")
		if top {
			return withEngine(cmd, func(e *analytics.Engine, log *zap.Logger) error {
				return printTopSectors(cmd.OutOrStdout(), e.TopSectors(reportLimit))
			})
		}
		return withWindow(cmd, 1, func(e *analytics.Engine, quarters []core.Quarter) error {
			return printSectorFlows(cmd.OutOrStdout(), e.SectorNetFlows(quarters))
		})
	},
}

var concentrationCmd = &cobra.Command{
	Use:   "concentration",
	Short: "Rank investors by portfolio concentration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(e *analytics.Engine, log *zap.Logger) error {
			return printConcentration(cmd.OutOrStdout(), e.Concentration(reportInvestor, reportLimit))
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{momentumCmd, exitsCmd, discoveriesCmd, balanceCmd, sectorsCmd} {
		c.Flags().StringVar(&windowQuarters, "quarters", "", "comma separated quarters, e.g. 2024-Q3,2024-Q4")
		c.Flags().IntVar(&windowLast, "last", 0, "use the last N quarters")
	}
	sectorsCmd.Flags().Bool("top", false, "rank sectors by held value in latest snapshots")
	sectorsCmd.Flags().IntVar(&reportLimit, "limit", 0, "maximum rows (0 uses the configured default)")
	concentrationCmd.Flags().IntVar(&reportLimit, "limit", 0, "maximum rows (0 uses the configured default)")
	concentrationCmd.Flags().StringSliceVar(&reportInvestor, "investor", nil, "investor slugs to score")

	rootCmd.AddCommand(quartersCmd, momentumCmd, exitsCmd, discoveriesCmd, balanceCmd, sectorsCmd, concentrationCmd)
}

// withEngine loads the configured holdings and runs fn against the engine.
func withEngine(cmd *cobra.Command, fn func(e *analytics.Engine, log *zap.Logger) error) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a := app.New(cfg, log, nil)
	if err := a.Load(cmd.Context()); err != nil {
		return fmt.Errorf("loading holdings: %w", err)
	}
	e, err := a.Engine()
	if err != nil {
		return err
	}
	return fn(e, log)
}

func withWindow(cmd *cobra.Command, depth int, fn func(e *analytics.Engine, quarters []core.Quarter) error) error {
	return withEngine(cmd, func(e *analytics.Engine, log *zap.Logger) error {
		quarters, err := selectWindow(e, windowQuarters, windowLast, depth)
		if err != nil {
			return err
		}
		log.Debug("resolved window", zap.Int("quarters", len(quarters)))
		return fn(e, quarters)
	})
}

// selectWindow resolves --quarters or --last, falling back to the latest
// depth quarters.
func selectWindow(e *analytics.Engine, list string, last, depth int) ([]core.Quarter, error) {
	switch {
	case list != "":
		return core.ParseQuarters(list)
	case last < 0:
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("--last must be positive, got %d", last))
	case last > 0:
		return e.LastWindow(last).Quarters, nil
	case depth > 1:
		return e.LastWindow(depth).Quarters, nil
	default:
		return e.LatestWindow().Quarters, nil
	}
}

// formatMoney renders a dollar amount with grouping, rounded to cents.
func formatMoney(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0)
	return money.New(cents.IntPart(), money.USD).Display()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func windowLine(w io.Writer, win analytics.Window) bool {
	if win.Empty() {
		fmt.Fprintln(w, "No data for the requested quarters.")
		return false
	}
	fmt.Fprintf(w, "Window: %s\n", joinQuarters(win.Quarters))
	if len(win.Dropped) > 0 {
		fmt.Fprintf(w, "Ignored unknown quarters: %s\n", joinQuarters(win.Dropped))
	}
	fmt.Fprintln(w)
	return true
}

func joinQuarters(qs []core.Quarter) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = q.String()
	}
	return strings.Join(parts, ", ")
}

func printSummary(w io.Writer, s analytics.Summary) error {
	fmt.Fprintf(w, "Latest quarter: %s (%d active investors, min coverage %.0f%%)\n\n",
		s.Latest, s.ActiveInvestors, s.MinCoverage)

	tw := newTable(w)
	fmt.Fprintln(tw, "QUARTER\tINVESTORS\tCOVERAGE")
	fmt.Fprintln(tw, "-------\t---------\t--------")
	for _, q := range s.Quarters {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", q.Quarter, q.Investors, q.Percent)
	}
	return tw.Flush()
}

func printMomentum(w io.Writer, m analytics.Momentum) error {
	if !windowLine(w, m.Window) {
		return nil
	}
	if len(m.Shifts) == 0 {
		fmt.Fprintln(w, "No momentum shifts.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "TICKER\tINVESTOR\tQUARTER\tFROM\tTO\tREVERSALS")
	fmt.Fprintln(tw, "------\t--------\t-------\t----\t--\t---------")
	for _, shift := range m.Shifts {
		for _, s := range shift.Shifters {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
				shift.Ticker, s.Investor, s.Quarter, s.From, s.To, s.Reversals)
		}
	}
	return tw.Flush()
}

func printExits(w io.Writer, x analytics.Exits) error {
	if !windowLine(w, x.Window) {
		return nil
	}
	if len(x.Groups) == 0 {
		fmt.Fprintln(w, "No exits.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "TICKER\tNAME\tINVESTORS\tVALUE")
	fmt.Fprintln(tw, "------\t----\t---------\t-----")
	for _, g := range x.Groups {
		investors := make([]string, len(g.ExitedBy))
		for i, e := range g.ExitedBy {
			investors[i] = e.Investor
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			g.Ticker, g.Name, strings.Join(investors, ","), formatMoney(g.TotalValue))
	}
	return tw.Flush()
}

func printDiscoveries(w io.Writer, d analytics.Discoveries) error {
	if !windowLine(w, d.Window) {
		return nil
	}
	if len(d.Groups) == 0 {
		fmt.Fprintln(w, "No new discoveries.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "TICKER\tNAME\tINVESTORS\tVALUE")
	fmt.Fprintln(tw, "------\t----\t---------\t-----")
	for _, g := range d.Groups {
		investors := make([]string, len(g.DiscoveredBy))
		for i, e := range g.DiscoveredBy {
			investors[i] = e.Investor
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			g.Ticker, g.Name, strings.Join(investors, ","), formatMoney(g.TotalValue))
	}
	return tw.Flush()
}

func printBalance(w io.Writer, b analytics.BuySell) error {
	if !windowLine(w, b.Window) {
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "QUARTER\tBUYS\tSELLS\tNET\t#BUYS\t#SELLS\tSENTIMENT")
	fmt.Fprintln(tw, "-------\t----\t-----\t---\t-----\t------\t---------")
	for _, q := range b.Quarters {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			q.Quarter, formatMoney(q.TotalBuys), formatMoney(q.TotalSells), formatMoney(q.NetFlow),
			q.BuysCount, q.SellsCount, q.Sentiment)
	}
	return tw.Flush()
}

func printSectorFlows(w io.Writer, f analytics.SectorFlows) error {
	if !windowLine(w, f.Window) {
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "SECTOR\tINFLOW\tOUTFLOW\tNET")
	fmt.Fprintln(tw, "------\t------\t-------\t---")
	for _, s := range f.Sectors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.Label, formatMoney(s.Inflow), formatMoney(s.Outflow), formatMoney(s.NetFlow))
	}
	return tw.Flush()
}

func printTopSectors(w io.Writer, t analytics.TopSectorsResult) error {
	fmt.Fprintf(w, "Total held value: %s\n\n", formatMoney(t.TotalValue))

	tw := newTable(w)
	fmt.Fprintln(tw, "SECTOR\tVALUE\tWEIGHT\tPOSITIONS\tINVESTORS")
	fmt.Fprintln(tw, "------\t-----\t------\t---------\t---------")
	for _, s := range t.Sectors {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%d\t%d\n",
			s.Label, formatMoney(s.Value), s.Weight*100, s.Positions, s.Investors)
	}
	return tw.Flush()
}

func printConcentration(w io.Writer, scores []concentration.Score) error {
	if len(scores) == 0 {
		fmt.Fprintln(w, "No investors to score.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "INVESTOR\tQUARTER\tHHI\tTOP3\tTIER\tPOSITIONS\tVALUE")
	fmt.Fprintln(tw, "--------\t-------\t---\t----\t----\t---------\t-----")
	for _, s := range scores {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.1f%%\t%s\t%d\t%s\n",
			s.Investor, s.Quarter, s.Herfindahl, s.Top3Percentage, s.Tier, s.Positions, formatMoney(s.TotalValue))
	}
	return tw.Flush()
}
