// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mandate-vault/mv-api/common"
	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/portfolio"
	"github.com/mandate-vault/mv-api/report"
)

func init() {
	reportCmd.Flags().String("csv-dir", "", "Directory to export report tables as CSV; skip export when empty")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full analytics pass and print the report",
	Long:  `Load the portfolio workbook, run every analytics section, and print the resulting tables. Sections that cannot be computed are omitted.`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		mgr := data.NewManager(viper.GetString("data.workbook"))
		rep, err := report.Build(mgr)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot build report")
		}

		printIndicators(rep)
		printSimulation(rep)
		printDeviations("DRIFT VS INITIAL WEIGHTS", rep.Drift)
		printDeviations("ACTIVE WEIGHT VS BENCHMARK", rep.ActiveWeight)
		printOptimizer(rep)

		csvDir, _ := cmd.Flags().GetString("csv-dir")
		if csvDir != "" {
			if err := exportCSV(csvDir, rep); err != nil {
				log.Fatal().Err(err).Str("Dir", csvDir).Msg("cannot export csv")
			}
		}
	},
}

func printIndicators(rep *report.Report) {
	fmt.Println("ASSET CHARACTERISTICS (FULL PERIOD)")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Ticker", "Asset Class", "Volatility", "Beta", "Correlation", "VaR 99%", "Sharpe"})
	for _, rec := range rep.Analytics.Indicators {
		table.Append([]string{
			rec.Ticker,
			string(rec.AssetClass),
			fmt.Sprintf("%.4f", rec.Volatility),
			fmt.Sprintf("%.4f", rec.Beta),
			fmt.Sprintf("%.4f", rec.Correlation),
			fmt.Sprintf("%.4f", rec.VaR99),
			fmt.Sprintf("%.4f", rec.Sharpe),
		})
	}
	table.Render()

	bench := rep.Analytics.Benchmark
	fmt.Printf("BENCHMARK: vol %.4f sharpe %.4f var99 %.4f\n\n", bench.Volatility, bench.Sharpe, bench.VaR99)
}

func printSimulation(rep *report.Report) {
	if rep.Simulation == nil {
		return
	}
	sim := rep.Simulation

	last := sim.Nav[len(sim.Nav)-1]
	fmt.Printf("NAV SIMULATION FROM %s: portfolio %.2f benchmark %.2f (%s)\n",
		sim.Start.Format("2006-01-02"), last.Portfolio, last.Benchmark, last.Date.Format("2006-01-02"))
	fmt.Printf("ACTIVE RISK (%s): %.4f\n", sim.Active.Metric, sim.Active.Average)

	fmt.Println("P&L CONTRIBUTION BY ASSET CLASS")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Asset Class", "Initial", "Final", "P&L"})
	for _, contrib := range sim.Contributions {
		table.Append([]string{
			string(contrib.Class),
			fmt.Sprintf("%.2f", contrib.Initial),
			fmt.Sprintf("%.2f", contrib.Final),
			fmt.Sprintf("%.2f", contrib.PnL),
		})
	}
	table.Render()
	fmt.Println()
}

func printDeviations(title string, records []portfolio.DeviationRecord) {
	if len(records) == 0 {
		return
	}
	fmt.Println(title)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Ticker", "Asset Class", "Initial", "Reference", "Current", "Deviation"})
	for _, rec := range records {
		table.Append([]string{
			rec.Ticker,
			string(rec.AssetClass),
			fmt.Sprintf("%.4f", rec.InitialWeight),
			fmt.Sprintf("%.4f", rec.ReferenceWeight),
			fmt.Sprintf("%.4f", rec.CurrentWeight),
			fmt.Sprintf("%.4f", rec.Deviation),
		})
	}
	table.Render()
	fmt.Println()
}

func printOptimizer(rep *report.Report) {
	if rep.Optimizer == nil {
		return
	}
	opt := rep.Optimizer
	if !opt.Feasible || !opt.Converged {
		fmt.Printf("OPTIMIZER: unavailable (%s)\n", opt.Reason)
		return
	}

	fmt.Printf("MAX SHARPE PORTFOLIO (sharpe %.4f)\n", opt.Sharpe)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Ticker", "Weight"})
	for ticker, weight := range opt.Weights {
		table.Append([]string{ticker, fmt.Sprintf("%.4f", weight)})
	}
	table.Render()
	fmt.Println()
}

// exportCSV writes every report table as a flat delimited file
func exportCSV(dir string, rep *report.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	indicators := [][]string{{"ticker", "asset_class", "volatility", "beta", "correlation", "var99", "sharpe"}}
	for _, rec := range rep.Analytics.Indicators {
		indicators = append(indicators, []string{
			rec.Ticker, string(rec.AssetClass),
			formatFloat(rec.Volatility), formatFloat(rec.Beta), formatFloat(rec.Correlation),
			formatFloat(rec.VaR99), formatFloat(rec.Sharpe),
		})
	}
	if err := writeCSV(filepath.Join(dir, "indicators.csv"), indicators); err != nil {
		return err
	}

	corr := [][]string{append([]string{"ticker"}, rep.Analytics.PanelTickers...)}
	for ii, row := range rep.Analytics.Correlation {
		record := []string{rep.Analytics.PanelTickers[ii]}
		for _, val := range row {
			record = append(record, formatFloat(val))
		}
		corr = append(corr, record)
	}
	if err := writeCSV(filepath.Join(dir, "correlation.csv"), corr); err != nil {
		return err
	}

	if rep.Simulation != nil {
		nav := [][]string{{"date", "benchmark", "portfolio"}}
		for _, point := range rep.Simulation.Nav {
			nav = append(nav, []string{
				point.Date.Format("2006-01-02"),
				formatFloat(point.Benchmark),
				formatFloat(point.Portfolio),
			})
		}
		if err := writeCSV(filepath.Join(dir, "nav.csv"), nav); err != nil {
			return err
		}

		contrib := [][]string{{"asset_class", "initial", "final", "pnl"}}
		for _, entry := range rep.Simulation.Contributions {
			contrib = append(contrib, []string{
				string(entry.Class), formatFloat(entry.Initial),
				formatFloat(entry.Final), formatFloat(entry.PnL),
			})
		}
		if err := writeCSV(filepath.Join(dir, "contribution.csv"), contrib); err != nil {
			return err
		}
	}

	for name, records := range map[string][]portfolio.DeviationRecord{
		"drift.csv":         rep.Drift,
		"active_weight.csv": rep.ActiveWeight,
	} {
		if len(records) == 0 {
			continue
		}
		rows := [][]string{{"ticker", "asset_class", "initial_weight", "reference_weight", "current_weight", "deviation"}}
		for _, rec := range records {
			rows = append(rows, []string{
				rec.Ticker, string(rec.AssetClass),
				formatFloat(rec.InitialWeight), formatFloat(rec.ReferenceWeight),
				formatFloat(rec.CurrentWeight), formatFloat(rec.Deviation),
			})
		}
		if err := writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}

	return nil
}

func writeCSV(path string, rows [][]string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	writer := csv.NewWriter(fh)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
