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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Data
	viper.BindEnv("data.workbook", "MV_WORKBOOK")
	rootCmd.PersistentFlags().StringP("workbook", "w", "portfolio.xlsx", "Path to the portfolio workbook")
	viper.BindPFlag("data.workbook", rootCmd.PersistentFlags().Lookup("workbook"))

	// Logging configuration
	viper.BindEnv("log.level", "MV_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "MV_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "MV_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "MV_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Print logs in human readable format")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Fixed engine constants; overridable through config for testing
	viper.SetDefault("fees.management_annual", 0.01)
	viper.SetDefault("fees.transaction_rate", 0.001)
	viper.SetDefault("rates.cash_annual", 0.015)
	viper.SetDefault("rates.risk_free_annual", 0.015)
	viper.SetDefault("simulation.start_date", "2025-10-06")
	viper.SetDefault("simulation.initial_nav", 100_000_000.0)
	viper.SetDefault("portfolio.cash_ticker", "CASH EUR")
	viper.SetDefault("portfolio.fx_ticker", "EURUSD Curncy")
	viper.SetDefault("benchmark.weights.equity", 0.60)
	viper.SetDefault("benchmark.weights.gov_bond", 0.20)
	viper.SetDefault("benchmark.weights.commodity", 0.15)
	viper.SetDefault("benchmark.weights.cash", 0.05)
	viper.SetDefault("optimizer.enabled", true)
	viper.SetDefault("optimizer.max_weight", 0.20)
	viper.SetDefault("cache.local_size", 4)
	viper.SetDefault("cache.ttl", 300)
}

var rootCmd = &cobra.Command{
	Use:   "mvapi",
	Short: "Mandate Vault is a portfolio analytics package",
	Long:  `A portfolio analytics engine that reports full-period indicators, simulates fee-net NAV against a synthetic benchmark, and reconciles allocation drift.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
