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

package portfolio

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"

	"github.com/mandate-vault/mv-api/benchmark"
	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/dataframe"
	"github.com/mandate-vault/mv-api/indicators"
	"github.com/mandate-vault/mv-api/rates"
)

// rollingWindow is the lookback in trading days for the rolling active
// risk series
const rollingWindow = 60

// StartDate reads the configured simulation start date
func StartDate() time.Time {
	start, err := time.Parse("2006-01-02", viper.GetString("simulation.start_date"))
	if err != nil {
		log.Panic().Err(err).Str("StartDate", viper.GetString("simulation.start_date")).Msg("cannot parse simulation start date")
	}
	return start
}

// Simulate compounds the fee-net portfolio NAV and the gross benchmark NAV
// from the configured start date, both rebased to 100 on the start row. The
// net recurrence runs strictly in date order because the management fee
// compounds multiplicatively with the daily return.
func Simulate(snap *data.Snapshot, drates rates.Daily, metric ActiveRiskMetric) (*Simulation, error) {
	start := StartDate()

	if snap.Returns == nil || snap.Returns.Len() == 0 || snap.Returns.End().Before(start) {
		return nil, ErrNoSimulationDays
	}

	window := snap.Returns.Trim(start, snap.Returns.End())
	if window.Len() == 0 {
		return nil, ErrNoSimulationDays
	}

	classes := benchmark.ClassTickers(snap.Benchmark, window.ColNames)
	benchRets := benchmark.Returns(window, classes, drates.Cash, benchmark.Weights())
	portRets := grossPortfolioReturns(window, snap, drates.Cash)

	// anchor the start date with a synthetic zero-return row when the
	// index begins after it
	if benchRets.Start().After(start) {
		benchRets = benchRets.PrependRow(start, 0)
		portRets = portRets.PrependRow(start, 0)
	}

	sim := &Simulation{Start: start}
	buildNav(sim, benchRets, portRets, drates.MgmtFee)
	buildRisk(sim, benchRets, portRets, drates, metric)
	sim.Contributions = contributions(window, snap, drates.Cash)

	return sim, nil
}

// grossPortfolioReturns is the weighted sum of per-asset returns over the
// held tickers plus the cash leg at its constant daily rate. Held tickers
// with no price history contribute nothing.
func grossPortfolioReturns(window *dataframe.DataFrame, snap *data.Snapshot, cashDaily float64) *dataframe.DataFrame {
	cashTicker := viper.GetString("portfolio.cash_ticker")

	vals := make([]float64, window.Len())
	for _, holding := range snap.Holdings {
		if holding.Ticker == cashTicker {
			for ii := range vals {
				vals[ii] += holding.Weight * cashDaily
			}
			continue
		}

		col := window.Col(holding.Ticker)
		if col == nil {
			log.Warn().Str("Ticker", holding.Ticker).Msg("held ticker has no price history; excluded from simulation")
			continue
		}
		for ii, ret := range col {
			vals[ii] += holding.Weight * ret
		}
	}

	return dataframe.New(window.Dates, []string{"Portfolio"}, [][]float64{vals})
}

// buildNav fills the base-100 NAV comparison. The benchmark track is the
// gross cumulative product; the portfolio track is the sequential net
// recurrence NAV[t] = NAV[t-1] x (1 + gross) x (1 - fee). Both start rows
// are forced to exactly 100.
func buildNav(sim *Simulation, benchRets, portRets *dataframe.DataFrame, feeDaily float64) {
	benchNav := benchRets.AddScalar(1).CumProd().MulScalar(100)
	benchVals := benchNav.Col(benchmark.ColName)
	portVals := portRets.Col("Portfolio")

	sim.Nav = make([]NavPoint, benchNav.Len())
	sim.Nav[0] = NavPoint{Date: benchNav.Dates[0], Benchmark: 100, Portfolio: 100}

	// the start row is the base of the recurrence; its own return and fee
	// are never charged
	prev := 100.0
	for ii := 1; ii < benchNav.Len(); ii++ {
		prev = prev * (1 + portVals[ii]) * (1 - feeDaily)
		sim.Nav[ii] = NavPoint{Date: benchNav.Dates[ii], Benchmark: benchVals[ii], Portfolio: prev}
	}
}

// buildRisk computes window risk statistics and the active risk summary
// over the rows strictly after the start date
func buildRisk(sim *Simulation, benchRets, portRets *dataframe.DataFrame, drates rates.Daily, metric ActiveRiskMetric) {
	benchVals := benchRets.Col(benchmark.ColName)[1:]
	portGross := portRets.Col("Portfolio")[1:]

	portNet := make([]float64, len(portGross))
	active := make([]float64, len(portGross))
	for ii, gross := range portGross {
		portNet[ii] = (1+gross)*(1-drates.MgmtFee) - 1
		active[ii] = portNet[ii] - benchVals[ii]
	}

	sim.BenchmarkRisk = indicators.Risk(benchVals, drates.RiskFree)
	sim.PortfolioRisk = indicators.Risk(portNet, drates.RiskFree)
	sim.Active = activeRisk(active, metric)
}

// activeRisk summarizes the daily active return series. The whole-window
// estimate is replaced by the mean of the rolling series whenever enough
// history exists to populate it.
func activeRisk(active []float64, metric ActiveRiskMetric) ActiveRisk {
	res := ActiveRisk{Metric: metric, Average: math.NaN()}
	annualize := math.Sqrt(indicators.TradingDays)

	std := stat.StdDev(active, nil)
	switch metric {
	case TrackingError:
		if !math.IsNaN(std) {
			res.Average = std * annualize
		}
	default:
		if std != 0 && !math.IsNaN(std) {
			res.Average = stat.Mean(active, nil) / std * annualize
		}
	}

	for ii := rollingWindow; ii <= len(active); ii++ {
		windowed := active[ii-rollingWindow : ii]
		windowStd := stat.StdDev(windowed, nil)

		var val float64
		if metric == TrackingError {
			val = windowStd * annualize
		} else {
			val = stat.Mean(windowed, nil) / windowStd * annualize
		}
		if !math.IsInf(val, 0) && !math.IsNaN(val) {
			res.Rolling = append(res.Rolling, val)
		}
	}

	if len(res.Rolling) > 0 {
		res.Average = stat.Mean(res.Rolling, nil)
	}

	return res
}

// contributions computes the simulated profit and loss per asset class on
// a base-100 allocation. The cash leg compounds day by day over the exact
// number of simulation days; every other holding applies its cumulative
// gross return to the initial allocation.
func contributions(window *dataframe.DataFrame, snap *data.Snapshot, cashDaily float64) []ClassContribution {
	cashTicker := viper.GetString("portfolio.cash_ticker")
	days := window.Len()

	byClass := make(map[data.AssetClass]*ClassContribution)
	order := make([]data.AssetClass, 0, 4)

	record := func(class data.AssetClass, initial, final float64) {
		entry, ok := byClass[class]
		if !ok {
			entry = &ClassContribution{Class: class}
			byClass[class] = entry
			order = append(order, class)
		}
		entry.Initial += initial
		entry.Final += final
	}

	for _, holding := range snap.Holdings {
		initial := holding.Weight * 100

		if holding.Ticker == cashTicker {
			final := initial
			for ii := 0; ii < days; ii++ {
				final *= 1 + cashDaily
			}
			record(data.Cash, initial, final)
			continue
		}

		col := window.Col(holding.Ticker)
		if col == nil {
			record(snap.ClassOf(holding.Ticker), initial, initial)
			continue
		}

		cum := 1.0
		for _, ret := range col {
			cum *= 1 + ret
		}
		record(snap.ClassOf(holding.Ticker), initial, initial*cum)
	}

	contribs := make([]ClassContribution, 0, len(order))
	for _, class := range order {
		entry := byClass[class]
		entry.PnL = entry.Final - entry.Initial
		contribs = append(contribs, *entry)
	}
	return contribs
}
