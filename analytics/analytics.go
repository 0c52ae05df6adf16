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

// Package analytics orchestrates the full-period pass: per-asset indicator
// records against the synthetic benchmark, the historical correlation
// matrix, and the mean/covariance inputs for the optimizer.
package analytics

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mandate-vault/mv-api/benchmark"
	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/dataframe"
	"github.com/mandate-vault/mv-api/indicators"
	"github.com/mandate-vault/mv-api/rates"
)

var (
	ErrNoReturns = errors.New("no return data")
	ErrNoTickers = errors.New("no valid asset tickers found")
)

// IndicatorRecord is the full-period indicator row for one asset
type IndicatorRecord struct {
	Ticker      string          `json:"ticker"`
	AssetClass  data.AssetClass `json:"assetClass"`
	Volatility  float64         `json:"volatility"`
	Beta        float64         `json:"beta"`
	Correlation float64         `json:"correlation"`
	VaR99       float64         `json:"var99"`
	Sharpe      float64         `json:"sharpe"`
}

// Result holds every full-period output plus the optimizer inputs
type Result struct {
	Indicators       []IndicatorRecord
	Benchmark        indicators.RiskMetrics
	BenchmarkReturns *dataframe.DataFrame
	Classes          benchmark.Classes

	// correlation matrix over the universe-plus-cash return panel;
	// entries involving a constant series are NaN
	PanelTickers []string
	Correlation  [][]float64

	// optimizer inputs over the same panel
	Mu    []float64
	Sigma *mat.SymDense
}

// FullPeriod runs the full-history analytics pass over an immutable
// snapshot. Tickers with fewer than 2 observations in common with the
// benchmark series are skipped; degenerate statistics surface as NaN.
func FullPeriod(snap *data.Snapshot, drates rates.Daily) (*Result, error) {
	if snap.Returns == nil || snap.Returns.Len() == 0 {
		return nil, ErrNoReturns
	}

	classes := benchmark.ClassTickers(snap.Benchmark, snap.Returns.ColNames)
	universe := classes.All()
	if len(universe) == 0 {
		return nil, ErrNoTickers
	}

	benchRets := benchmark.Returns(snap.Returns, classes, drates.Cash, benchmark.Weights())
	benchVals := benchRets.Col(benchmark.ColName)

	res := &Result{
		Benchmark:        indicators.Risk(benchVals, drates.RiskFree),
		BenchmarkReturns: benchRets,
		Classes:          classes,
		Indicators:       make([]IndicatorRecord, 0, len(universe)),
	}

	for _, ticker := range universe {
		assetRets := snap.Returns.Col(ticker)
		if len(assetRets) < 2 {
			log.Debug().Str("Ticker", ticker).Msg("skipping ticker with fewer than 2 observations")
			continue
		}

		risk := indicators.Risk(assetRets, drates.RiskFree)
		bc := indicators.BetaCorrelation(assetRets, benchVals)

		res.Indicators = append(res.Indicators, IndicatorRecord{
			Ticker:      ticker,
			AssetClass:  snap.ClassOf(ticker),
			Volatility:  risk.Volatility,
			Beta:        bc.Beta,
			Correlation: bc.Correlation,
			VaR99:       risk.VaR99,
			Sharpe:      risk.Sharpe,
		})
	}

	buildPanel(res, snap, universe, drates.Cash)
	return res, nil
}

// buildPanel assembles the universe-plus-cash return panel and derives the
// correlation matrix and the optimizer's mean vector and covariance matrix.
// The cash leg is a constant series at the daily cash rate, so its
// covariance row is zero by construction and its correlations are NaN.
func buildPanel(res *Result, snap *data.Snapshot, universe []string, cashDaily float64) {
	cashTicker := viper.GetString("portfolio.cash_ticker")
	n := snap.Returns.Len()

	panel := make([][]float64, 0, len(universe)+1)
	tickers := make([]string, 0, len(universe)+1)

	for _, ticker := range universe {
		panel = append(panel, snap.Returns.Col(ticker))
		tickers = append(tickers, ticker)
	}

	cashCol := make([]float64, n)
	for ii := range cashCol {
		cashCol[ii] = cashDaily
	}
	panel = append(panel, cashCol)
	tickers = append(tickers, cashTicker)

	k := len(panel)
	res.PanelTickers = tickers
	res.Correlation = make([][]float64, k)
	res.Mu = make([]float64, k)
	sigma := mat.NewSymDense(k, nil)

	for ii := 0; ii < k; ii++ {
		res.Mu[ii] = stat.Mean(panel[ii], nil)
		res.Correlation[ii] = make([]float64, k)
	}

	constant := make([]bool, k)
	for ii := range panel {
		constant[ii] = allEqual(panel[ii])
	}

	for ii := 0; ii < k; ii++ {
		for jj := ii; jj < k; jj++ {
			cov := 0.0
			corr := math.NaN()
			if !constant[ii] && !constant[jj] {
				cov = stat.Covariance(panel[ii], panel[jj], nil)
				corr = stat.Correlation(panel[ii], panel[jj], nil)
			}
			sigma.SetSym(ii, jj, cov)
			res.Correlation[ii][jj] = corr
			res.Correlation[jj][ii] = corr
		}
	}

	res.Sigma = sigma
}

// allEqual reports whether the series is constant; a constant series has
// zero variance regardless of floating point accumulation order
func allEqual(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return false
		}
	}
	return true
}
