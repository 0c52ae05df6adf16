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

// Package indicators computes risk/return statistics over daily return
// series. Risk annualization uses the 252 trading-day convention.
package indicators

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TradingDays is the annualization basis for volatility, Sharpe and
// tracking-error style statistics
const TradingDays = 252

// RiskMetrics are the per-series risk statistics. Values are NaN when the
// series is too short or degenerate.
type RiskMetrics struct {
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
	VaR99      float64 `json:"var99"`
}

// Risk computes annualized volatility, annualized Sharpe ratio and the
// 1-day 99% historical VaR of a daily return series. Requires at least 2
// observations; otherwise every field is NaN.
//
// VaR99 is the empirical 1st percentile of the raw return distribution,
// reported as a (normally negative) daily return.
func Risk(returns []float64, rfDaily float64) RiskMetrics {
	if len(returns) < 2 {
		return RiskMetrics{Volatility: math.NaN(), Sharpe: math.NaN(), VaR99: math.NaN()}
	}

	stdDev := stat.StdDev(returns, nil)
	if allEqual(returns) {
		stdDev = 0
	}

	metrics := RiskMetrics{
		Volatility: stdDev * math.Sqrt(TradingDays),
		Sharpe:     math.NaN(),
		VaR99:      Quantile(returns, 0.01),
	}

	if stdDev != 0 && !math.IsNaN(stdDev) && !math.IsInf(stdDev, 0) {
		excess := 0.0
		for _, r := range returns {
			excess += r - rfDaily
		}
		excess /= float64(len(returns))
		metrics.Sharpe = excess / stdDev * math.Sqrt(TradingDays)
	}

	return metrics
}

// BetaCorr is the result of regressing an asset's returns on a reference
// series
type BetaCorr struct {
	Beta        float64 `json:"beta"`
	Correlation float64 `json:"correlation"`
}

// BetaCorrelation fits a single-variable OLS regression of asset on
// reference and computes their Pearson correlation. Series must be
// pre-aligned to common dates. Correlation requires both series to have
// nonzero population standard deviation; a constant reference yields
// Beta=0 rather than an error. Any non-finite observation leaves both
// statistics NaN.
func BetaCorrelation(asset, reference []float64) BetaCorr {
	res := BetaCorr{Beta: math.NaN(), Correlation: math.NaN()}

	if len(asset) != len(reference) || len(asset) == 0 {
		return res
	}

	for ii := range asset {
		if !isFinite(asset[ii]) || !isFinite(reference[ii]) {
			return res
		}
	}

	// a constant series has zero population standard deviation
	assetConst := allEqual(asset)
	refConst := allEqual(reference)

	if !assetConst && !refConst {
		res.Correlation = stat.Correlation(asset, reference, nil)
	}

	if refConst {
		res.Beta = 0
	} else {
		_, beta := stat.LinearRegression(reference, asset, nil, false)
		res.Beta = beta
	}

	return res
}

func allEqual(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// Quantile returns the q-th quantile (0 <= q <= 1) of xs using linear
// interpolation between order statistics
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
