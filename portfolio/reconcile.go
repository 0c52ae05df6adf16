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
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mandate-vault/mv-api/benchmark"
	"github.com/mandate-vault/mv-api/data"
)

// Reconcile values every holding at the latest available price and reports
// the deviation of its current weight against the selected reference:
// the initial allocation (drift) or the benchmark theoretical weight
// (active weight). Commodity holdings are quoted in a secondary currency
// and round-trip through the configured FX series; every other class is
// valued in the reporting currency directly.
func Reconcile(snap *data.Snapshot, ref ReferenceWeights) ([]DeviationRecord, error) {
	start := StartDate()
	prices := snap.Prices
	if prices == nil || prices.Len() == 0 {
		return nil, ErrNoStartPrices
	}

	// first date on or after the configured start
	startIdx := sort.Search(prices.Len(), func(ii int) bool {
		return !prices.Dates[ii].Before(start)
	})
	if startIdx >= prices.Len() {
		return nil, ErrNoStartPrices
	}
	latestIdx := prices.Len() - 1

	initialNav := viper.GetFloat64("simulation.initial_nav")
	cashTicker := viper.GetString("portfolio.cash_ticker")
	fxStart, fxLatest, fxOk := fxAnchors(snap, startIdx, latestIdx)

	reference := referenceWeights(snap, ref, cashTicker)

	records := make([]DeviationRecord, 0, len(snap.Holdings))
	var total float64

	for _, holding := range snap.Holdings {
		class := snap.ClassOf(holding.Ticker)
		alloc := holding.Weight * initialNav

		var value float64
		switch {
		case holding.Ticker == cashTicker:
			// cash holds at par
			value = alloc
			class = data.Cash
		case class == data.Commodity && fxOk:
			value = fxValue(prices.Col(holding.Ticker), startIdx, latestIdx, alloc, fxStart, fxLatest)
		default:
			value = directValue(prices.Col(holding.Ticker), startIdx, latestIdx, alloc)
		}

		total += value
		records = append(records, DeviationRecord{
			Ticker:        holding.Ticker,
			AssetClass:    class,
			InitialWeight: holding.Weight,
			CurrentValue:  value,
		})
	}

	for ii := range records {
		if total > 0 {
			records[ii].CurrentWeight = records[ii].CurrentValue / total
		}
		records[ii].ReferenceWeight = records[ii].InitialWeight
		if ref == BenchmarkWeights {
			records[ii].ReferenceWeight = reference[records[ii].Ticker]
		}
		records[ii].Deviation = records[ii].CurrentWeight - records[ii].ReferenceWeight
	}

	return records, nil
}

// directValue establishes the position at the start price and revalues it
// at the latest price. A missing or zero start price means the position
// failed to establish; its value is exactly zero.
func directValue(col []float64, startIdx, latestIdx int, alloc float64) float64 {
	if col == nil {
		return 0
	}
	startPrice := col[startIdx]
	if startPrice == 0 || math.IsNaN(startPrice) {
		return 0
	}
	return alloc / startPrice * col[latestIdx]
}

// fxValue translates the allocation into the quote currency at the start
// FX rate, establishes the position, revalues at the latest price and
// translates back at the latest FX rate
func fxValue(col []float64, startIdx, latestIdx int, alloc, fxStart, fxLatest float64) float64 {
	if col == nil {
		return 0
	}
	startPrice := col[startIdx]
	if startPrice == 0 || math.IsNaN(startPrice) {
		return 0
	}
	return alloc / fxStart / startPrice * col[latestIdx] * fxLatest
}

// fxAnchors resolves the start and latest FX rates from the configured FX
// ticker. When the series is absent or degenerate the caller falls back to
// constant-currency valuation, a documented approximation.
func fxAnchors(snap *data.Snapshot, startIdx, latestIdx int) (fxStart, fxLatest float64, ok bool) {
	fxTicker := viper.GetString("portfolio.fx_ticker")
	col := snap.Prices.Col(fxTicker)
	if col == nil {
		log.Warn().Str("FxTicker", fxTicker).Msg("fx series unavailable; valuing commodities at constant currency")
		return 0, 0, false
	}

	fxStart = col[startIdx]
	fxLatest = col[latestIdx]
	if fxStart == 0 || fxLatest == 0 || math.IsNaN(fxStart) || math.IsNaN(fxLatest) {
		log.Warn().Str("FxTicker", fxTicker).Msg("fx series degenerate; valuing commodities at constant currency")
		return 0, 0, false
	}
	return fxStart, fxLatest, true
}

// referenceWeights maps each benchmark constituent to its theoretical
// weight when reconciling against the benchmark
func referenceWeights(snap *data.Snapshot, ref ReferenceWeights, cashTicker string) map[string]float64 {
	if ref != BenchmarkWeights {
		return nil
	}
	return benchmark.TheoreticalWeights(snap.Benchmark, cashTicker, benchmark.Weights())
}
