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

// Package benchmark builds the synthetic composite benchmark: fixed class
// weights over equal-weighted class average returns plus a constant cash
// leg. The composite is rebalanced daily to the fixed weights with no
// rebalancing cost. It is a reporting reference, not a tradable index.
package benchmark

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/dataframe"
)

// ColName is the column name of the synthesized benchmark return series
const ColName = "Benchmark"

// Classes holds the benchmark constituents present in the price history,
// bucketed by asset class. Cash is handled by name, not classification.
type Classes struct {
	Equity    []string
	GovBond   []string
	Commodity []string
}

// All returns every classified ticker in a stable order
func (c Classes) All() []string {
	all := make([]string, 0, len(c.Equity)+len(c.GovBond)+len(c.Commodity))
	all = append(all, c.Equity...)
	all = append(all, c.GovBond...)
	all = append(all, c.Commodity...)
	return all
}

// ClassTickers buckets the benchmark constituents by asset class, keeping
// only tickers that actually appear in the available price columns. Tickers
// in the benchmark table but absent from the price history are silently
// excluded.
func ClassTickers(records []data.AssetRecord, available []string) Classes {
	availSet := make(map[string]bool, len(available))
	for _, col := range available {
		availSet[strings.TrimSpace(col)] = true
	}

	var classes Classes
	for _, record := range records {
		ticker := strings.TrimSpace(record.Ticker)
		if !availSet[ticker] {
			continue
		}
		switch record.Class {
		case data.Equity:
			classes.Equity = append(classes.Equity, ticker)
		case data.GovBond:
			classes.GovBond = append(classes.GovBond, ticker)
		case data.Commodity:
			classes.Commodity = append(classes.Commodity, ticker)
		}
	}

	return classes
}

// Weights returns the fixed benchmark class weights from configuration
// (60/20/15/5 policy by default)
func Weights() map[data.AssetClass]float64 {
	return map[data.AssetClass]float64{
		data.Equity:    viper.GetFloat64("benchmark.weights.equity"),
		data.GovBond:   viper.GetFloat64("benchmark.weights.gov_bond"),
		data.Commodity: viper.GetFloat64("benchmark.weights.commodity"),
		data.Cash:      viper.GetFloat64("benchmark.weights.cash"),
	}
}

// Returns synthesizes the gross daily benchmark return series over the
// dates of rets. Each class contributes the equal-weighted mean return of
// its constituents (zero when the class has no constituents); cash
// contributes the constant daily cash rate.
func Returns(rets *dataframe.DataFrame, classes Classes, cashDaily float64, weights map[data.AssetClass]float64) *dataframe.DataFrame {
	vals := make([]float64, rets.Len())

	for rowIdx := range rets.Dates {
		composite := weights[data.Cash] * cashDaily
		composite += weights[data.Equity] * classMean(rets, classes.Equity, rowIdx)
		composite += weights[data.GovBond] * classMean(rets, classes.GovBond, rowIdx)
		composite += weights[data.Commodity] * classMean(rets, classes.Commodity, rowIdx)
		vals[rowIdx] = composite
	}

	dates := make([]time.Time, len(rets.Dates))
	copy(dates, rets.Dates)

	return dataframe.New(dates, []string{ColName}, [][]float64{vals})
}

// TheoreticalWeights distributes the benchmark class weights across the
// individual constituents: each class weight is split equally among the
// constituents of that class, and the Cash weight is assigned wholly to
// the cash ticker. The result sums to 1 for any constituent partition.
func TheoreticalWeights(records []data.AssetRecord, cashTicker string, weights map[data.AssetClass]float64) map[string]float64 {
	counts := make(map[data.AssetClass]int, 3)
	for _, record := range records {
		counts[record.Class]++
	}

	theo := make(map[string]float64, len(records)+1)
	for _, record := range records {
		if record.Class == data.Cash {
			continue // the Cash weight goes wholly to the cash ticker
		}
		w, ok := weights[record.Class]
		if !ok || counts[record.Class] == 0 {
			log.Debug().Str("Ticker", record.Ticker).Str("AssetClass", string(record.Class)).Msg("constituent has no benchmark class weight")
			continue
		}
		theo[strings.TrimSpace(record.Ticker)] = w / float64(counts[record.Class])
	}

	theo[cashTicker] = weights[data.Cash]
	return theo
}

func classMean(rets *dataframe.DataFrame, tickers []string, rowIdx int) float64 {
	if len(tickers) == 0 {
		return 0
	}

	sum := 0.0
	cnt := 0
	for _, ticker := range tickers {
		colIdx := rets.ColIndex(ticker)
		if colIdx == -1 {
			continue
		}
		sum += rets.Vals[colIdx][rowIdx]
		cnt++
	}

	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}
