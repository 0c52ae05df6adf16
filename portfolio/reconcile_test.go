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

package portfolio_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/dataframe"
	"github.com/mandate-vault/mv-api/portfolio"
)

func reconcileSnapshot() *data.Snapshot {
	dates := []time.Time{
		time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC),
	}

	prices := dataframe.New(dates, []string{"EQ1", "CM1", "EURUSD Curncy"}, [][]float64{
		{100, 105, 110},
		{50, 52, 55},
		{1.10, 1.15, 1.20},
	})

	return &data.Snapshot{
		Benchmark: []data.AssetRecord{
			{Ticker: "EQ1", Class: data.Equity},
			{Ticker: "CM1", Class: data.Commodity},
		},
		Prices: prices,
		Holdings: []data.Holding{
			{Ticker: "EQ1", Weight: 0.5},
			{Ticker: "CM1", Weight: 0.3},
			{Ticker: "CASH EUR", Weight: 0.2},
		},
	}
}

var _ = Describe("Reconcile", func() {
	var snap *data.Snapshot

	BeforeEach(func() {
		viper.Set("benchmark.weights.equity", 0.60)
		viper.Set("benchmark.weights.gov_bond", 0.20)
		viper.Set("benchmark.weights.commodity", 0.15)
		viper.Set("benchmark.weights.cash", 0.05)
		viper.Set("portfolio.cash_ticker", "CASH EUR")
		viper.Set("portfolio.fx_ticker", "EURUSD Curncy")
		viper.Set("simulation.start_date", "2025-10-06")
		viper.Set("simulation.initial_nav", 100_000_000.0)

		snap = reconcileSnapshot()
	})

	byTicker := func(records []portfolio.DeviationRecord) map[string]portfolio.DeviationRecord {
		m := make(map[string]portfolio.DeviationRecord, len(records))
		for _, rec := range records {
			m[rec.Ticker] = rec
		}
		return m
	}

	It("values direct holdings at quantity times latest price", func() {
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		// 50M / 100 * 110
		Expect(recs["EQ1"].CurrentValue).To(BeNumerically("~", 55_000_000, 1))
	})

	It("round-trips commodity holdings through the fx series", func() {
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		// 30M / 1.10 / 50 * 55 * 1.20
		Expect(recs["CM1"].CurrentValue).To(BeNumerically("~", 36_000_000, 1))
	})

	It("holds cash at par", func() {
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		Expect(recs["CASH EUR"].CurrentValue).To(Equal(20_000_000.0))
		Expect(recs["CASH EUR"].AssetClass).To(Equal(data.Cash))
	})

	It("normalizes current weights over the total and reports drift", func() {
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		var total float64
		for _, rec := range records {
			total += rec.CurrentWeight
		}
		Expect(total).To(BeNumerically("~", 1.0, 1e-12))

		recs := byTicker(records)
		Expect(recs["EQ1"].Deviation).To(BeNumerically("~", recs["EQ1"].CurrentWeight-0.5, 1e-12))
	})

	It("compares against benchmark theoretical weights for active weight", func() {
		records, err := portfolio.Reconcile(snap, portfolio.BenchmarkWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		Expect(recs["EQ1"].ReferenceWeight).To(BeNumerically("~", 0.60, 1e-12))
		Expect(recs["CM1"].ReferenceWeight).To(BeNumerically("~", 0.15, 1e-12))
		Expect(recs["CASH EUR"].ReferenceWeight).To(BeNumerically("~", 0.05, 1e-12))
	})

	It("falls back to constant currency when the fx series is missing", func() {
		viper.Set("portfolio.fx_ticker", "MISSING Curncy")
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		// 30M / 50 * 55
		Expect(recs["CM1"].CurrentValue).To(BeNumerically("~", 33_000_000, 1))
	})

	It("treats a zero start price as a failed position, not NaN", func() {
		snap.Prices.Vals[0][0] = 0
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		Expect(recs["EQ1"].CurrentValue).To(Equal(0.0))
		Expect(recs["EQ1"].CurrentWeight).To(Equal(0.0))

		var total float64
		for _, rec := range records {
			total += rec.CurrentWeight
		}
		Expect(total).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("uses the first date on or after a missing start date", func() {
		viper.Set("simulation.start_date", "2025-10-05")
		records, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(BeNil())

		recs := byTicker(records)
		// anchored at 2025-10-06 prices
		Expect(recs["EQ1"].CurrentValue).To(BeNumerically("~", 55_000_000, 1))
	})

	It("errors when no prices exist on or after the start date", func() {
		viper.Set("simulation.start_date", "2026-01-01")
		_, err := portfolio.Reconcile(snap, portfolio.InitialWeights)
		Expect(err).To(MatchError(portfolio.ErrNoStartPrices))
	})
})
