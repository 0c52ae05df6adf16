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
	"github.com/mandate-vault/mv-api/rates"
)

func simSnapshot(dates []time.Time, vals [][]float64) *data.Snapshot {
	return &data.Snapshot{
		Benchmark: []data.AssetRecord{
			{Ticker: "EQ1", Class: data.Equity},
			{Ticker: "GV1", Class: data.GovBond},
		},
		Returns: dataframe.New(dates, []string{"EQ1", "GV1"}, vals),
		Holdings: []data.Holding{
			{Ticker: "EQ1", Weight: 0.5},
			{Ticker: "GV1", Weight: 0.3},
			{Ticker: "CASH EUR", Weight: 0.2},
		},
	}
}

var _ = Describe("Simulate", func() {
	var drates rates.Daily

	BeforeEach(func() {
		viper.Set("benchmark.weights.equity", 0.60)
		viper.Set("benchmark.weights.gov_bond", 0.20)
		viper.Set("benchmark.weights.commodity", 0.15)
		viper.Set("benchmark.weights.cash", 0.05)
		viper.Set("portfolio.cash_ticker", "CASH EUR")
		viper.Set("simulation.start_date", "2025-10-06")

		drates = rates.Convert(0.015, 0.015, 0.01)
	})

	Context("with a single return day after the start date", func() {
		var snap *data.Snapshot

		BeforeEach(func() {
			snap = simSnapshot(
				[]time.Time{time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC)},
				[][]float64{{0.01}, {-0.02}})
		})

		It("anchors the start date at exactly 100", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())
			Expect(sim.Nav[0].Date).To(Equal(time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)))
			Expect(sim.Nav[0].Benchmark).To(Equal(100.0))
			Expect(sim.Nav[0].Portfolio).To(Equal(100.0))
		})

		It("applies the fee-net recurrence for the first day", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())

			gross := 0.5*0.01 + 0.3*(-0.02) + 0.2*drates.Cash
			expected := 100 * (1 + gross) * (1 - drates.MgmtFee)
			Expect(sim.Nav[1].Portfolio).To(BeNumerically("~", expected, 1e-9))
		})

		It("compounds the gross benchmark without fees", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())

			bench := 0.60*0.01 + 0.20*(-0.02) + 0.05*drates.Cash
			Expect(sim.Nav[1].Benchmark).To(BeNumerically("~", 100*(1+bench), 1e-9))
		})

		It("reports per-class contributions on a base-100 allocation", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())

			byClass := make(map[data.AssetClass]portfolio.ClassContribution)
			for _, contrib := range sim.Contributions {
				byClass[contrib.Class] = contrib
			}

			Expect(byClass[data.Equity].Initial).To(Equal(50.0))
			Expect(byClass[data.Equity].PnL).To(BeNumerically("~", 50*0.01, 1e-12))
			Expect(byClass[data.GovBond].PnL).To(BeNumerically("~", 30*(-0.02), 1e-12))
			Expect(byClass[data.Cash].PnL).To(BeNumerically("~", 20*drates.Cash, 1e-9))
		})
	})

	Context("when the start date itself carries a return row", func() {
		var snap *data.Snapshot

		BeforeEach(func() {
			snap = simSnapshot(
				[]time.Time{
					time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
					time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC),
				},
				[][]float64{{0.03, 0.01}, {0.01, -0.02}})
		})

		It("never charges the start row's return or fee to the portfolio", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())
			Expect(sim.Nav).To(HaveLen(2))
			Expect(sim.Nav[0].Portfolio).To(Equal(100.0))
			Expect(sim.Nav[0].Benchmark).To(Equal(100.0))

			gross := 0.5*0.01 + 0.3*(-0.02) + 0.2*drates.Cash
			Expect(sim.Nav[1].Portfolio).To(BeNumerically("~", 100*(1+gross)*(1-drates.MgmtFee), 1e-9))
		})

		It("cumulates the gross benchmark from the start row's return", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())

			day0 := 0.60*0.03 + 0.20*0.01 + 0.05*drates.Cash
			day1 := 0.60*0.01 + 0.20*(-0.02) + 0.05*drates.Cash
			Expect(sim.Nav[1].Benchmark).To(BeNumerically("~", 100*(1+day0)*(1+day1), 1e-9))
		})
	})

	Context("with several return days", func() {
		var snap *data.Snapshot

		BeforeEach(func() {
			dates := make([]time.Time, 5)
			for ii := range dates {
				dates[ii] = time.Date(2025, 10, 7+ii, 0, 0, 0, 0, time.UTC)
			}
			snap = simSnapshot(dates, [][]float64{
				{0.01, -0.005, 0.002, 0.007, -0.012},
				{0.001, 0.002, -0.001, 0.000, 0.001},
			})
		})

		It("is deterministic when replayed", func() {
			first, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())
			second, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())

			for ii := range first.Nav {
				Expect(second.Nav[ii].Portfolio).To(Equal(first.Nav[ii].Portfolio))
				Expect(second.Nav[ii].Benchmark).To(Equal(first.Nav[ii].Benchmark))
			}
		})

		It("compounds the fee every day", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())

			nav := 100.0
			for ii := 1; ii < len(sim.Nav); ii++ {
				gross := 0.5*snap.Returns.Col("EQ1")[ii-1] + 0.3*snap.Returns.Col("GV1")[ii-1] + 0.2*drates.Cash
				nav = nav * (1 + gross) * (1 - drates.MgmtFee)
				Expect(sim.Nav[ii].Portfolio).To(BeNumerically("~", nav, 1e-9))
			}
		})

		It("computes window risk metrics over days after the start", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
			Expect(err).To(BeNil())
			Expect(sim.BenchmarkRisk.Volatility).To(BeNumerically(">", 0))
			Expect(sim.PortfolioRisk.Volatility).To(BeNumerically(">", 0))
		})

		It("reports tracking error when selected", func() {
			sim, err := portfolio.Simulate(snap, drates, portfolio.TrackingError)
			Expect(err).To(BeNil())
			Expect(sim.Active.Metric).To(Equal(portfolio.TrackingError))
			Expect(sim.Active.Average).To(BeNumerically(">=", 0))
		})
	})

	It("errors when no return data exists on or after the start date", func() {
		snap := simSnapshot(
			[]time.Time{time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
			[][]float64{{0.01}, {-0.02}})
		_, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
		Expect(err).To(MatchError(portfolio.ErrNoSimulationDays))
	})
})
