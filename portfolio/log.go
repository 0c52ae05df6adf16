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
	"github.com/rs/zerolog"
)

func (o *NavPoint) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Date", o.Date).Float64("Benchmark", o.Benchmark).Float64("Portfolio", o.Portfolio)
}

func (o *ClassContribution) MarshalZerologObject(e *zerolog.Event) {
	e.Str("AssetClass", string(o.Class)).Float64("Initial", o.Initial).Float64("Final", o.Final).Float64("PnL", o.PnL)
}

// DeviationList renders a reconciliation result as a zerolog array
type DeviationList []DeviationRecord

func (l DeviationList) MarshalZerologArray(a *zerolog.Array) {
	for ii := range l {
		a.Object(&l[ii])
	}
}

func (o *DeviationRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", o.Ticker)
	e.Str("AssetClass", string(o.AssetClass))
	e.Float64("InitialWeight", o.InitialWeight)
	e.Float64("ReferenceWeight", o.ReferenceWeight)
	e.Float64("CurrentValue", o.CurrentValue)
	e.Float64("CurrentWeight", o.CurrentWeight)
	e.Float64("Deviation", o.Deviation)
}

func (sim *Simulation) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Start", sim.Start)
	e.Int("NavPoints", len(sim.Nav))
	if len(sim.Nav) > 0 {
		e.Object("LatestNav", &sim.Nav[len(sim.Nav)-1])
	}
	contribs := zerolog.Arr()
	for ii := range sim.Contributions {
		contribs.Object(&sim.Contributions[ii])
	}
	e.Array("Contributions", contribs)
	e.Float64("BenchmarkVolatility", sim.BenchmarkRisk.Volatility)
	e.Float64("PortfolioVolatility", sim.PortfolioRisk.Volatility)
	e.Str("ActiveMetric", string(sim.Active.Metric))
	e.Float64("ActiveAverage", sim.Active.Average)
}
