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

// Package portfolio simulates the fee-net NAV path of the held portfolio
// against the synthetic benchmark and reconciles current weights against an
// initial or benchmark reference.
package portfolio

import (
	"errors"
	"time"

	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/indicators"
)

// ActiveRiskMetric selects how active returns are summarized
type ActiveRiskMetric string

const (
	InformationRatio ActiveRiskMetric = "information-ratio"
	TrackingError    ActiveRiskMetric = "tracking-error"
)

// ReferenceWeights selects the comparison baseline for the reconciler
type ReferenceWeights string

const (
	InitialWeights   ReferenceWeights = "initial"
	BenchmarkWeights ReferenceWeights = "benchmark"
)

var (
	ErrNoStartPrices    = errors.New("cannot find start prices on or after the simulation start date")
	ErrNoSimulationDays = errors.New("no return data on or after the simulation start date")
)

// NavPoint is one row of the base-100 NAV comparison
type NavPoint struct {
	Date      time.Time `json:"date"`
	Benchmark float64   `json:"benchmark"`
	Portfolio float64   `json:"portfolio"`
}

// ActiveRisk summarizes net active returns over the simulation window.
// Average is the mean of the rolling series when that series is non-empty,
// otherwise the whole-window estimate.
type ActiveRisk struct {
	Metric  ActiveRiskMetric `json:"metric"`
	Average float64          `json:"average"`
	Rolling []float64        `json:"rolling"`
}

// ClassContribution is the simulated profit and loss of one asset class on
// a base-100 initial allocation
type ClassContribution struct {
	Class   data.AssetClass `json:"assetClass"`
	Initial float64         `json:"initial"`
	Final   float64         `json:"final"`
	PnL     float64         `json:"pnl"`
}

// Simulation is the full output of one NAV simulation run
type Simulation struct {
	Start         time.Time               `json:"start"`
	Nav           []NavPoint              `json:"nav"`
	BenchmarkRisk indicators.RiskMetrics  `json:"benchmarkRisk"`
	PortfolioRisk indicators.RiskMetrics  `json:"portfolioRisk"`
	Active        ActiveRisk              `json:"active"`
	Contributions []ClassContribution     `json:"contributions"`
}

// DeviationRecord is one row of the drift or active-weight table
type DeviationRecord struct {
	Ticker          string          `json:"ticker"`
	AssetClass      data.AssetClass `json:"assetClass"`
	InitialWeight   float64         `json:"initialWeight"`
	ReferenceWeight float64         `json:"referenceWeight"`
	CurrentValue    float64         `json:"currentValue"`
	CurrentWeight   float64         `json:"currentWeight"`
	Deviation       float64         `json:"deviation"`
}
