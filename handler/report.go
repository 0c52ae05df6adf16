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

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mandate-vault/mv-api/analytics"
	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/optimize"
	"github.com/mandate-vault/mv-api/portfolio"
	"github.com/mandate-vault/mv-api/rates"
	"github.com/mandate-vault/mv-api/report"
)

// fullPeriod loads a snapshot and runs the full-period analytics pass
func fullPeriod() (*data.Snapshot, *analytics.Result, error) {
	snap, err := mgr.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	full, err := analytics.FullPeriod(snap, rates.FromConfig())
	if err != nil {
		return nil, nil, err
	}
	return snap, full, nil
}

func httpError(c *fiber.Ctx, err error) error {
	log.Error().Err(err).Str("Route", c.Route().Path).Msg("analytics pass failed")
	switch {
	case errors.Is(err, data.ErrSchema), errors.Is(err, data.ErrWeightSum):
		return fiber.ErrUnprocessableEntity
	case errors.Is(err, analytics.ErrNoReturns), errors.Is(err, analytics.ErrNoTickers),
		errors.Is(err, portfolio.ErrNoSimulationDays), errors.Is(err, portfolio.ErrNoStartPrices):
		return fiber.ErrNotFound
	}
	return fiber.ErrInternalServerError
}

// GetReport returns every section of the analytics pass in one document
func GetReport(c *fiber.Ctx) error {
	rep, err := report.Build(mgr)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(rep)
}

// GetIndicators returns the per-asset full-period indicator table
func GetIndicators(c *fiber.Ctx) error {
	_, full, err := fullPeriod()
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(full.Indicators)
}

// GetBenchmarkIndicators returns the benchmark's full-period risk metrics
func GetBenchmarkIndicators(c *fiber.Ctx) error {
	_, full, err := fullPeriod()
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(full.Benchmark)
}

// GetCorrelation returns the universe-plus-cash correlation matrix
func GetCorrelation(c *fiber.Ctx) error {
	_, full, err := fullPeriod()
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(fiber.Map{
		"tickers":     full.PanelTickers,
		"correlation": full.Correlation,
	})
}

// GetNav returns the base-100 NAV comparison from the simulation start date
func GetNav(c *fiber.Ctx) error {
	sim, err := simulate()
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(sim.Nav)
}

// GetActiveRisk returns the rolling and average active risk summary. The
// metric query parameter selects information-ratio (default) or
// tracking-error.
func GetActiveRisk(c *fiber.Ctx) error {
	metric := portfolio.ActiveRiskMetric(c.Query("metric", string(portfolio.InformationRatio)))
	if metric != portfolio.InformationRatio && metric != portfolio.TrackingError {
		return fiber.ErrBadRequest
	}

	snap, err := mgr.Snapshot()
	if err != nil {
		return httpError(c, err)
	}
	sim, err := portfolio.Simulate(snap, rates.FromConfig(), metric)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(sim.Active)
}

// GetContribution returns the per-class profit and loss contribution table
func GetContribution(c *fiber.Ctx) error {
	sim, err := simulate()
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(sim.Contributions)
}

// GetDrift returns current weights compared against the initial allocation
func GetDrift(c *fiber.Ctx) error {
	return reconcile(c, portfolio.InitialWeights)
}

// GetActiveWeight returns current weights compared against the benchmark
// theoretical weights
func GetActiveWeight(c *fiber.Ctx) error {
	return reconcile(c, portfolio.BenchmarkWeights)
}

// GetOptimizer returns the max-Sharpe result, including structured
// infeasibility or non-convergence
func GetOptimizer(c *fiber.Ctx) error {
	_, full, err := fullPeriod()
	if err != nil {
		return httpError(c, err)
	}

	res, err := optimize.MaxSharpe(full.PanelTickers, full.Mu, full.Sigma, rates.FromConfig().RiskFree)
	if errors.Is(err, optimize.ErrDisabled) {
		return fiber.ErrServiceUnavailable
	}
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(res)
}

func simulate() (*portfolio.Simulation, error) {
	snap, err := mgr.Snapshot()
	if err != nil {
		return nil, err
	}
	return portfolio.Simulate(snap, rates.FromConfig(), portfolio.InformationRatio)
}

func reconcile(c *fiber.Ctx, ref portfolio.ReferenceWeights) error {
	snap, err := mgr.Snapshot()
	if err != nil {
		return httpError(c, err)
	}
	records, err := portfolio.Reconcile(snap, ref)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(records)
}
