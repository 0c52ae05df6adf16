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

// Package report assembles the full analytics pass into a single result
// for the CLI and HTTP surfaces. Load and normalization failures abort the
// build; optimizer and simulation failures degrade to absent sections.
package report

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mandate-vault/mv-api/analytics"
	"github.com/mandate-vault/mv-api/data"
	"github.com/mandate-vault/mv-api/optimize"
	"github.com/mandate-vault/mv-api/portfolio"
	"github.com/mandate-vault/mv-api/rates"
)

// Report is the complete output of one analytics pass. Sections that could
// not be computed are nil.
type Report struct {
	Analytics    *analytics.Result            `json:"analytics"`
	Simulation   *portfolio.Simulation        `json:"simulation,omitempty"`
	Drift        []portfolio.DeviationRecord  `json:"drift,omitempty"`
	ActiveWeight []portfolio.DeviationRecord  `json:"activeWeight,omitempty"`
	Optimizer    *optimize.Result             `json:"optimizer,omitempty"`
}

// Build loads a snapshot from the manager and runs every section of the
// analytics pass over it
func Build(mgr *data.Manager) (*Report, error) {
	snap, err := mgr.Snapshot()
	if err != nil {
		return nil, err
	}
	return Run(snap)
}

// Run executes the full pass over an already loaded snapshot
func Run(snap *data.Snapshot) (*Report, error) {
	drates := rates.FromConfig()

	full, err := analytics.FullPeriod(snap, drates)
	if err != nil {
		return nil, err
	}

	rep := &Report{Analytics: full}

	sim, err := portfolio.Simulate(snap, drates, portfolio.InformationRatio)
	if err != nil {
		log.Warn().Err(err).Msg("nav simulation unavailable")
	} else {
		log.Debug().Object("Simulation", sim).Msg("nav simulation complete")
		rep.Simulation = sim
	}

	if drift, err := portfolio.Reconcile(snap, portfolio.InitialWeights); err != nil {
		log.Warn().Err(err).Msg("drift reconciliation unavailable")
	} else {
		log.Debug().Array("Drift", portfolio.DeviationList(drift)).Msg("drift reconciliation complete")
		rep.Drift = drift
	}

	if active, err := portfolio.Reconcile(snap, portfolio.BenchmarkWeights); err != nil {
		log.Warn().Err(err).Msg("active weight reconciliation unavailable")
	} else {
		log.Debug().Array("ActiveWeight", portfolio.DeviationList(active)).Msg("active weight reconciliation complete")
		rep.ActiveWeight = active
	}

	opt, err := optimize.MaxSharpe(full.PanelTickers, full.Mu, full.Sigma, drates.RiskFree)
	switch {
	case errors.Is(err, optimize.ErrDisabled):
		log.Debug().Msg("optimizer disabled; omitting optimized weights")
	case err != nil:
		log.Warn().Err(err).Msg("optimizer unavailable")
	default:
		rep.Optimizer = opt
	}

	return rep, nil
}
