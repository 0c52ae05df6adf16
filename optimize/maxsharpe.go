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

// Package optimize searches for the maximum-Sharpe long-only portfolio
// under a per-asset weight cap. Infeasible or non-convergent runs return a
// structured Result rather than an error so callers can report them.
package optimize

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
	gonumopt "gonum.org/v1/gonum/optimize"

	"github.com/mandate-vault/mv-api/indicators"
)

const (
	// penalty weight on the sum-to-one budget constraint
	penaltyWeight = 1000.0

	// weights below this threshold are dropped from the final allocation
	minWeight = 1e-6
)

var (
	ErrDisabled  = errors.New("optimizer is disabled")
	ErrBadInputs = errors.New("optimizer inputs are empty or mismatched")
)

// Result is the outcome of a max-Sharpe search. Feasible is false when
// the weight cap cannot cover the full budget; Converged is false when
// every solver attempt failed. Weights carries only strictly positive
// allocations and is nil unless both flags are true.
type Result struct {
	Feasible  bool               `json:"feasible"`
	Converged bool               `json:"converged"`
	Reason    string             `json:"reason,omitempty"`
	Weights   map[string]float64 `json:"weights,omitempty"`
	Sharpe    float64            `json:"sharpe"`
}

// MaxSharpe maximizes the annualized Sharpe ratio of w'mu over
// sqrt(w'Sigma w) subject to 0 <= w_i <= cap and sum(w) = 1. mu and sigma
// are daily statistics over the tickers, rfDaily the daily risk-free rate.
func MaxSharpe(tickers []string, mu []float64, sigma *mat.SymDense, rfDaily float64) (*Result, error) {
	if !viper.GetBool("optimizer.enabled") {
		return nil, ErrDisabled
	}

	n := len(tickers)
	if n == 0 || len(mu) != n || sigma == nil || sigma.SymmetricDim() != n {
		return nil, ErrBadInputs
	}

	cap := viper.GetFloat64("optimizer.max_weight")

	// feasibility gate: the cap must allow the budget to be fully allocated
	if cap*float64(n) < 1 {
		log.Warn().Float64("MaxWeight", cap).Int("NumAssets", n).Msg("weight cap cannot cover the full budget")
		return &Result{
			Feasible: false,
			Reason:   "weight cap times asset count is below 1; the budget cannot be fully allocated",
			Sharpe:   math.NaN(),
		}, nil
	}

	objective := func(w []float64) float64 {
		proj := project(w, cap)
		sharpe := sharpeRatio(proj, mu, sigma, rfDaily)
		if math.IsNaN(sharpe) {
			sharpe = math.Inf(-1)
		}

		var sum float64
		for _, v := range proj {
			sum += v
		}
		penalty := penaltyWeight * (sum - 1) * (sum - 1)

		return -sharpe + penalty
	}

	problem := gonumopt.Problem{Func: objective}
	initial := greedyInitial(n, cap)

	result, err := gonumopt.Minimize(problem, initial, &gonumopt.Settings{}, &gonumopt.NelderMead{})
	if err != nil || !accepted(result.Status) {
		log.Debug().Err(err).Msg("nelder-mead failed, retrying with bfgs")
		result, err = gonumopt.Minimize(problem, initial, &gonumopt.Settings{}, &gonumopt.BFGS{})
	}

	if err != nil || !accepted(result.Status) {
		log.Warn().Err(err).Msg("max-sharpe search did not converge")
		return &Result{
			Feasible:  true,
			Converged: false,
			Reason:    "solver did not converge from the feasible starting point",
			Sharpe:    math.NaN(),
		}, nil
	}

	final := project(result.X, cap)
	normalize(final)

	weights := make(map[string]float64, n)
	for ii, w := range final {
		if w >= minWeight {
			weights[tickers[ii]] = w
		}
	}

	return &Result{
		Feasible:  true,
		Converged: true,
		Weights:   weights,
		Sharpe:    sharpeRatio(final, mu, sigma, rfDaily),
	}, nil
}

func accepted(status gonumopt.Status) bool {
	switch status {
	case gonumopt.Success, gonumopt.GradientThreshold, gonumopt.FunctionConvergence:
		return true
	}
	return false
}

// greedyInitial fills assets to the cap in order until the budget is
// spent, producing a feasible starting point
func greedyInitial(n int, cap float64) []float64 {
	w := make([]float64, n)
	remaining := 1.0
	for ii := 0; ii < n && remaining > 0; ii++ {
		alloc := math.Min(cap, remaining)
		w[ii] = alloc
		remaining -= alloc
	}
	return w
}

// project clips each weight into [0, cap]
func project(w []float64, cap float64) []float64 {
	proj := make([]float64, len(w))
	for ii, v := range w {
		proj[ii] = math.Min(math.Max(v, 0), cap)
	}
	return proj
}

func normalize(w []float64) {
	var sum float64
	for ii, v := range w {
		if v < minWeight {
			w[ii] = 0
			continue
		}
		sum += v
	}
	if sum <= 0 {
		return
	}
	for ii := range w {
		w[ii] /= sum
	}
}

// sharpeRatio computes the annualized Sharpe ratio for the weight vector
func sharpeRatio(w, mu []float64, sigma *mat.SymDense, rfDaily float64) float64 {
	var ret float64
	for ii, v := range w {
		ret += v * mu[ii]
	}

	wVec := mat.NewVecDense(len(w), w)
	var tmp mat.VecDense
	tmp.MulVec(sigma, wVec)
	variance := mat.Dot(wVec, &tmp)
	if variance <= 0 {
		return math.NaN()
	}

	std := math.Sqrt(variance) * math.Sqrt(indicators.TradingDays)
	excess := (ret - rfDaily) * indicators.TradingDays
	return excess / std
}
