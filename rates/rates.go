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

// Package rates converts the mandate's annual rates to their daily
// equivalents on a 365-day calendar basis.
package rates

import (
	"math"

	"github.com/spf13/viper"
)

// CalendarDays is the day-count basis for rate conversion and fee accrual
const CalendarDays = 365

// Daily holds the per-day equivalents of the mandate's annual rates
type Daily struct {
	Cash     float64
	RiskFree float64
	MgmtFee  float64
}

// Convert derives daily rates from annual ones. Cash and risk-free rates
// compound; the management fee accrues pro-rata (annual/365). The asymmetry
// follows the mandate: yields compound, fees are a linear daily charge.
func Convert(cashAnnual, riskFreeAnnual, mgmtFeeAnnual float64) Daily {
	return Daily{
		Cash:     math.Pow(1.0+cashAnnual, 1.0/CalendarDays) - 1.0,
		RiskFree: math.Pow(1.0+riskFreeAnnual, 1.0/CalendarDays) - 1.0,
		MgmtFee:  mgmtFeeAnnual / CalendarDays,
	}
}

// FromConfig reads the annual rates from configuration and converts them
func FromConfig() Daily {
	return Convert(
		viper.GetFloat64("rates.cash_annual"),
		viper.GetFloat64("rates.risk_free_annual"),
		viper.GetFloat64("fees.management_annual"),
	)
}
