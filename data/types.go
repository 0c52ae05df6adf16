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

package data

import (
	"strings"

	"github.com/mandate-vault/mv-api/dataframe"
)

// AssetClass groups instruments for benchmark composition and risk reporting
type AssetClass string

const (
	Equity    AssetClass = "Equity"
	GovBond   AssetClass = "Government Bond"
	Commodity AssetClass = "Commodity"
	Cash      AssetClass = "Cash"
	Unknown   AssetClass = "Unknown"
)

// ParseAssetClass converts a workbook class label into an AssetClass. The
// source workbook uses the mandate's French labels; English labels are
// accepted as well.
func ParseAssetClass(label string) AssetClass {
	switch strings.TrimSpace(label) {
	case "Action", "Equity":
		return Equity
	case "Gov bond", "Government Bond":
		return GovBond
	case "Commodities", "Commodity":
		return Commodity
	case "Cash":
		return Cash
	default:
		return Unknown
	}
}

// AssetRecord maps a ticker to its asset class; the benchmark definition
// table is the source of truth
type AssetRecord struct {
	Ticker string     `json:"ticker"`
	Class  AssetClass `json:"assetClass"`
}

// Holding is a single portfolio position expressed as a fraction of NAV
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Snapshot is one immutable, validated view of the three workbook tables.
// Prices have been forward- and back-filled; Returns is the derived
// percent-change frame (one fewer row than Prices).
type Snapshot struct {
	Benchmark []AssetRecord
	Prices    *dataframe.DataFrame
	Returns   *dataframe.DataFrame
	Holdings  []Holding
}

// ClassOf returns the asset class recorded for ticker in the benchmark
// table; Unknown when the ticker is not a benchmark constituent
func (snap *Snapshot) ClassOf(ticker string) AssetClass {
	ticker = strings.TrimSpace(ticker)
	for _, record := range snap.Benchmark {
		if record.Ticker == ticker {
			return record.Class
		}
	}
	return Unknown
}
