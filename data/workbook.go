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
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx/v3"

	"github.com/mandate-vault/mv-api/dataframe"
)

const (
	benchmarkSheet = "Benchmark"
	priceSheet     = "Historique Prix"
	portfolioSheet = "Portefeuille"

	tickerColumn = "BBG Ticker"
	classColumn  = "Asset Class"

	// fixed column positions in the Portefeuille sheet (col C and col F)
	portfolioTickerCol = 2
	portfolioWeightCol = 5

	// metadata rows between the price sheet header and the first data row
	priceMetaRows = 2

	weightSumTolerance = 0.01
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "01-02-06"}

// LoadWorkbook reads the three mandate tables from an xlsx workbook and
// returns a validated snapshot. Schema violations fail the whole load; no
// partial data is returned.
func LoadWorkbook(path string) (*Snapshot, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	records, err := loadBenchmark(wb)
	if err != nil {
		return nil, err
	}

	prices, err := loadPrices(wb)
	if err != nil {
		return nil, err
	}

	holdings, err := loadPortfolio(wb)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Benchmark: records,
		Prices:    prices,
		Returns:   prices.PercentChange(),
		Holdings:  holdings,
	}

	log.Info().Str("Workbook", path).Int("BenchmarkConstituents", len(records)).
		Int("PriceRows", prices.Len()).Int("Holdings", len(holdings)).
		Msg("loaded workbook snapshot")

	return snap, nil
}

func loadBenchmark(wb *xlsx.File) ([]AssetRecord, error) {
	sheet, ok := wb.Sheet[benchmarkSheet]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrSchema, benchmarkSheet)
	}

	tickerIdx := -1
	classIdx := -1
	for col := 0; col < sheet.MaxCol; col++ {
		cell, err := sheet.Cell(0, col)
		if err != nil {
			continue
		}
		switch strings.TrimSpace(cell.Value) {
		case tickerColumn:
			tickerIdx = col
		case classColumn:
			classIdx = col
		}
	}

	if tickerIdx == -1 || classIdx == -1 {
		return nil, fmt.Errorf("%w: sheet %q must have columns %q and %q", ErrSchema, benchmarkSheet, tickerColumn, classColumn)
	}

	records := make([]AssetRecord, 0, sheet.MaxRow)
	for row := 1; row < sheet.MaxRow; row++ {
		tickerCell, err := sheet.Cell(row, tickerIdx)
		if err != nil {
			continue
		}
		ticker := strings.TrimSpace(tickerCell.Value)
		if ticker == "" {
			continue
		}

		classCell, err := sheet.Cell(row, classIdx)
		if err != nil {
			continue
		}

		records = append(records, AssetRecord{
			Ticker: ticker,
			Class:  ParseAssetClass(classCell.Value),
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrNoData, benchmarkSheet)
	}

	return records, nil
}

func loadPrices(wb *xlsx.File) (*dataframe.DataFrame, error) {
	sheet, ok := wb.Sheet[priceSheet]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrSchema, priceSheet)
	}

	if sheet.MaxCol < 2 {
		return nil, fmt.Errorf("%w: sheet %q must have a date column and at least one ticker column", ErrSchema, priceSheet)
	}

	colNames := make([]string, 0, sheet.MaxCol-1)
	colIdxs := make([]int, 0, sheet.MaxCol-1)
	for col := 1; col < sheet.MaxCol; col++ {
		cell, err := sheet.Cell(0, col)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(cell.Value)
		if name == "" {
			continue
		}
		colNames = append(colNames, name)
		colIdxs = append(colIdxs, col)
	}

	dates := make([]time.Time, 0, sheet.MaxRow)
	vals := make([][]float64, len(colNames))

	for row := 1 + priceMetaRows; row < sheet.MaxRow; row++ {
		dateCell, err := sheet.Cell(row, 0)
		if err != nil || strings.TrimSpace(dateCell.Value) == "" {
			continue
		}

		date, err := parseDate(dateCell)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot parse date %q in sheet %q row %d", ErrSchema, dateCell.Value, priceSheet, row)
		}

		if len(dates) > 0 && !dates[len(dates)-1].Before(date) {
			return nil, fmt.Errorf("%w: price dates must be ascending and unique (row %d)", ErrSchema, row)
		}

		dates = append(dates, date)
		for ii, colIdx := range colIdxs {
			cell, err := sheet.Cell(row, colIdx)
			if err != nil {
				vals[ii] = append(vals[ii], math.NaN())
				continue
			}
			v, err := cell.Float()
			if err != nil {
				v = math.NaN()
			}
			vals[ii] = append(vals[ii], v)
		}
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no price rows", ErrNoData, priceSheet)
	}

	prices := dataframe.New(dates, colNames, vals)
	return prices.ForwardFill().BackFill(), nil
}

func loadPortfolio(wb *xlsx.File) ([]Holding, error) {
	sheet, ok := wb.Sheet[portfolioSheet]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrSchema, portfolioSheet)
	}

	if sheet.MaxCol <= portfolioWeightCol {
		return nil, fmt.Errorf("%w: sheet %q must have at least %d columns", ErrSchema, portfolioSheet, portfolioWeightCol+1)
	}

	holdings := make([]Holding, 0, sheet.MaxRow)
	// row 0 is a banner, row 1 the column header
	for row := 2; row < sheet.MaxRow; row++ {
		tickerCell, err := sheet.Cell(row, portfolioTickerCol)
		if err != nil {
			continue
		}
		ticker := strings.TrimSpace(tickerCell.Value)
		if ticker == "" {
			continue
		}

		weightCell, err := sheet.Cell(row, portfolioWeightCol)
		if err != nil {
			continue
		}
		weight, err := weightCell.Float()
		if err != nil || math.IsNaN(weight) {
			continue
		}

		holdings = append(holdings, Holding{Ticker: ticker, Weight: weight})
	}

	if len(holdings) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no holdings", ErrNoData, portfolioSheet)
	}

	return normalizeWeights(holdings)
}

// normalizeWeights reconciles the raw weight column to fractions summing to
// 1.0, accepting the 0-100 percentage convention
func normalizeWeights(holdings []Holding) ([]Holding, error) {
	total := 0.0
	for _, h := range holdings {
		total += h.Weight
	}

	if total <= 0 {
		return nil, fmt.Errorf("%w: sum of weights is %f", ErrWeightSum, total)
	}

	switch {
	case math.Abs(total-100.0) <= 1.0:
		for ii := range holdings {
			holdings[ii].Weight /= 100.0
		}
	case math.Abs(total-1.0) > weightSumTolerance:
		log.Warn().Float64("Total", total).Msg("sum of weights is neither 1 nor 100; normalizing by total")
		for ii := range holdings {
			holdings[ii].Weight /= total
		}
	}

	finalSum := 0.0
	for _, h := range holdings {
		finalSum += h.Weight
	}
	if math.Abs(finalSum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("%w: normalized sum is %f", ErrWeightSum, finalSum)
	}

	return holdings, nil
}

func parseDate(cell *xlsx.Cell) (time.Time, error) {
	if cell.IsTime() {
		t, err := cell.GetTime(false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	raw := strings.TrimSpace(cell.Value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
