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

package dataframe

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] += scalar
		}
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] *= scalar
		}
	}
	return df
}

// Mul multiplies all columns in dataframe df by the corresponding column in dataframe
// other and returns a new dataframe
func (df *DataFrame) Mul(other *DataFrame) *DataFrame {
	df = df.Copy()

	otherMap := make(map[string]int, len(other.ColNames))
	for idx, val := range other.ColNames {
		otherMap[val] = idx
	}

	for idx, colName := range df.ColNames {
		if otherIdx, ok := otherMap[colName]; ok {
			floats.Mul(df.Vals[idx], other.Vals[otherIdx])
		}
	}
	return df
}

// CumProd computes the cumulative product of each column and returns a new dataframe
func (df *DataFrame) CumProd() *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		prod := 1.0
		for rowIdx := range df.Vals[colIdx] {
			prod *= df.Vals[colIdx][rowIdx]
			df.Vals[colIdx][rowIdx] = prod
		}
	}
	return df
}

// ForwardFill replaces NaN values with the last preceding non-NaN value in the
// same column and returns a new dataframe. Leading NaNs are left in place.
func (df *DataFrame) ForwardFill() *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		last := math.NaN()
		for rowIdx := range df.Vals[colIdx] {
			v := df.Vals[colIdx][rowIdx]
			if math.IsNaN(v) {
				df.Vals[colIdx][rowIdx] = last
			} else {
				last = v
			}
		}
	}
	return df
}

// BackFill replaces NaN values with the next following non-NaN value in the
// same column and returns a new dataframe. Trailing NaNs are left in place.
func (df *DataFrame) BackFill() *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		next := math.NaN()
		for rowIdx := len(df.Vals[colIdx]) - 1; rowIdx >= 0; rowIdx-- {
			v := df.Vals[colIdx][rowIdx]
			if math.IsNaN(v) {
				df.Vals[colIdx][rowIdx] = next
			} else {
				next = v
			}
		}
	}
	return df
}

// PercentChange computes the percentage change between consecutive rows for each
// column and returns a new dataframe. The first row is dropped, so the result
// has one fewer row than the input.
func (df *DataFrame) PercentChange() *DataFrame {
	if df.Len() < 2 {
		return &DataFrame{
			ColNames: df.ColNames,
			Dates:    []time.Time{},
			Vals:     make([][]float64, len(df.ColNames)),
		}
	}

	newVals := make([][]float64, len(df.Vals))
	for colIdx, col := range df.Vals {
		newVals[colIdx] = make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			newVals[colIdx][rowIdx-1] = col[rowIdx]/col[rowIdx-1] - 1.0
		}
	}

	newDates := make([]time.Time, len(df.Dates)-1)
	copy(newDates, df.Dates[1:])

	return &DataFrame{
		ColNames: df.ColNames,
		Dates:    newDates,
		Vals:     newVals,
	}
}

// AlignTo restricts df to the dates that also appear in other, preserving order,
// and returns a new dataframe
func (df *DataFrame) AlignTo(other *DataFrame) *DataFrame {
	otherDates := make(map[int64]bool, len(other.Dates))
	for _, date := range other.Dates {
		otherDates[date.Unix()] = true
	}

	newDates := make([]time.Time, 0, len(df.Dates))
	newVals := make([][]float64, len(df.Vals))

	for rowIdx, date := range df.Dates {
		if !otherDates[date.Unix()] {
			continue
		}
		newDates = append(newDates, date)
		for colIdx, col := range df.Vals {
			newVals[colIdx] = append(newVals[colIdx], col[rowIdx])
		}
	}

	return &DataFrame{
		ColNames: df.ColNames,
		Dates:    newDates,
		Vals:     newVals,
	}
}
