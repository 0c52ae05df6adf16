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

import "errors"

var (
	// ErrSchema indicates a workbook sheet is missing or does not match the
	// expected column layout; the whole load fails
	ErrSchema = errors.New("workbook schema error")

	// ErrWeightSum indicates portfolio weights could not be reconciled to
	// sum to 1.0 within tolerance
	ErrWeightSum = errors.New("portfolio weights do not sum to 1.0")

	// ErrNoData indicates a sheet parsed correctly but contained no usable rows
	ErrNoData = errors.New("no usable data rows")
)
