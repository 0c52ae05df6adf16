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

package dataframe_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/mandate-vault/mv-api/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})
	})

	Context("with a week of values in two columns", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			dates := make([]time.Time, 5)
			for ii := range dates {
				dates[ii] = time.Date(2025, 10, 6+ii, 0, 0, 0, 0, time.UTC)
			}
			df = dataframe.New(dates, []string{"AAA", "BBB"}, [][]float64{
				{1, 2, 3, 4, 5},
				{10, 20, 30, 40, 50},
			})
		})

		It("returns the named column", func() {
			Expect(df.Col("BBB")).To(Equal([]float64{10, 20, 30, 40, 50}))
		})

		It("returns nil for a missing column", func() {
			Expect(df.Col("CCC")).To(BeNil())
		})

		It("returns the row for a date", func() {
			row, ok := df.Row(time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC))
			Expect(ok).To(BeTrue())
			Expect(row["AAA"]).To(Equal(3.0))
			Expect(row["BBB"]).To(Equal(30.0))
		})

		It("trims to an inclusive date range", func() {
			trimmed := df.Trim(
				time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC))
			Expect(trimmed.Len()).To(Equal(3))
			Expect(trimmed.Col("AAA")).To(Equal([]float64{2, 3, 4}))
		})

		It("trims with a begin date before the index", func() {
			trimmed := df.Trim(
				time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				df.End())
			Expect(trimmed.Len()).To(Equal(5))
		})

		It("prepends a row before the first date", func() {
			anchored := df.PrependRow(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), 0, 0)
			Expect(anchored.Len()).To(Equal(6))
			Expect(anchored.Start()).To(Equal(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
			Expect(anchored.Col("AAA")[0]).To(Equal(0.0))
			Expect(anchored.Col("AAA")[1]).To(Equal(1.0))
		})

		It("panics when prepending a row after the first date", func() {
			Expect(func() {
				df.PrependRow(time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), 0, 0)
			}).To(Panic())
		})

		It("inserts a row after the last date", func() {
			extended := df.InsertRow(time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), 6, 60)
			Expect(extended.Len()).To(Equal(6))
			Expect(extended.Col("BBB")[5]).To(Equal(60.0))
		})
	})
})
