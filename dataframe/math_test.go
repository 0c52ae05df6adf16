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
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/mandate-vault/mv-api/dataframe"
)

var _ = Describe("Math", func() {
	var df *dataframe.DataFrame

	BeforeEach(func() {
		dates := make([]time.Time, 4)
		for ii := range dates {
			dates[ii] = time.Date(2025, 10, 6+ii, 0, 0, 0, 0, time.UTC)
		}
		df = dataframe.New(dates, []string{"PX"}, [][]float64{
			{100, 110, 99, 99},
		})
	})

	It("computes percent change and drops the first row", func() {
		rets := df.PercentChange()
		Expect(rets.Len()).To(Equal(3))
		Expect(rets.Col("PX")[0]).To(BeNumerically("~", 0.10, 1e-12))
		Expect(rets.Col("PX")[1]).To(BeNumerically("~", -0.10, 1e-12))
		Expect(rets.Col("PX")[2]).To(BeNumerically("~", 0.0, 1e-12))
	})

	It("compounds with cumprod", func() {
		rets := df.PercentChange().AddScalar(1).CumProd().MulScalar(100)
		vals := rets.Col("PX")
		Expect(vals[len(vals)-1]).To(BeNumerically("~", 99.0, 1e-9))
	})

	Context("with missing values", func() {
		BeforeEach(func() {
			df.Vals[0][0] = math.NaN()
			df.Vals[0][2] = math.NaN()
		})

		It("forward fills interior gaps", func() {
			filled := df.ForwardFill()
			Expect(filled.Col("PX")[2]).To(Equal(110.0))
		})

		It("back fills a leading gap", func() {
			filled := df.ForwardFill().BackFill()
			Expect(filled.Col("PX")[0]).To(Equal(110.0))
		})
	})

	It("aligns to the date intersection of another frame", func() {
		other := dataframe.New(
			[]time.Time{df.Dates[1], df.Dates[3]},
			[]string{"OTHER"},
			[][]float64{{1, 2}})
		aligned := df.AlignTo(other)
		Expect(aligned.Len()).To(Equal(2))
		Expect(aligned.Col("PX")).To(Equal([]float64{110, 99}))
	})
})
