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

package data_test

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tealeg/xlsx/v3"

	"github.com/mandate-vault/mv-api/data"
)

// writeFixture builds a minimal workbook with the three mandate sheets.
// weights follow the 0-100 percentage convention unless fraction is true.
func writeFixture(dir string, fraction bool) string {
	wb := xlsx.NewFile()

	bench, err := wb.AddSheet("Benchmark")
	Expect(err).To(BeNil())
	header := bench.AddRow()
	header.AddCell().SetString("BBG Ticker")
	header.AddCell().SetString("Asset Class")
	for _, rec := range [][2]string{
		{"EQ1 Equity", "Action"},
		{"GV1 Govt", "Gov bond"},
		{"CM1 Comdty", "Commodities"},
	} {
		row := bench.AddRow()
		row.AddCell().SetString(rec[0])
		row.AddCell().SetString(rec[1])
	}

	prices, err := wb.AddSheet("Historique Prix")
	Expect(err).To(BeNil())
	pxHeader := prices.AddRow()
	pxHeader.AddCell().SetString("Date")
	for _, ticker := range []string{"EQ1 Equity", "GV1 Govt", "CM1 Comdty"} {
		pxHeader.AddCell().SetString(ticker)
	}
	// two metadata rows
	meta1 := prices.AddRow()
	meta1.AddCell().SetString("PX_LAST")
	meta2 := prices.AddRow()
	meta2.AddCell().SetString("Currency")

	day := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	px := [][]string{
		{"100", "200", "50"},
		{"101", "201", ""}, // missing cell forward fills
		{"102", "199", "51"},
	}
	for _, rowVals := range px {
		row := prices.AddRow()
		row.AddCell().SetString(day.Format("2006-01-02"))
		for _, v := range rowVals {
			cell := row.AddCell()
			if v != "" {
				cell.SetString(v)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	port, err := wb.AddSheet("Portefeuille")
	Expect(err).To(BeNil())
	port.AddRow().AddCell().SetString("PORTEFEUILLE MODELE") // banner
	portHeader := port.AddRow()
	for ii := 0; ii < 6; ii++ {
		portHeader.AddCell().SetString("col")
	}

	holdings := [][2]interface{}{
		{"EQ1 Equity", 55.0},
		{"GV1 Govt", 30.0},
		{"CASH EUR", 15.0},
	}
	for _, h := range holdings {
		row := port.AddRow()
		row.AddCell()
		row.AddCell()
		row.AddCell().SetString(h[0].(string))
		row.AddCell()
		row.AddCell()
		weight := h[1].(float64)
		if fraction {
			weight /= 100.0
		}
		row.AddCell().SetFloat(weight)
	}

	path := filepath.Join(dir, "portfolio.xlsx")
	Expect(wb.Save(path)).To(Succeed())
	return path
}

var _ = Describe("LoadWorkbook", func() {
	var snap *data.Snapshot

	Context("with a complete workbook", func() {
		BeforeEach(func() {
			var err error
			snap, err = data.LoadWorkbook(writeFixture(GinkgoT().TempDir(), false))
			Expect(err).To(BeNil())
		})

		It("classifies the benchmark constituents", func() {
			Expect(snap.Benchmark).To(HaveLen(3))
			Expect(snap.ClassOf("EQ1 Equity")).To(Equal(data.Equity))
			Expect(snap.ClassOf("GV1 Govt")).To(Equal(data.GovBond))
			Expect(snap.ClassOf("CM1 Comdty")).To(Equal(data.Commodity))
			Expect(snap.ClassOf("ZZZ")).To(Equal(data.Unknown))
		})

		It("drops the metadata rows and parses prices", func() {
			Expect(snap.Prices.Len()).To(Equal(3))
			Expect(snap.Prices.Col("EQ1 Equity")).To(Equal([]float64{100, 101, 102}))
		})

		It("fills missing price cells forward", func() {
			Expect(snap.Prices.Col("CM1 Comdty")).To(Equal([]float64{50, 50, 51}))
		})

		It("derives returns with one fewer row", func() {
			Expect(snap.Returns.Len()).To(Equal(2))
			Expect(snap.Returns.Col("EQ1 Equity")[0]).To(BeNumerically("~", 0.01, 1e-12))
		})

		It("scales percentage weights to fractions", func() {
			Expect(snap.Holdings).To(HaveLen(3))
			var total float64
			for _, h := range snap.Holdings {
				total += h.Weight
			}
			Expect(total).To(BeNumerically("~", 1.0, 0.01))
			Expect(snap.Holdings[0].Weight).To(BeNumerically("~", 0.55, 1e-12))
		})
	})

	Context("with fractional weights", func() {
		It("keeps fractions unchanged", func() {
			snap, err := data.LoadWorkbook(writeFixture(GinkgoT().TempDir(), true))
			Expect(err).To(BeNil())
			Expect(snap.Holdings[1].Weight).To(BeNumerically("~", 0.30, 1e-12))
		})
	})

	Context("with schema violations", func() {
		It("fails when the benchmark sheet is missing", func() {
			wb := xlsx.NewFile()
			_, err := wb.AddSheet("Historique Prix")
			Expect(err).To(BeNil())
			path := filepath.Join(GinkgoT().TempDir(), "bad.xlsx")
			Expect(wb.Save(path)).To(Succeed())

			_, err = data.LoadWorkbook(path)
			Expect(err).To(MatchError(data.ErrSchema))
		})

		It("fails when required benchmark columns are absent", func() {
			wb := xlsx.NewFile()
			bench, err := wb.AddSheet("Benchmark")
			Expect(err).To(BeNil())
			row := bench.AddRow()
			row.AddCell().SetString("Ticker") // wrong header
			row.AddCell().SetString("Asset Class")

			path := filepath.Join(GinkgoT().TempDir(), "bad.xlsx")
			Expect(wb.Save(path)).To(Succeed())

			_, err = data.LoadWorkbook(path)
			Expect(err).To(MatchError(data.ErrSchema))
		})
	})
})
