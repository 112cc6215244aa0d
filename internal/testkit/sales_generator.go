// Package testkit generates deterministic sample datasets for demos and
// tests.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

// SalesGeneratorConfig configures the synthetic retail orders generator
type SalesGeneratorConfig struct {
	Rows        int     `json:"rows"`
	MissingRate float64 `json:"missing_rate"`
	Seed        int64   `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for sample data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:        200,
		MissingRate: 0.06,
		Seed:        42,
	}
}

// SalesDataGenerator produces a synthetic retail orders table. Numeric
// columns correlate (revenue tracks units and unit price) and two columns
// carry missing cells, so every chart kind has something to show.
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a seeded generator; the same config always
// yields the same table.
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	salesRegions    = []string{"north", "south", "east", "west"}
	salesCategories = []string{"electronics", "clothing", "grocery", "home", "toys"}
	salesEpoch      = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Header lists the generated columns in order.
func Header() []string {
	return []string{
		"order_id", "order_date", "region", "category",
		"units", "unit_price", "revenue", "discount", "satisfaction",
	}
}

// Generate returns the header row followed by config.Rows data rows.
func (g *SalesDataGenerator) Generate() [][]string {
	records := make([][]string, 0, g.config.Rows+1)
	records = append(records, Header())
	for i := 0; i < g.config.Rows; i++ {
		records = append(records, g.row(i))
	}
	return records
}

func (g *SalesDataGenerator) row(i int) []string {
	region := salesRegions[g.rng.Intn(len(salesRegions))]
	category := salesCategories[g.rng.Intn(len(salesCategories))]
	date := salesEpoch.AddDate(0, 0, g.rng.Intn(90))

	units := 1 + g.rng.Intn(9)
	price := roundCents(5 + g.rng.Float64()*95)
	revenue := roundCents(float64(units)*price + g.rng.NormFloat64()*5)
	if revenue < 0 {
		revenue = 0
	}
	discount := roundCents(g.rng.Float64() * 0.30)
	satisfaction := 1 + g.rng.Intn(5)

	row := []string{
		fmt.Sprintf("ORD-%05d", i+1),
		date.Format("2006-01-02"),
		region,
		category,
		strconv.Itoa(units),
		formatCents(price),
		formatCents(revenue),
		formatCents(discount),
		strconv.Itoa(satisfaction),
	}
	// Sprinkle gaps into discount and satisfaction only; identifiers and
	// amounts stay complete.
	if g.rng.Float64() < g.config.MissingRate {
		row[7] = ""
	}
	if g.rng.Float64() < g.config.MissingRate {
		row[8] = ""
	}
	return row
}

// WriteCSV writes the generated table to path.
func (g *SalesDataGenerator) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return csv.NewWriter(f).WriteAll(g.Generate())
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatCents(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
