package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPrice is returned by ParsePrice for empty, malformed, negative or out-of-range input.
var ErrInvalidPrice = errors.New("invalid price")

// maxPriceCents is the largest amount NUMERIC(10,2) can hold.
const maxPriceCents = 99999999_99

// Product is a dish or drink on the menu. CategoryID is empty when the product is uncategorized.
type Product struct {
	ID           string
	CategoryID   string
	CategoryName string // read-only, joined from categories
	Name         string
	Description  string
	PriceCents   int64
	SKU          string
	Stock        int
	ImageURL     string
	Featured     bool
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate reports whether the product can be stored.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.PriceCents < 0 || p.PriceCents > maxPriceCents {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return nil
}

// PriceInput renders the price for an edit form, e.g. "12.50".
func (p Product) PriceInput() string {
	return fmt.Sprintf("%d.%02d", p.PriceCents/100, p.PriceCents%100)
}

// ParsePrice parses a price typed by staff into cents. A comma is accepted as the decimal separator
// and amounts are rounded to the nearest cent.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, ErrInvalidPrice
	}
	// Bound the float before the int64 conversion, which wraps for huge values.
	scaled := math.Round(f * 100)
	if scaled > maxPriceCents {
		return 0, ErrInvalidPrice
	}
	return int64(scaled), nil
}
