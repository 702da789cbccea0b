// Package domain defines the menu entities: categories and the products listed under them.
package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNameRequired is returned when a category or product has a blank name.
var ErrNameRequired = errors.New("name is required")

// Category groups products on the public menu. Categories are shown by SortOrder.
type Category struct {
	ID          string
	Name        string
	Description string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize trims the name and description.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
}

// Validate reports whether the category can be stored.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Section is a category with its products, as rendered on the menu page.
type Section struct {
	Category Category
	Items    []Product
}

// GroupByCategory returns one section per category, in the order given, each holding the products of that
// category in the order given. Products without a known category are left out.
func GroupByCategory(categories []Category, products []Product) []Section {
	index := make(map[string]int, len(categories))
	sections := make([]Section, len(categories))
	for i, c := range categories {
		sections[i] = Section{Category: c}
		index[c.ID] = i
	}
	for _, p := range products {
		if i, ok := index[p.CategoryID]; ok {
			sections[i].Items = append(sections[i].Items, p)
		}
	}
	return sections
}
