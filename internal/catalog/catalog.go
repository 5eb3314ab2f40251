// Package catalog provides the list of products offered in the entry form.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default is the product list used when no catalog file is configured.
var Default = []string{
	"Bombolone chocolate", "Bombolone Pistachio", "Bombolone strawberry", "Bombolone Chantilli creme", "Brownie",
	"Croissant Chocolate", "Croissant Pistachio", "Croissant Plain", "Apple turn over", "Multigrain Muffin",
	"Chocolate chip Muffin", "Caprese sandwich", "Egg salad Sandwich", "Prosciutto Arugula Sandwich",
	"Chicken Cutlet Sandwich", "Maritozzo", "Mix Berry Tart", "Pizza", "Prosciutto Cheese Sandwich",
	"Ham Cheese Sandwich", "Zucchini Pesto Sandwich", "Tiramisu", "Vegan Crostata",
}

var ErrEmptyCatalog = errors.New("catalog has no products")

// Catalog is an ordered product list.
type Catalog struct {
	products []string
	index    map[string]struct{}
}

type fileFormat struct {
	Products []string `yaml:"products"`
}

// New builds a catalog, trimming names and dropping blanks and duplicates
// while preserving the first-seen order.
func New(products []string) *Catalog {
	c := &Catalog{index: map[string]struct{}{}}
	for _, p := range products {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := c.index[p]; ok {
			continue
		}
		c.index[p] = struct{}{}
		c.products = append(c.products, p)
	}
	return c
}

// Load reads a YAML catalog file of the form:
//
//	products:
//	  - Croissant Plain
//	  - Brownie
//
// An empty path returns the Default catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return New(Default), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c := New(f.Products)
	if c.Len() == 0 {
		return nil, fmt.Errorf("catalog %s: %w", path, ErrEmptyCatalog)
	}
	return c, nil
}

// Products returns a copy of the product names in catalog order.
func (c *Catalog) Products() []string {
	return append([]string(nil), c.products...)
}

// Contains reports whether name is an offered product.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[strings.TrimSpace(name)]
	return ok
}

func (c *Catalog) Len() int { return len(c.products) }
