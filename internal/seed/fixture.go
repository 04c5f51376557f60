// Package seed loads a YAML catalog fixture into a development database.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk catalog description. Decimals are strings so YAML
// floats never round money values.
type Fixture struct {
	MarginRules []RuleFixture    `yaml:"margin_rules"`
	Offers      []OfferFixture   `yaml:"offers"`
	Variants    []VariantFixture `yaml:"variants"`
}

type RuleFixture struct {
	Name          string `yaml:"name"`
	MarginPercent string `yaml:"margin_percent"`
}

type OfferFixture struct {
	Name            string `yaml:"name"`
	DiscountPercent string `yaml:"discount_percent"`
	RuleType        string `yaml:"rule_type"`
	ScopeValue      string `yaml:"scope_value"`
	StartDate       string `yaml:"start_date"`
	EndDate         string `yaml:"end_date"`
}

// VariantFixture describes one sku. An empty cost leaves the variant unpriced
// and an empty margin falls back to the seeder default.
type VariantFixture struct {
	SKU         string `yaml:"sku"`
	Style       string `yaml:"style"`
	Brand       string `yaml:"brand"`
	ProductType string `yaml:"product_type"`
	Category    string `yaml:"category"`
	Name        string `yaml:"name"`
	Colour      string `yaml:"colour"`
	Size        string `yaml:"size"`
	Cost        string `yaml:"cost"`
	Margin      string `yaml:"margin"`
	Rule        string `yaml:"rule"`
}

func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fixture, nil
}
