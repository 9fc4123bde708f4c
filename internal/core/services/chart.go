package services

import (
	_ "embed"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_chart.yaml
var defaultChartYAML []byte

// ChartAccount is one account of a chart template.
type ChartAccount struct {
	Code string             `yaml:"code"`
	Name string             `yaml:"name"`
	Type domain.AccountType `yaml:"type"`
}

type chartFile struct {
	Accounts []ChartAccount `yaml:"accounts"`
}

// ParseChart decodes a chart template and checks every entry.
func ParseChart(raw []byte) ([]ChartAccount, error) {
	var file chartFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode chart template: %w", err)
	}
	seen := make(map[string]bool, len(file.Accounts))
	for i, a := range file.Accounts {
		if a.Code == "" || a.Name == "" {
			return nil, fmt.Errorf("chart template entry %d: code and name are required", i)
		}
		if !a.Type.IsValid() {
			return nil, fmt.Errorf("chart template entry %s: unknown account type %q", a.Code, a.Type)
		}
		if seen[a.Code] {
			return nil, fmt.Errorf("chart template: duplicate code %s", a.Code)
		}
		seen[a.Code] = true
	}
	return file.Accounts, nil
}

// DefaultChart returns the embedded default chart of accounts.
func DefaultChart() []ChartAccount {
	accounts, err := ParseChart(defaultChartYAML)
	if err != nil {
		panic(err)
	}
	return accounts
}
