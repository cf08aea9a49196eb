// internal/agents/seller-reputation/reputation.go
package sellerreputation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultScore = 50

// defaultScores reflect marketplace reputation, buyer protection and
// return policies. Sources not listed score the unknown default.
var defaultScores = map[string]float64{
	"flipkart":         85,
	"amazon.in":        90,
	"amazon.com":       92,
	"walmart":          88,
	"target":           87,
	"best buy":         86,
	"etsy":             75,
	"croma":            80,
	"reliance digital": 82,
}

// ReputationTable maps marketplace names to base trust scores.
type ReputationTable struct {
	scores  map[string]float64
	unknown float64
}

// DefaultTable returns the built-in reputation table.
func DefaultTable() *ReputationTable {
	scores := make(map[string]float64, len(defaultScores))
	for name, score := range defaultScores {
		scores[name] = score
	}
	return &ReputationTable{scores: scores, unknown: defaultScore}
}

type tableFile struct {
	Unknown float64            `yaml:"unknown"`
	Scores  map[string]float64 `yaml:"scores"`
}

// LoadTable reads a reputation table from a YAML file. Entries merge
// over the built-in defaults so a partial file only overrides what it
// names.
func LoadTable(path string) (*ReputationTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reputation table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse reputation table: %w", err)
	}

	table := DefaultTable()
	if file.Unknown > 0 {
		table.unknown = file.Unknown
	}
	for name, score := range file.Scores {
		table.scores[strings.ToLower(name)] = score
	}
	return table, nil
}

// Score returns the base trust score for a marketplace name,
// case-insensitively; unknown sources get the default.
func (t *ReputationTable) Score(source string) float64 {
	if score, ok := t.scores[strings.ToLower(strings.TrimSpace(source))]; ok {
		return score
	}
	return t.unknown
}
