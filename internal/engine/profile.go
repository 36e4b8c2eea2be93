package engine

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is a declarative agent definition: a weight table, a
// classification scale, and score-bounded advice templates, parsed from
// YAML. Profiles let operators register custom assessment agents without
// code changes.
type Profile struct {
	Key        string          `yaml:"key"`
	Name       string          `yaml:"name"`
	Category   string          `yaml:"category"`
	Version    string          `yaml:"version"`
	ReviewDays int             `yaml:"review_days"`
	Min        float64         `yaml:"min"`
	Max        float64         `yaml:"max"`
	Fallback   string          `yaml:"fallback_label"`
	Factors    []ProfileFactor `yaml:"factors"`
	Bands      []ProfileBand   `yaml:"bands"`
	Advice     []ProfileAdvice `yaml:"advice"`
}

// ProfileFactor mirrors Factor without the code-level transform.
type ProfileFactor struct {
	Name    string  `yaml:"name"`
	Weight  float64 `yaml:"weight"`
	Default float64 `yaml:"default"`
}

// ProfileBand mirrors Band.
type ProfileBand struct {
	Threshold float64 `yaml:"threshold"`
	Label     string  `yaml:"label"`
}

// ProfileAdvice is a recommendation template with inclusive score bounds.
// A template fires when Below > score >= AtLeast; either bound may be
// omitted.
type ProfileAdvice struct {
	Below          *float64 `yaml:"below"`
	AtLeast        *float64 `yaml:"at_least"`
	Category       string   `yaml:"category"`
	Priority       string   `yaml:"priority"`
	Recommendation string   `yaml:"recommendation"`
	Actions        []string `yaml:"actions"`
	ExpectedImpact string   `yaml:"expected_impact"`
	Timeline       string   `yaml:"timeline"`
}

// ParseProfile decodes and validates a YAML profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Max == 0 && p.Min == 0 {
		p.Max = 100
	}
	if p.ReviewDays == 0 {
		p.ReviewDays = 30
	}
	if p.Version == "" {
		p.Version = "1.0.0"
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if strings.TrimSpace(p.Key) == "" {
		return fmt.Errorf("profile: key is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile %s: name is required", p.Key)
	}
	if len(p.Factors) == 0 {
		return fmt.Errorf("profile %s: at least one factor is required", p.Key)
	}
	for i, f := range p.Factors {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("profile %s: factors[%d].name is required", p.Key, i)
		}
		if f.Weight <= 0 || f.Weight > 1 {
			return fmt.Errorf("profile %s: factors[%d].weight must be in (0,1]", p.Key, i)
		}
	}
	if len(p.Bands) == 0 {
		return fmt.Errorf("profile %s: at least one band is required", p.Key)
	}
	seen := make(map[string]bool, len(p.Bands)+1)
	for i, b := range p.Bands {
		if strings.TrimSpace(b.Label) == "" {
			return fmt.Errorf("profile %s: bands[%d].label is required", p.Key, i)
		}
		if seen[b.Label] {
			return fmt.Errorf("profile %s: duplicate band label %q", p.Key, b.Label)
		}
		seen[b.Label] = true
	}
	if strings.TrimSpace(p.Fallback) == "" {
		return fmt.Errorf("profile %s: fallback_label is required", p.Key)
	}
	if seen[p.Fallback] {
		return fmt.Errorf("profile %s: fallback label %q collides with a band", p.Key, p.Fallback)
	}
	return nil
}

// Table builds the profile's weight table.
func (p *Profile) Table() WeightTable {
	factors := make([]Factor, 0, len(p.Factors))
	for _, f := range p.Factors {
		factors = append(factors, Factor{Name: f.Name, Weight: f.Weight, Default: f.Default})
	}
	return WeightTable{Factors: factors, Min: p.Min, Max: p.Max}
}

// Scale builds the profile's classification scale.
func (p *Profile) Scale() Scale {
	bands := make([]Band, 0, len(p.Bands))
	for _, b := range p.Bands {
		bands = append(bands, Band{Threshold: b.Threshold, Label: b.Label})
	}
	return NewScale(p.Fallback, bands...)
}

// Rules builds the profile's advice rule set over the overall score.
func (p *Profile) Rules() RuleSet[float64] {
	rules := make(RuleSet[float64], 0, len(p.Advice))
	for _, a := range p.Advice {
		adv := a
		rules = append(rules, Rule[float64]{
			When: func(score float64) bool {
				if adv.Below != nil && score >= *adv.Below {
					return false
				}
				if adv.AtLeast != nil && score < *adv.AtLeast {
					return false
				}
				return true
			},
			Build: func(float64) Recommendation {
				return Recommendation{
					Category:       adv.Category,
					Priority:       adv.Priority,
					Recommendation: adv.Recommendation,
					Actions:        adv.Actions,
					ExpectedImpact: adv.ExpectedImpact,
					Timeline:       adv.Timeline,
				}
			},
		})
	}
	return rules
}

// ReviewCycle returns the profile's review interval.
func (p *Profile) ReviewCycle() time.Duration {
	return time.Duration(p.ReviewDays) * 24 * time.Hour
}
