// Package catalog loads journey and raid content from YAML files.
package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"example.com/voyage/internal/domain"
)

// LegTemplate is one journey segment as authored in content files.
type LegTemplate struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	DistanceKm  float64 `yaml:"distance_km"`
	Category    string  `yaml:"category"`
	Amount      float64 `yaml:"amount"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
}

// JourneyTemplate is a named sequence of legs.
type JourneyTemplate struct {
	ID   string        `yaml:"id"`
	Name string        `yaml:"name"`
	Legs []LegTemplate `yaml:"legs"`
}

// RaidTemplate seeds a scheduled community raid.
type RaidTemplate struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Category      string  `yaml:"category"`
	DurationHours int     `yaml:"duration_hours"`
	GoalKwh       float64 `yaml:"goal_kwh"`
	Narrative     string  `yaml:"narrative"`
}

// Catalog is the parsed content file.
type Catalog struct {
	Journeys      []JourneyTemplate `yaml:"journeys"`
	RaidTemplates []RaidTemplate    `yaml:"raids"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Journeys) == 0 {
		return fmt.Errorf("no journeys defined")
	}
	seen := make(map[string]struct{})
	for _, journey := range c.Journeys {
		if journey.ID == "" {
			return fmt.Errorf("journey %q: missing id", journey.Name)
		}
		if _, dup := seen[journey.ID]; dup {
			return fmt.Errorf("journey %q: duplicate id", journey.ID)
		}
		seen[journey.ID] = struct{}{}
		if len(journey.Legs) == 0 {
			return fmt.Errorf("journey %q: no legs", journey.ID)
		}
		for i, leg := range journey.Legs {
			if _, err := domain.ParseCategory(leg.Category); err != nil {
				return fmt.Errorf("journey %q leg %d: %w", journey.ID, i, err)
			}
			if leg.Amount <= 0 {
				return fmt.Errorf("journey %q leg %d: amount must be positive", journey.ID, i)
			}
			if leg.From == "" || leg.To == "" {
				return fmt.Errorf("journey %q leg %d: missing endpoints", journey.ID, i)
			}
		}
	}
	for i, raid := range c.RaidTemplates {
		if raid.ID == "" {
			return fmt.Errorf("raid %d (%s): missing id", i, raid.Name)
		}
		if _, err := domain.ParseCategory(raid.Category); err != nil {
			return fmt.Errorf("raid %d (%s): %w", i, raid.Name, err)
		}
		if raid.GoalKwh <= 0 {
			return fmt.Errorf("raid %d (%s): goal must be positive", i, raid.Name)
		}
	}
	return nil
}

// Raids materialises the raid schedule for a tenant. Each raid's window
// opens at now and runs for its configured duration.
func (c *Catalog) Raids(tenantID string, now time.Time) []domain.RaidEvent {
	raids := make([]domain.RaidEvent, 0, len(c.RaidTemplates))
	for _, tpl := range c.RaidTemplates {
		category, _ := domain.ParseCategory(tpl.Category)
		raid := domain.RaidEvent{
			ID:        tpl.ID,
			TenantID:  tenantID,
			Name:      tpl.Name,
			Category:  category,
			StartTime: now,
			EndTime:   now.Add(time.Duration(tpl.DurationHours) * time.Hour),
			GoalKwh:   tpl.GoalKwh,
			Narrative: tpl.Narrative,
		}
		raid.RefreshStatus(now)
		raids = append(raids, raid)
	}
	return raids
}

// JourneyLegs implements domain.JourneyCatalog.
func (c *Catalog) JourneyLegs(catalogID string) ([]domain.JourneyLeg, error) {
	for _, journey := range c.Journeys {
		if journey.ID != catalogID {
			continue
		}
		legs := make([]domain.JourneyLeg, 0, len(journey.Legs))
		for _, tpl := range journey.Legs {
			category, _ := domain.ParseCategory(tpl.Category)
			legs = append(legs, domain.JourneyLeg{
				From:             tpl.From,
				To:               tpl.To,
				DistanceKm:       tpl.DistanceKm,
				RequiredCategory: category,
				RequiredAmount:   tpl.Amount,
				Title:            tpl.Title,
				Description:      tpl.Description,
			})
		}
		return legs, nil
	}
	return nil, fmt.Errorf("unknown journey catalog id %q", catalogID)
}
