package models

import (
	"fmt"
	"strings"
	"time"
)

// Monster is the canonical catalog record for one encyclopedia entry.
//
// JSON field names follow the public API contract (camelCase), which is
// also the shape the seed files use.
type Monster struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	ImageURL     string     `json:"imageUrl"`
	Appearance   string     `json:"appearance"`
	Distribution string     `json:"distribution"`
	Description  string     `json:"description"`
	Abilities    []string   `json:"abilities"`
	Sources      []Citation `json:"sources"`
	Location     *GeoPoint  `json:"location,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Citation is one literary reference attached to a monster.
type Citation struct {
	Book    string `json:"book"`
	Content string `json:"content"`
}

// GeoPoint is an optional map position. No range validation: the source
// material includes deliberately mythical coordinates.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Categories is the closed set of narrative classifications.
var Categories = []string{"统领", "妖", "精", "鬼", "怪"}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Validate checks required fields and enum membership. It does not touch
// ID or timestamps, which are assigned by the store.
func (m *Monster) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidCategory(m.Category) {
		return fmt.Errorf("category must be one of: %s", strings.Join(Categories, ", "))
	}
	if strings.TrimSpace(m.ImageURL) == "" {
		return fmt.Errorf("imageUrl is required")
	}
	if strings.TrimSpace(m.Appearance) == "" {
		return fmt.Errorf("appearance is required")
	}
	if strings.TrimSpace(m.Distribution) == "" {
		return fmt.Errorf("distribution is required")
	}
	if strings.TrimSpace(m.Description) == "" {
		return fmt.Errorf("description is required")
	}
	for i, s := range m.Sources {
		if strings.TrimSpace(s.Book) == "" {
			return fmt.Errorf("sources[%d].book is required", i)
		}
		if strings.TrimSpace(s.Content) == "" {
			return fmt.Errorf("sources[%d].content is required", i)
		}
	}
	return nil
}

// MonsterPatch is a partial update payload. Nil fields are left unchanged.
type MonsterPatch struct {
	Name         *string     `json:"name,omitempty"`
	Category     *string     `json:"category,omitempty"`
	ImageURL     *string     `json:"imageUrl,omitempty"`
	Appearance   *string     `json:"appearance,omitempty"`
	Distribution *string     `json:"distribution,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Abilities    *[]string   `json:"abilities,omitempty"`
	Sources      *[]Citation `json:"sources,omitempty"`
	Location     *GeoPoint   `json:"location,omitempty"`
}

// Apply copies the set fields of the patch onto m.
func (p *MonsterPatch) Apply(m *Monster) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.Appearance != nil {
		m.Appearance = *p.Appearance
	}
	if p.Distribution != nil {
		m.Distribution = *p.Distribution
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Abilities != nil {
		m.Abilities = *p.Abilities
	}
	if p.Sources != nil {
		m.Sources = *p.Sources
	}
	if p.Location != nil {
		m.Location = p.Location
	}
}
