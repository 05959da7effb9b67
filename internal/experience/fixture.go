package experience

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type fixtureFile struct {
	Experiences []fixtureExperience `yaml:"experiences"`
}

type fixtureExperience struct {
	ID                   string              `yaml:"id"`
	CreatorID            string              `yaml:"created_by"`
	Title                string              `yaml:"title"`
	Description          string              `yaml:"description"`
	Price                float64             `yaml:"price"`
	PricingUnit          string              `yaml:"pricing_unit"`
	Status               string              `yaml:"status"`
	Area                 string              `yaml:"area"`
	Companions           []string            `yaml:"companions"`
	Tags                 []string            `yaml:"tags"`
	Lat                  *float64            `yaml:"lat"`
	Lng                  *float64            `yaml:"lng"`
	DistanceFromCenterKm *float64            `yaml:"distance_from_center_km"`
	Availability         map[string][]string `yaml:"availability"`
}

// LoadFixture decodes a YAML catalog. Availability is keyed by weekday name with
// "HH:MM-HH:MM" windows.
func LoadFixture(r io.Reader) ([]Experience, error) {
	var file fixtureFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog fixture: %w", err)
	}

	experiences := make([]Experience, 0, len(file.Experiences))
	for _, fe := range file.Experiences {
		if fe.ID == "" {
			return nil, fmt.Errorf("catalog fixture: experience %q has no id", fe.Title)
		}
		status := fe.Status
		if status == "" {
			status = StatusActive
		}
		e := Experience{
			ID:                   fe.ID,
			CreatorID:            fe.CreatorID,
			Title:                fe.Title,
			Description:          fe.Description,
			Price:                fe.Price,
			PricingUnit:          fe.PricingUnit,
			Status:               status,
			Area:                 fe.Area,
			Companions:           fe.Companions,
			Tags:                 fe.Tags,
			Lat:                  fe.Lat,
			Lng:                  fe.Lng,
			DistanceFromCenterKm: fe.DistanceFromCenterKm,
			Availability:         Weekly{},
		}
		for name, windows := range fe.Availability {
			day, err := ParseWeekday(name)
			if err != nil {
				return nil, fmt.Errorf("experience %s: %w", fe.ID, err)
			}
			for _, raw := range windows {
				w, err := ParseWindow(raw)
				if err != nil {
					return nil, fmt.Errorf("experience %s: %w", fe.ID, err)
				}
				e.Availability[day] = append(e.Availability[day], w)
			}
			slices.SortFunc(e.Availability[day], func(a, b TimeWindow) int { return int(a.Start - b.Start) })
		}
		experiences = append(experiences, e)
	}
	return experiences, nil
}

// LoadFixtureFile opens path and decodes it with LoadFixture.
func LoadFixtureFile(path string) ([]Experience, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixture(f)
}

// StaticCatalog serves a fixed in-memory catalog, filtering to active entries.
type StaticCatalog struct {
	experiences []Experience
}

func NewStaticCatalog(experiences []Experience) *StaticCatalog {
	return &StaticCatalog{experiences: experiences}
}

func (c *StaticCatalog) ActiveExperiences(_ context.Context) ([]Experience, error) {
	active := make([]Experience, 0, len(c.experiences))
	for _, e := range c.experiences {
		if e.IsActive() {
			active = append(active, e)
		}
	}
	return active, nil
}
