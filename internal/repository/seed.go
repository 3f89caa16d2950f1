package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/venuehub/reservations/internal/domain"
)

type seedFile struct {
	Resources []seedResource `yaml:"resources"`
}

type seedResource struct {
	ID           string                        `yaml:"id"`
	Name         string                        `yaml:"name"`
	Timezone     string                        `yaml:"timezone"`
	MinCapacity  int                           `yaml:"min_capacity"`
	MaxCapacity  int                           `yaml:"max_capacity"`
	MinHours     int                           `yaml:"min_hours"`
	MaxHours     int                           `yaml:"max_hours"`
	Pricing      seedPricing                   `yaml:"pricing"`
	Schedule     map[string]domain.DaySchedule `yaml:"schedule"`
	BlockedDates []domain.Date                 `yaml:"blocked_dates"`
}

type seedPricing struct {
	HourlyRate     int64 `yaml:"hourly_rate"`
	IncludedGuests int   `yaml:"included_guests"`
	ExtraGuestRate int64 `yaml:"extra_guest_rate"`
	ServiceFee     int64 `yaml:"service_fee"`
}

// ParseSeed decodes a YAML resource list. Schedules are keyed by weekday
// name; weekdays left out are closed.
func ParseSeed(data []byte) ([]domain.Resource, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	out := make([]domain.Resource, 0, len(f.Resources))
	for _, sr := range f.Resources {
		if sr.ID == "" {
			return nil, fmt.Errorf("seed: resource without id")
		}
		res := domain.Resource{
			ID:          sr.ID,
			Name:        sr.Name,
			Timezone:    sr.Timezone,
			HasSchedule: len(sr.Schedule) > 0,
			MinCapacity: sr.MinCapacity,
			MaxCapacity: sr.MaxCapacity,
			MinHours:    sr.MinHours,
			MaxHours:    sr.MaxHours,
			Pricing: domain.Pricing{
				HourlyRate:     domain.Money(sr.Pricing.HourlyRate),
				IncludedGuests: sr.Pricing.IncludedGuests,
				ExtraGuestRate: domain.Money(sr.Pricing.ExtraGuestRate),
				ServiceFee:     domain.Money(sr.Pricing.ServiceFee),
			},
			BlockedDates: sr.BlockedDates,
		}
		if res.Timezone == "" {
			res.Timezone = "UTC"
		}
		if _, err := time.LoadLocation(res.Timezone); err != nil {
			return nil, fmt.Errorf("seed: resource %s: %w", sr.ID, err)
		}
		for d := range res.Schedule {
			res.Schedule[d] = domain.DaySchedule{Closed: true}
		}
		for name, day := range sr.Schedule {
			wd, ok := weekdayByName(name)
			if !ok {
				return nil, fmt.Errorf("seed: resource %s: unknown weekday %q", sr.ID, name)
			}
			res.Schedule[wd] = day
		}
		out = append(out, res)
	}
	return out, nil
}

// LoadSeed reads a seed file and saves every resource into repo.
func LoadSeed(ctx context.Context, path string, repo ResourceRepository) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed: %w", err)
	}
	resources, err := ParseSeed(data)
	if err != nil {
		return 0, err
	}
	for i := range resources {
		if err := repo.Save(ctx, &resources[i]); err != nil {
			return i, err
		}
	}
	return len(resources), nil
}

func weekdayByName(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}
