package service

import (
	"strings"

	"github.com/ds124wfegd/trainhub/internal/entity"
)

// matchesQuery is a case-insensitive substring match against any of fields.
func matchesQuery(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func matchesOption(option, value string) bool {
	return option == "" || option == filterAll || option == value
}

func filter[T any](items []T, keep func(*T) bool) []T {
	result := make([]T, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			result = append(result, items[i])
		}
	}
	return result
}

func FilterEvents(events []entity.Event, f EventFilter) []entity.Event {
	return filter(events, func(e *entity.Event) bool {
		return matchesQuery(f.Query, e.Title, e.Description, e.Location) &&
			matchesOption(f.Status, string(e.Status)) &&
			matchesOption(f.CategoryID, e.CategoryID)
	})
}

func FilterTrainers(trainers []entity.Trainer, f TrainerFilter) []entity.Trainer {
	return filter(trainers, func(t *entity.Trainer) bool {
		return matchesQuery(f.Query, t.Name, t.Email, t.Specialization) &&
			matchesOption(f.Status, string(t.Status))
	})
}

func FilterPartners(partners []entity.Partner, f PartnerFilter) []entity.Partner {
	return filter(partners, func(p *entity.Partner) bool {
		return matchesQuery(f.Query, p.Name, p.Description) &&
			matchesOption(f.Status, string(p.Status)) &&
			matchesOption(f.Type, string(p.Type))
	})
}

func FilterCategories(categories []entity.EventCategory, f EventCategoryFilter) []entity.EventCategory {
	return filter(categories, func(c *entity.EventCategory) bool {
		return matchesQuery(f.Query, c.Name, c.Description) &&
			matchesOption(f.Status, string(c.Status))
	})
}

// ResolveEventNames fills empty category, trainer and partner names from the
// referenced records. Unknown ids keep an empty name.
func ResolveEventNames(events []entity.Event, categories []entity.EventCategory, trainers []entity.Trainer, partners []entity.Partner) []entity.Event {
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	trainerNames := make(map[string]string, len(trainers))
	for _, t := range trainers {
		trainerNames[t.ID] = t.Name
	}
	partnerNames := make(map[string]string, len(partners))
	for _, p := range partners {
		partnerNames[p.ID] = p.Name
	}

	resolved := make([]entity.Event, len(events))
	for i, e := range events {
		if e.CategoryName == "" {
			e.CategoryName = categoryNames[e.CategoryID]
		}
		if e.TrainerName == "" {
			e.TrainerName = trainerNames[e.TrainerID]
		}
		if e.PartnerID != "" && e.PartnerName == "" {
			e.PartnerName = partnerNames[e.PartnerID]
		}
		resolved[i] = e
	}
	return resolved
}
