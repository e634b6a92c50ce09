package service

import "github.com/ds124wfegd/trainhub/internal/entity"

// DashboardService keeps the dashboard numbers in sync with the repositories.
type DashboardService interface {
	// Stats returns the statistics computed after the latest change.
	Stats() entity.DashboardStats
	Analytics() entity.Analytics
	// Loading reports whether any collection is still waiting for its first snapshot.
	Loading() bool
}

// filterAll is the dropdown value that disables a filter.
const filterAll = "all"

type EventFilter struct {
	Query      string `form:"q"`
	Status     string `form:"status"`
	CategoryID string `form:"category"`
}

type TrainerFilter struct {
	Query  string `form:"q"`
	Status string `form:"status"`
}

type PartnerFilter struct {
	Query  string `form:"q"`
	Status string `form:"status"`
	Type   string `form:"type"`
}

type EventCategoryFilter struct {
	Query  string `form:"q"`
	Status string `form:"status"`
}
