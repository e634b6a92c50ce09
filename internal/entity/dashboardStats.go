package entity

import "fmt"

// DashboardStats содержит сводную статистику для главной страницы
type DashboardStats struct {
	TotalEvents              int       `json:"totalEvents"`
	TotalTrainers            int       `json:"totalTrainers"`
	TotalPartners            int       `json:"totalPartners"`
	TotalCategories          int       `json:"totalCategories"`
	TotalRevenue             float64   `json:"totalRevenue"`
	TotalParticipants        int       `json:"totalParticipants"`
	RecentEvents             []Event   `json:"recentEvents"`
	UpcomingEvents           int       `json:"upcomingEvents"`
	ActiveTrainers           int       `json:"activeTrainers"`
	UpcomingEventsPercentage float64   `json:"upcomingEventsPercentage"`
	ActiveTrainersPercentage float64   `json:"activeTrainersPercentage"`
	AverageRevenue           float64   `json:"averageRevenuePerEvent"`
	TopTrainers              []Trainer `json:"topTrainers"`
	Partners                 []Partner `json:"partners"`
}

// MonthlyPoint is one month of the analytics series.
type MonthlyPoint struct {
	Month        string  `json:"month"` // "2026-01"
	Revenue      float64 `json:"revenue"`
	Participants int     `json:"participants"`
	Events       int     `json:"events"`
}

// CategoryCount is the number of events that reference a category.
type CategoryCount struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// Analytics содержит данные для страницы аналитики
type Analytics struct {
	Monthly    []MonthlyPoint  `json:"monthly"`
	Categories []CategoryCount `json:"categories"`
}

// AverageRevenuePerEvent вычисляет среднюю выручку на мероприятие
func (s *DashboardStats) AverageRevenuePerEvent() float64 {
	if s.TotalEvents == 0 {
		return 0
	}
	return s.TotalRevenue / float64(s.TotalEvents)
}

// String возвращает строковое представление статистики
func (s *DashboardStats) String() string {
	return fmt.Sprintf(
		"Events: %d, Trainers: %d, Partners: %d, Categories: %d, Revenue: %.2f, Participants: %d",
		s.TotalEvents,
		s.TotalTrainers,
		s.TotalPartners,
		s.TotalCategories,
		s.TotalRevenue,
		s.TotalParticipants,
	)
}
