package service

import (
	"sort"
	"sync"
	"time"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	recentEventsLimit = 5
	panelLimit        = 5
	analyticsMonths   = 12
)

// ComputeStats derives the dashboard numbers from the current lists.
func ComputeStats(events []entity.Event, trainers []entity.Trainer, partners []entity.Partner, categories []entity.EventCategory) entity.DashboardStats {
	stats := entity.DashboardStats{
		TotalEvents:     len(events),
		TotalTrainers:   len(trainers),
		TotalPartners:   len(partners),
		TotalCategories: len(categories),
	}

	for _, e := range events {
		stats.TotalRevenue += e.Price * float64(e.Enrolled)
		stats.TotalParticipants += e.Enrolled
		if e.Status == entity.EventStatusUpcoming {
			stats.UpcomingEvents++
		}
	}
	for _, t := range trainers {
		if t.Status == entity.StatusActive {
			stats.ActiveTrainers++
		}
	}

	stats.UpcomingEventsPercentage = percentage(stats.UpcomingEvents, stats.TotalEvents)
	stats.ActiveTrainersPercentage = percentage(stats.ActiveTrainers, stats.TotalTrainers)
	stats.AverageRevenue = stats.AverageRevenuePerEvent()

	recent := append([]entity.Event(nil), events...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt > recent[j].CreatedAt })
	stats.RecentEvents = head(recent, recentEventsLimit)

	stats.TopTrainers = head(trainers, panelLimit)
	stats.Partners = head(partners, panelLimit)
	return stats
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return append(make([]T, 0, len(items)), items...)
}

// ComputeAnalytics builds the monthly series for the twelve months up to now
// (oldest first) and the number of events per category.
func ComputeAnalytics(events []entity.Event, categories []entity.EventCategory, now time.Time) entity.Analytics {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(analyticsMonths - 1), 0)

	monthly := make([]entity.MonthlyPoint, analyticsMonths)
	index := make(map[string]int, analyticsMonths)
	for i := range monthly {
		month := first.AddDate(0, i, 0).Format("2006-01")
		monthly[i].Month = month
		index[month] = i
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	counts := make(map[string]int)

	for _, e := range events {
		counts[e.CategoryID]++

		month := time.UnixMilli(e.StartDate).UTC().Format("2006-01")
		i, ok := index[month]
		if !ok {
			continue
		}
		monthly[i].Revenue += e.Price * float64(e.Enrolled)
		monthly[i].Participants += e.Enrolled
		monthly[i].Events++
	}

	distribution := make([]entity.CategoryCount, 0, len(counts))
	for id, count := range counts {
		name := names[id]
		if name == "" {
			name = id
		}
		distribution = append(distribution, entity.CategoryCount{CategoryID: id, Name: name, Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Name < distribution[j].Name
	})

	return entity.Analytics{Monthly: monthly, Categories: distribution}
}

type dashboardService struct {
	repos *repository.Repositories
	now   func() time.Time

	mu    sync.RWMutex
	stats entity.DashboardStats
}

// NewDashboardService recomputes the statistics whenever any repository changes.
func NewDashboardService(repos *repository.Repositories) DashboardService {
	s := &dashboardService{repos: repos, now: time.Now}
	repos.OnChange(s.recompute)
	s.recompute()
	return s
}

func (s *dashboardService) lists() ([]entity.Event, []entity.Trainer, []entity.Partner, []entity.EventCategory) {
	trainers := s.repos.Trainers.List()
	partners := s.repos.Partners.List()
	categories := s.repos.Categories.List()
	events := ResolveEventNames(s.repos.Events.List(), categories, trainers, partners)
	return events, trainers, partners, categories
}

// lists are read under the lock, results are stored in change order
func (s *dashboardService) recompute() {
	s.mu.Lock()
	stats := ComputeStats(s.lists())
	s.stats = stats
	s.mu.Unlock()

	logrus.Debugf("dashboard recomputed: %s", stats.String())
}

func (s *dashboardService) Stats() entity.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *dashboardService) Analytics() entity.Analytics {
	events, _, _, categories := s.lists()
	return ComputeAnalytics(events, categories, s.now())
}

func (s *dashboardService) Loading() bool {
	return s.repos.Events.Loading() ||
		s.repos.Trainers.Loading() ||
		s.repos.Partners.Loading() ||
		s.repos.Categories.Loading()
}
