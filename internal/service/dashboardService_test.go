package service

import (
	"context"
	"testing"
	"time"

	"github.com/ds124wfegd/trainhub/internal/database/realtime"
	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string, createdAt int64, price float64, enrolled int, status entity.EventStatus) entity.Event {
	return entity.Event{ID: id, Title: id, CreatedAt: createdAt, Price: price, Enrolled: enrolled, Status: status, CategoryID: "c1"}
}

// TestComputeStats проверяет расчёт статистики панели
func TestComputeStats(t *testing.T) {
	events := []entity.Event{
		event("e1", 100, 50, 2, entity.EventStatusUpcoming),
		event("e2", 300, 10, 5, entity.EventStatusCompleted),
		event("e3", 200, 0, 7, entity.EventStatusUpcoming),
		event("e4", 300, 20, 1, entity.EventStatusCancelled),
		event("e5", 50, 1, 1, entity.EventStatusOngoing),
		event("e6", 400, 1, 1, entity.EventStatusUpcoming),
	}
	trainers := []entity.Trainer{
		{ID: "t1", Status: entity.StatusActive},
		{ID: "t2", Status: entity.StatusInactive},
		{ID: "t3", Status: entity.StatusActive},
		{ID: "t4", Status: entity.StatusActive},
		{ID: "t5", Status: entity.StatusActive},
		{ID: "t6", Status: entity.StatusActive},
	}
	partners := []entity.Partner{{ID: "p1"}, {ID: "p2"}}
	categories := []entity.EventCategory{{ID: "c1"}}

	stats := ComputeStats(events, trainers, partners, categories)

	assert.Equal(t, 6, stats.TotalEvents)
	assert.Equal(t, 6, stats.TotalTrainers)
	assert.Equal(t, 2, stats.TotalPartners)
	assert.Equal(t, 1, stats.TotalCategories)
	assert.InDelta(t, 50*2+10*5+0*7+20*1+1+1, stats.TotalRevenue, 1e-9)
	assert.Equal(t, 17, stats.TotalParticipants)
	assert.InDelta(t, 50.0, stats.UpcomingEventsPercentage, 1e-9)
	assert.InDelta(t, 5.0/6.0*100, stats.ActiveTrainersPercentage, 1e-9)
	assert.InDelta(t, 172.0/6.0, stats.AverageRevenue, 1e-9)

	// e2 и e4 имеют одинаковое время создания, порядок исходного списка сохраняется
	var recent []string
	for _, e := range stats.RecentEvents {
		recent = append(recent, e.ID)
	}
	assert.Equal(t, []string{"e6", "e2", "e4", "e3", "e1"}, recent)

	assert.Len(t, stats.TopTrainers, 5)
	assert.Equal(t, "t1", stats.TopTrainers[0].ID)
	assert.Len(t, stats.Partners, 2)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil, nil, nil)

	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.UpcomingEventsPercentage)
	assert.Zero(t, stats.ActiveTrainersPercentage)
	assert.Empty(t, stats.RecentEvents)
}

// TestComputeStatsOrderIndependent проверяет, что итоги не зависят от порядка мероприятий
func TestComputeStatsOrderIndependent(t *testing.T) {
	events := []entity.Event{
		event("e1", 100, 49.99, 3, entity.EventStatusUpcoming),
		event("e2", 200, 0.1, 7, entity.EventStatusCompleted),
		event("e3", 300, 1250.5, 2, entity.EventStatusOngoing),
		event("e4", 400, 19.95, 11, entity.EventStatusCancelled),
		event("e5", 500, 0.3, 1, entity.EventStatusUpcoming),
	}
	want := ComputeStats(events, nil, nil, nil)

	reversed := make([]entity.Event, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	shuffled := []entity.Event{events[3], events[0], events[4], events[2], events[1]}

	tests := []struct {
		name   string
		events []entity.Event
	}{
		{name: "reversed", events: reversed},
		{name: "shuffled", events: shuffled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.events, nil, nil, nil)
			assert.InDelta(t, want.TotalRevenue, got.TotalRevenue, 1e-9)
			assert.Equal(t, want.TotalParticipants, got.TotalParticipants)
			assert.Equal(t, want.UpcomingEvents, got.UpcomingEvents)
		})
	}
}

func TestComputeStatsDoesNotReorderInput(t *testing.T) {
	events := []entity.Event{event("a", 1, 0, 0, ""), event("b", 2, 0, 0, "")}

	ComputeStats(events, nil, nil, nil)

	assert.Equal(t, "a", events[0].ID)
}

func TestComputeAnalytics(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	ms := func(y int, m time.Month) int64 { return time.Date(y, m, 10, 0, 0, 0, 0, time.UTC).UnixMilli() }

	events := []entity.Event{
		{CategoryID: "c1", StartDate: ms(2026, time.March), Price: 10, Enrolled: 3},
		{CategoryID: "c1", StartDate: ms(2026, time.March), Price: 5, Enrolled: 2},
		{CategoryID: "c2", StartDate: ms(2025, time.April), Price: 100, Enrolled: 1},
		{CategoryID: "c2", StartDate: ms(2025, time.March), Price: 100, Enrolled: 1}, // за пределами окна
		{CategoryID: "c3", StartDate: ms(2026, time.June), Price: 1, Enrolled: 1},
	}
	categories := []entity.EventCategory{{ID: "c1", Name: "Data"}, {ID: "c2", Name: "Cloud"}}

	analytics := ComputeAnalytics(events, categories, now)

	require.Len(t, analytics.Monthly, 12)
	assert.Equal(t, "2025-04", analytics.Monthly[0].Month)
	assert.Equal(t, "2026-03", analytics.Monthly[11].Month)
	assert.InDelta(t, 100.0, analytics.Monthly[0].Revenue, 1e-9)
	assert.InDelta(t, 40.0, analytics.Monthly[11].Revenue, 1e-9)
	assert.Equal(t, 5, analytics.Monthly[11].Participants)
	assert.Equal(t, 2, analytics.Monthly[11].Events)

	assert.Equal(t, []entity.CategoryCount{
		{CategoryID: "c2", Name: "Cloud", Count: 2},
		{CategoryID: "c1", Name: "Data", Count: 2},
		{CategoryID: "c3", Name: "c3", Count: 1},
	}, analytics.Categories)
}

func TestDashboardServiceRecomputesOnChange(t *testing.T) {
	store := realtime.NewMemoryStore()
	repos := repository.NewRepositories(store)
	dashboard := NewDashboardService(repos)

	assert.True(t, dashboard.Loading())
	require.NoError(t, repos.Start(context.Background()))
	defer repos.Stop()

	require.Eventually(t, func() bool { return !dashboard.Loading() }, 2*time.Second, 5*time.Millisecond)

	ctx := context.Background()
	trainerID, err := repos.Trainers.Add(ctx, entity.TrainerForm{
		Name: "Ann", Email: "ann@example.com", Specialization: "Go", Status: entity.StatusActive,
	})
	require.NoError(t, err)
	_, err = repos.Events.Add(ctx, entity.EventForm{
		Title: "Go", CategoryID: "c1", TrainerID: trainerID, Location: "Online",
		StartDate: 1, EndDate: 2, Price: 25, Capacity: 10, Enrolled: 4, Status: entity.EventStatusUpcoming,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stats := dashboard.Stats()
		return stats.TotalEvents == 1 && stats.TotalTrainers == 1
	}, 2*time.Second, 5*time.Millisecond)

	stats := dashboard.Stats()
	assert.InDelta(t, 100.0, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 100.0, stats.ActiveTrainersPercentage, 1e-9)
	require.Len(t, stats.RecentEvents, 1)
	assert.Equal(t, "Ann", stats.RecentEvents[0].TrainerName)
}
