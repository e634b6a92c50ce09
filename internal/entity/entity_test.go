package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

// TestEventPatchFields проверяет, что в обновление попадают только заданные поля
func TestEventPatchFields(t *testing.T) {
	tests := []struct {
		name     string
		patch    EventPatch
		expected map[string]any
	}{
		{
			name:     "empty patch",
			patch:    EventPatch{},
			expected: map[string]any{},
		},
		{
			name:     "title only",
			patch:    EventPatch{Title: ptr("Go workshop")},
			expected: map[string]any{"title": "Go workshop"},
		},
		{
			name: "zero values are still written",
			patch: EventPatch{
				Enrolled: ptr(0),
				Price:    ptr(0.0),
				Status:   ptr(EventStatusCancelled),
			},
			expected: map[string]any{"enrolled": 0, "price": 0.0, "status": "cancelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.patch.Fields())
		})
	}
}

func TestEventFormBuild(t *testing.T) {
	form := EventForm{
		Title:      "Kubernetes basics",
		CategoryID: "c1",
		TrainerID:  "t1",
		PartnerID:  "p1",
		Location:   "Berlin",
		StartDate:  1000,
		EndDate:    2000,
		Price:      99.5,
		Capacity:   20,
		Enrolled:   3,
		Status:     EventStatusUpcoming,
	}

	event := form.Build(42)

	assert.Empty(t, event.ID)
	assert.Equal(t, int64(42), event.CreatedAt)
	assert.Equal(t, event.CreatedAt, event.UpdatedAt)
	assert.Empty(t, event.CategoryName)
	assert.Empty(t, event.TrainerName)
	assert.Empty(t, event.PartnerName)
	assert.Equal(t, "p1", event.PartnerID)
	assert.Equal(t, 20, event.Capacity)
}

func TestTrainerPatchFields(t *testing.T) {
	patch := TrainerPatch{
		Status:      ptr(StatusInactive),
		SocialMedia: &SocialMedia{LinkedIn: "https://linkedin.com/in/x"},
	}

	fields := patch.Fields()

	assert.Len(t, fields, 2)
	assert.Equal(t, "inactive", fields["status"])
	assert.Equal(t, SocialMedia{LinkedIn: "https://linkedin.com/in/x"}, fields["socialMedia"])
}

func TestPartnerAndCategoryPatchFields(t *testing.T) {
	partner := PartnerPatch{Type: ptr(PartnerTypeAcademic), Name: ptr("MIT")}
	assert.Equal(t, map[string]any{"type": "academic", "name": "MIT"}, partner.Fields())

	category := EventCategoryPatch{Color: ptr("#ff0000")}
	assert.Equal(t, map[string]any{"color": "#ff0000"}, category.Fields())
}

func TestAuthCode(t *testing.T) {
	err := fmt.Errorf("sign in: %w", NewAuthError(AuthCodeWrongPassword, "wrong password"))

	assert.Equal(t, AuthCodeWrongPassword, AuthCode(err))
	assert.Equal(t, "", AuthCode(errors.New("boom")))
	assert.Equal(t, "wrong password (auth/wrong-password)", NewAuthError(AuthCodeWrongPassword, "wrong password").Error())
}

func TestDashboardStatsAverageRevenue(t *testing.T) {
	assert.Equal(t, 0.0, (&DashboardStats{}).AverageRevenuePerEvent())
	assert.Equal(t, 50.0, (&DashboardStats{TotalEvents: 4, TotalRevenue: 200}).AverageRevenuePerEvent())
}
