package entity

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a training event. Category, trainer and partner are referenced by
// id only, nothing checks that the referenced records exist.
type Event struct {
	ID           string      `json:"id,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CategoryID   string      `json:"categoryId"`
	CategoryName string      `json:"categoryName"`
	TrainerID    string      `json:"trainerId"`
	TrainerName  string      `json:"trainerName"`
	PartnerID    string      `json:"partnerId,omitempty"`
	PartnerName  string      `json:"partnerName,omitempty"`
	Location     string      `json:"location"`
	StartDate    int64       `json:"startDate"`
	EndDate      int64       `json:"endDate"`
	Price        float64     `json:"price"`
	Capacity     int         `json:"capacity"`
	Enrolled     int         `json:"enrolled"`
	Status       EventStatus `json:"status"`
	Image        string      `json:"image,omitempty"`
	CreatedAt    int64       `json:"createdAt"`
	UpdatedAt    int64       `json:"updatedAt"`
}

func (e *Event) Key() string       { return e.ID }
func (e *Event) SetKey(key string) { e.ID = key }

// EventForm is the data accepted when an event is created.
type EventForm struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description" validate:"max=5000"`
	CategoryID  string      `json:"categoryId" validate:"required"`
	TrainerID   string      `json:"trainerId" validate:"required"`
	PartnerID   string      `json:"partnerId,omitempty"`
	Location    string      `json:"location" validate:"required"`
	StartDate   int64       `json:"startDate" validate:"required"`
	EndDate     int64       `json:"endDate" validate:"required"`
	Price       float64     `json:"price" validate:"min=0"`
	Capacity    int         `json:"capacity" validate:"min=1"`
	Enrolled    int         `json:"enrolled" validate:"min=0"`
	Status      EventStatus `json:"status" validate:"required,oneof=upcoming ongoing completed cancelled"`
	Image       string      `json:"image,omitempty"`
}

// Build turns the form into a new record. Display names stay empty and are
// resolved when the event is read.
func (f EventForm) Build(now int64) Event {
	return Event{
		Title:       f.Title,
		Description: f.Description,
		CategoryID:  f.CategoryID,
		TrainerID:   f.TrainerID,
		PartnerID:   f.PartnerID,
		Location:    f.Location,
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Price:       f.Price,
		Capacity:    f.Capacity,
		Enrolled:    f.Enrolled,
		Status:      f.Status,
		Image:       f.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EventPatch carries the fields of an update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	CategoryID  *string      `json:"categoryId,omitempty" validate:"omitempty,min=1"`
	TrainerID   *string      `json:"trainerId,omitempty" validate:"omitempty,min=1"`
	PartnerID   *string      `json:"partnerId,omitempty"`
	Location    *string      `json:"location,omitempty" validate:"omitempty,min=1"`
	StartDate   *int64       `json:"startDate,omitempty"`
	EndDate     *int64       `json:"endDate,omitempty"`
	Price       *float64     `json:"price,omitempty" validate:"omitempty,min=0"`
	Capacity    *int         `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Enrolled    *int         `json:"enrolled,omitempty" validate:"omitempty,min=0"`
	Status      *EventStatus `json:"status,omitempty" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	Image       *string      `json:"image,omitempty"`
}

func (p EventPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.CategoryID != nil {
		fields["categoryId"] = *p.CategoryID
	}
	if p.TrainerID != nil {
		fields["trainerId"] = *p.TrainerID
	}
	if p.PartnerID != nil {
		fields["partnerId"] = *p.PartnerID
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.StartDate != nil {
		fields["startDate"] = *p.StartDate
	}
	if p.EndDate != nil {
		fields["endDate"] = *p.EndDate
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Capacity != nil {
		fields["capacity"] = *p.Capacity
	}
	if p.Enrolled != nil {
		fields["enrolled"] = *p.Enrolled
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	return fields
}

func (EventPatch) patchOf(Event) {}
