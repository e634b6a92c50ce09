package entity

type EventCategory struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Status      Status `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt,omitempty"`
}

func (c *EventCategory) Key() string       { return c.ID }
func (c *EventCategory) SetKey(key string) { c.ID = key }

type EventCategoryForm struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon,omitempty"`
	Status      Status `json:"status" validate:"required,oneof=active inactive"`
}

func (f EventCategoryForm) Build(now int64) EventCategory {
	return EventCategory{
		Name:        f.Name,
		Description: f.Description,
		Color:       f.Color,
		Icon:        f.Icon,
		Status:      f.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type EventCategoryPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty"`
	Status      *Status `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (p EventCategoryPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.Icon != nil {
		fields["icon"] = *p.Icon
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	return fields
}

func (EventCategoryPatch) patchOf(EventCategory) {}
