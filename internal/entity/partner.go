package entity

type PartnerType string

const (
	PartnerTypeCorporate  PartnerType = "corporate"
	PartnerTypeAcademic   PartnerType = "academic"
	PartnerTypeNonprofit  PartnerType = "nonprofit"
	PartnerTypeGovernment PartnerType = "government"
)

type Partner struct {
	ID           string      `json:"id,omitempty"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Type         PartnerType `json:"type"`
	Website      string      `json:"website,omitempty"`
	Logo         string      `json:"logo,omitempty"`
	ContactName  string      `json:"contactName,omitempty"`
	ContactEmail string      `json:"contactEmail,omitempty"`
	ContactPhone string      `json:"contactPhone,omitempty"`
	Status       Status      `json:"status"`
	CreatedAt    int64       `json:"createdAt"`
	UpdatedAt    int64       `json:"updatedAt,omitempty"`
}

func (p *Partner) Key() string       { return p.ID }
func (p *Partner) SetKey(key string) { p.ID = key }

type PartnerForm struct {
	Name         string      `json:"name" validate:"required,max=255"`
	Description  string      `json:"description" validate:"max=5000"`
	Type         PartnerType `json:"type" validate:"required,oneof=corporate academic nonprofit government"`
	Website      string      `json:"website,omitempty" validate:"omitempty,url"`
	Logo         string      `json:"logo,omitempty"`
	ContactName  string      `json:"contactName,omitempty"`
	ContactEmail string      `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone string      `json:"contactPhone,omitempty"`
	Status       Status      `json:"status" validate:"required,oneof=active inactive"`
}

func (f PartnerForm) Build(now int64) Partner {
	return Partner{
		Name:         f.Name,
		Description:  f.Description,
		Type:         f.Type,
		Website:      f.Website,
		Logo:         f.Logo,
		ContactName:  f.ContactName,
		ContactEmail: f.ContactEmail,
		ContactPhone: f.ContactPhone,
		Status:       f.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type PartnerPatch struct {
	Name         *string      `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	Type         *PartnerType `json:"type,omitempty" validate:"omitempty,oneof=corporate academic nonprofit government"`
	Website      *string      `json:"website,omitempty" validate:"omitempty,url"`
	Logo         *string      `json:"logo,omitempty"`
	ContactName  *string      `json:"contactName,omitempty"`
	ContactEmail *string      `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone *string      `json:"contactPhone,omitempty"`
	Status       *Status      `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (p PartnerPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Type != nil {
		fields["type"] = string(*p.Type)
	}
	if p.Website != nil {
		fields["website"] = *p.Website
	}
	if p.Logo != nil {
		fields["logo"] = *p.Logo
	}
	if p.ContactName != nil {
		fields["contactName"] = *p.ContactName
	}
	if p.ContactEmail != nil {
		fields["contactEmail"] = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		fields["contactPhone"] = *p.ContactPhone
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	return fields
}

func (PartnerPatch) patchOf(Partner) {}
