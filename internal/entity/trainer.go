package entity

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type SocialMedia struct {
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
}

type Trainer struct {
	ID             string       `json:"id,omitempty"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Specialization string       `json:"specialization"`
	Bio            string       `json:"bio"`
	Experience     int          `json:"experience"` // years
	Rating         *float64     `json:"rating,omitempty"`
	Status         Status       `json:"status"`
	Avatar         string       `json:"avatar,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	SocialMedia    *SocialMedia `json:"socialMedia,omitempty"`
	CreatedAt      int64        `json:"createdAt"`
	UpdatedAt      int64        `json:"updatedAt,omitempty"`
}

func (t *Trainer) Key() string       { return t.ID }
func (t *Trainer) SetKey(key string) { t.ID = key }

type TrainerForm struct {
	Name           string       `json:"name" validate:"required,max=255"`
	Email          string       `json:"email" validate:"required,email"`
	Specialization string       `json:"specialization" validate:"required"`
	Bio            string       `json:"bio" validate:"max=5000"`
	Experience     int          `json:"experience" validate:"min=0"`
	Rating         *float64     `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Status         Status       `json:"status" validate:"required,oneof=active inactive"`
	Avatar         string       `json:"avatar,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	SocialMedia    *SocialMedia `json:"socialMedia,omitempty"`
}

func (f TrainerForm) Build(now int64) Trainer {
	return Trainer{
		Name:           f.Name,
		Email:          f.Email,
		Specialization: f.Specialization,
		Bio:            f.Bio,
		Experience:     f.Experience,
		Rating:         f.Rating,
		Status:         f.Status,
		Avatar:         f.Avatar,
		Phone:          f.Phone,
		SocialMedia:    f.SocialMedia,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type TrainerPatch struct {
	Name           *string      `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email          *string      `json:"email,omitempty" validate:"omitempty,email"`
	Specialization *string      `json:"specialization,omitempty" validate:"omitempty,min=1"`
	Bio            *string      `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Experience     *int         `json:"experience,omitempty" validate:"omitempty,min=0"`
	Rating         *float64     `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Status         *Status      `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Avatar         *string      `json:"avatar,omitempty"`
	Phone          *string      `json:"phone,omitempty"`
	SocialMedia    *SocialMedia `json:"socialMedia,omitempty"`
}

func (p TrainerPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Specialization != nil {
		fields["specialization"] = *p.Specialization
	}
	if p.Bio != nil {
		fields["bio"] = *p.Bio
	}
	if p.Experience != nil {
		fields["experience"] = *p.Experience
	}
	if p.Rating != nil {
		fields["rating"] = *p.Rating
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Avatar != nil {
		fields["avatar"] = *p.Avatar
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	// socialMedia is replaced as a whole, like any other top-level field
	if p.SocialMedia != nil {
		fields["socialMedia"] = *p.SocialMedia
	}
	return fields
}

func (TrainerPatch) patchOf(Trainer) {}
