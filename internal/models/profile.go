package models

import (
	"strings"
	"time"
)

// Theme is a profile's UI preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Profile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AuthSubject string    `json:"-" gorm:"uniqueIndex;not null"` // identity-provider subject, prefixed by provider
	Handle      string    `json:"handle" gorm:"uniqueIndex;size:30;not null"`
	DisplayName string    `json:"display_name" gorm:"size:50"`
	Bio         string    `json:"bio" gorm:"size:300"`
	AvatarURL   string    `json:"avatar_url"`
	Theme       Theme     `json:"theme" gorm:"size:10;default:system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileCompact is the public subset of a profile attached to activities and comments.
type ProfileCompact struct {
	ID          uint   `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (p Profile) ToCompact() ProfileCompact {
	return ProfileCompact{
		ID:          p.ID,
		Handle:      p.Handle,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}

// ProfileSeed carries the identity-provider attributes used when a profile is provisioned.
type ProfileSeed struct {
	DisplayName string
	AvatarURL   string
}

// UpdateProfileRequest defines the request body for editing the caller's profile.
type UpdateProfileRequest struct {
	Handle      *string `json:"handle,omitempty" validate:"omitempty,handle"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=50"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=300"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Theme       *Theme  `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
}

func (r *UpdateProfileRequest) Normalize() {
	for _, field := range []*string{r.Handle, r.DisplayName, r.Bio} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

// Apply copies the non-nil fields of the request onto profile. Handles are
// stored lowercase.
func (r UpdateProfileRequest) Apply(profile *Profile) {
	if r.Handle != nil {
		profile.Handle = strings.ToLower(*r.Handle)
	}
	if r.DisplayName != nil {
		profile.DisplayName = *r.DisplayName
	}
	if r.Bio != nil {
		profile.Bio = *r.Bio
	}
	if r.AvatarURL != nil {
		profile.AvatarURL = *r.AvatarURL
	}
	if r.Theme != nil {
		profile.Theme = *r.Theme
	}
}
