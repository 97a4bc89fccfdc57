// AngelaMos | 2026
// dto.go

package team

import (
	"time"
)

type CreateRequest struct {
	Name     string `json:"name"                validate:"required,max=100"`
	TimeZone string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	Locale   string `json:"locale,omitempty"    validate:"omitempty,bcp47_language_tag"`
}

type UpdateRequest struct {
	Name     *string `json:"name,omitempty"      validate:"omitempty,min=1,max=100"`
	TimeZone *string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	Locale   *string `json:"locale,omitempty"    validate:"omitempty,bcp47_language_tag"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	TimeZone  string    `json:"time_zone,omitempty"`
	Locale    string    `json:"locale,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Created   string    `json:"created"`
}

type ListResponse struct {
	Items []Response `json:"items"`
}

type noticeResponse struct {
	Team   *Response `json:"team,omitempty"`
	Notice string    `json:"notice"`
}
