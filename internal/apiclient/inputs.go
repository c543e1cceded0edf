package apiclient

import (
	"github.com/hookahmix/miniapp/internal/domain"
)

// TobaccoInput is the body of create and bulk-create calls.
type TobaccoInput struct {
	Brand      *string `json:"brand,omitempty" validate:"omitempty,max=100"`
	CategoryID *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Notes      *string `json:"notes,omitempty"`
	Name       string  `json:"name" validate:"notblank,min=2,max=100"`
}

// TobaccoUpdate is the body of an update call. Nil fields are left unchanged.
type TobaccoUpdate struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,notblank,min=2,max=100"`
	Brand      *string `json:"brand,omitempty" validate:"omitempty,max=100"`
	CategoryID *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Notes      *string `json:"notes,omitempty"`
}

// bulkRequest wraps a batch for POST /tobaccos/bulk.
type bulkRequest struct {
	Tobaccos []TobaccoInput `json:"tobaccos"`
}

// GenerateRequest asks the backend for a new mix.
type GenerateRequest struct {
	BaseTobacco  *string            `json:"base_tobacco,omitempty" validate:"omitempty,notblank"`
	TasteProfile *string            `json:"taste_profile,omitempty" validate:"omitempty,notblank"`
	RequestType  domain.RequestType `json:"request_type" validate:"oneof=base profile surprise"`
}

// RateRequest is the body of POST /mixes/{id}/rate.
type RateRequest struct {
	Rating domain.Rating `json:"rating" validate:"required,gte=-1,lte=1"`
}

// FavoriteRequest is the body of POST /mixes/{id}/favorite.
type FavoriteRequest struct {
	IsFavorite bool `json:"is_favorite"`
}
