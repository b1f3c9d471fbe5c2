// Package transport defines the public calculator request and response shapes.
package transport

import (
	"inspection_portal/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteInput is the property description priced by the calculator.
type QuoteInput struct {
	PackageID      uuid.UUID       `json:"packageId" validate:"required"`
	CityID         uuid.UUID       `json:"cityId" validate:"required"`
	NeighborhoodID uuid.UUID       `json:"neighborhoodId" validate:"required"`
	PropertyAge    string          `json:"propertyAge" validate:"required,max=50"`
	Purpose        string          `json:"purpose" validate:"required,max=50"`
	LandArea       decimal.Decimal `json:"landArea" validate:"gte=0"`
	CoveredArea    decimal.Decimal `json:"coveredArea" validate:"gte=0"`
}

// PreviewQuoteRequest prices a property without storing anything.
type PreviewQuoteRequest struct {
	QuoteInput
}

// SubmitQuoteRequest prices a property and stores it as a lead.
type SubmitQuoteRequest struct {
	QuoteInput
	FullName string `json:"fullName" validate:"required,min=2,max=150"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"required,min=5,max=30"`
	Source   string `json:"source" validate:"omitempty,max=50"`
}

// QuoteResponse carries every intermediate value of the computed price.
type QuoteResponse struct {
	pricing.Breakdown
	CityName         string `json:"cityName"`
	NeighborhoodName string `json:"neighborhoodName"`
}

// SubmitQuoteResponse is returned once the lead is stored.
type SubmitQuoteResponse struct {
	LeadID uuid.UUID     `json:"leadId"`
	Quote  QuoteResponse `json:"quote"`
}
