package transport

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadStatus is the sales workflow state shared by leads and report downloads.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusRejected  LeadStatus = "rejected"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusRejected,
}

// NewLead is a priced calculator submission ready to be stored.
type NewLead struct {
	FullName               string
	Email                  string
	Phone                  string
	CityID                 uuid.UUID
	CityName               string
	NeighborhoodID         uuid.UUID
	NeighborhoodName       string
	PackageID              uuid.UUID
	PackageName            string
	PropertyAgeKey         string
	PurposeKey             string
	LandArea               decimal.Decimal
	CoveredArea            decimal.Decimal
	TotalArea              decimal.Decimal
	BasePrice              decimal.Decimal
	AgeMultiplier          decimal.Decimal
	PurposeMultiplier      decimal.Decimal
	NeighborhoodMultiplier decimal.Decimal
	PriceBeforeVAT         decimal.Decimal
	VATPercentage          decimal.Decimal
	VATAmount              decimal.Decimal
	FinalPrice             decimal.Decimal
	Breakdown              json.RawMessage
	Source                 string
	IPAddress              string
	UserAgent              string
}

// Request DTOs
type ListLeadsRequest struct {
	Status      string `form:"status" validate:"omitempty,oneof=new contacted qualified converted rejected"`
	Search      string `form:"search" validate:"omitempty,max=100"`
	PackageID   string `form:"packageId" validate:"omitempty,uuid"`
	CityID      string `form:"cityId" validate:"omitempty,uuid"`
	AssignedTo  string `form:"assignedTo" validate:"omitempty,uuid"`
	CreatedFrom string `form:"createdFrom" validate:"omitempty,datetime=2006-01-02"`
	CreatedTo   string `form:"createdTo" validate:"omitempty,datetime=2006-01-02"`
	SortBy      string `form:"sortBy" validate:"omitempty,oneof=createdAt finalPrice status"`
	SortOrder   string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// UpdateLeadRequest touches only workflow fields. assignedTo and
// followUpDate are cleared by an explicit null.
type UpdateLeadRequest struct {
	Status       *LeadStatus  `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified converted rejected"`
	Notes        *string      `json:"notes,omitempty" validate:"omitempty,max=5000"`
	AssignedTo   OptionalUUID `json:"assignedTo,omitempty" validate:"-"`
	FollowUpDate OptionalDate `json:"followUpDate,omitempty" validate:"-"`
}

// Response DTOs
type LeadResponse struct {
	ID                     uuid.UUID       `json:"id"`
	FullName               string          `json:"fullName"`
	Email                  string          `json:"email"`
	Phone                  string          `json:"phone"`
	CityID                 uuid.UUID       `json:"cityId"`
	CityName               string          `json:"cityName"`
	NeighborhoodID         uuid.UUID       `json:"neighborhoodId"`
	NeighborhoodName       string          `json:"neighborhoodName"`
	PackageID              uuid.UUID       `json:"packageId"`
	PackageName            string          `json:"packageName"`
	PropertyAge            string          `json:"propertyAge"`
	Purpose                string          `json:"purpose"`
	LandArea               decimal.Decimal `json:"landArea"`
	CoveredArea            decimal.Decimal `json:"coveredArea"`
	TotalArea              decimal.Decimal `json:"totalArea"`
	BasePrice              decimal.Decimal `json:"basePrice"`
	AgeMultiplier          decimal.Decimal `json:"ageMultiplier"`
	PurposeMultiplier      decimal.Decimal `json:"purposeMultiplier"`
	NeighborhoodMultiplier decimal.Decimal `json:"neighborhoodMultiplier"`
	PriceBeforeVAT         decimal.Decimal `json:"priceBeforeVat"`
	VATPercentage          decimal.Decimal `json:"vatPercentage"`
	VATAmount              decimal.Decimal `json:"vatAmount"`
	FinalPrice             decimal.Decimal `json:"finalPrice"`
	Breakdown              json.RawMessage `json:"breakdown,omitempty"`
	Status                 LeadStatus      `json:"status"`
	Notes                  string          `json:"notes"`
	AssignedTo             *uuid.UUID      `json:"assignedTo"`
	AssignedToName         *string         `json:"assignedToName,omitempty"`
	FollowUpDate           *string         `json:"followUpDate"`
	Source                 string          `json:"source"`
	IPAddress              string          `json:"ipAddress,omitempty"`
	UserAgent              string          `json:"userAgent,omitempty"`
	CreatedAt              string          `json:"createdAt"`
	UpdatedAt              string          `json:"updatedAt"`
}

type LeadListResponse struct {
	Items    []LeadResponse
	Total    int
	Page     int
	PageSize int
}

// StatsResponse counts leads per status. Every status is present.
type StatsResponse struct {
	Total    int                `json:"total"`
	ByStatus map[LeadStatus]int `json:"byStatus"`
}
