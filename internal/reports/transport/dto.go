package transport

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus is the follow-up state of a report download.
type DownloadStatus string

const (
	StatusNew       DownloadStatus = "new"
	StatusContacted DownloadStatus = "contacted"
	StatusQualified DownloadStatus = "qualified"
	StatusConverted DownloadStatus = "converted"
	StatusRejected  DownloadStatus = "rejected"
)

type CaptureRequest struct {
	Phone       string `json:"phone" validate:"required,min=5,max=32"`
	FullName    string `json:"fullName" validate:"omitempty,max=200"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Source      string `json:"source" validate:"omitempty,max=100"`
	UTMSource   string `json:"utmSource" validate:"omitempty,max=200"`
	UTMMedium   string `json:"utmMedium" validate:"omitempty,max=200"`
	UTMCampaign string `json:"utmCampaign" validate:"omitempty,max=200"`
}

type CaptureResponse struct {
	ID          uuid.UUID  `json:"id"`
	DownloadURL string     `json:"downloadUrl"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type ListDownloadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=new contacted qualified converted rejected"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type UpdateDownloadRequest struct {
	Status *DownloadStatus `json:"status" validate:"omitempty,oneof=new contacted qualified converted rejected"`
	Notes  *string         `json:"notes" validate:"omitempty,max=5000"`
}

type DownloadResponse struct {
	ID          uuid.UUID      `json:"id"`
	Phone       string         `json:"phone"`
	FullName    string         `json:"fullName"`
	Email       string         `json:"email"`
	Source      string         `json:"source"`
	Referrer    string         `json:"referrer"`
	UTMSource   string         `json:"utmSource"`
	UTMMedium   string         `json:"utmMedium"`
	UTMCampaign string         `json:"utmCampaign"`
	IPAddress   string         `json:"ipAddress"`
	UserAgent   string         `json:"userAgent"`
	Status      DownloadStatus `json:"status"`
	Notes       string         `json:"notes"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type DownloadListResponse struct {
	Items    []DownloadResponse `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}
