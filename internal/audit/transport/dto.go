// Package transport holds the audit entry shape shared with recording modules
// and the audit log API DTOs.
package transport

import (
	"encoding/json"

	"inspection_portal/platform/httpkit"

	"github.com/google/uuid"
)

// Action is the kind of mutation an audit entry records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the staff member and client behind a mutation.
type Actor struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
}

// NewActor builds an Actor from the authenticated user and request metadata.
func NewActor(userID uuid.UUID, meta httpkit.RequestMeta) Actor {
	var id *uuid.UUID
	if userID != uuid.Nil {
		id = &userID
	}
	return Actor{UserID: id, IPAddress: meta.IP, UserAgent: meta.UserAgent}
}

// Entry is one mutation to be appended to the audit log. OldValues is set for
// update and delete, NewValues for create and update.
type Entry struct {
	Actor     Actor
	Action    Action
	TableName string
	RecordID  string
	OldValues any
	NewValues any
}

type ListAuditLogsRequest struct {
	TableName string `form:"tableName" validate:"omitempty,max=100"`
	Action    string `form:"action" validate:"omitempty,oneof=create update delete"`
	ActorID   string `form:"actorId" validate:"omitempty,uuid"`
	RecordID  string `form:"recordId" validate:"omitempty,max=100"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actorId,omitempty"`
	ActorEmail string          `json:"actorEmail,omitempty"`
	Action     Action          `json:"action"`
	TableName  string          `json:"tableName"`
	RecordID   string          `json:"recordId"`
	OldValues  json.RawMessage `json:"oldValues,omitempty"`
	NewValues  json.RawMessage `json:"newValues,omitempty"`
	IPAddress  string          `json:"ipAddress"`
	UserAgent  string          `json:"userAgent"`
	CreatedAt  string          `json:"createdAt"`
}

type AuditLogListResponse struct {
	Items    []AuditLogResponse
	Total    int
	Page     int
	PageSize int
}
