package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Log is one persisted audit record.
type Log struct {
	ID         uuid.UUID
	ActorID    *uuid.UUID
	ActorEmail *string
	Action     string
	TableName  string
	RecordID   string
	OldValues  []byte
	NewValues  []byte
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

type InsertParams struct {
	ActorID   *uuid.UUID
	Action    string
	TableName string
	RecordID  string
	OldValues []byte
	NewValues []byte
	IPAddress string
	UserAgent string
}

type ListParams struct {
	TableName string
	Action    string
	ActorID   *uuid.UUID
	RecordID  string
	Offset    int
	Limit     int
}

// Repository is append-only: there is no update or delete.
type Repository interface {
	Insert(ctx context.Context, params InsertParams) error
	List(ctx context.Context, params ListParams) ([]Log, int, error)
}
