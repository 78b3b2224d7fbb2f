package server

import "context"

// Repository defines persistence operations for the server aggregate.
type Repository interface {
	Create(ctx context.Context, srv *Server) error
	GetByID(ctx context.Context, id uint) (*Server, error)
	List(ctx context.Context) ([]*Server, error)
	ListActive(ctx context.Context) ([]*Server, error)
	Update(ctx context.Context, srv *Server) error
}

// HealthRecordRepository persists append-only health snapshots.
type HealthRecordRepository interface {
	Create(ctx context.Context, record *HealthRecord) error
	ListByServer(ctx context.Context, serverID uint, limit int) ([]*HealthRecord, error)
}
