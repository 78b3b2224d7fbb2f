package panel

import "context"

// InboundRepository persists the local mirror of remote inbounds.
// Upsert keys on (server, port); attributes are overwritten from remote truth.
type InboundRepository interface {
	Upsert(ctx context.Context, inbound *Inbound) error
	GetByID(ctx context.Context, id uint) (*Inbound, error)
	GetByServerAndPort(ctx context.Context, serverID uint, port uint16) (*Inbound, error)
	ListByServer(ctx context.Context, serverID uint) ([]*Inbound, error)
	// ListEnabledByServer returns enabled inbounds ordered so that rotation
	// target resolution is deterministic.
	ListEnabledByServer(ctx context.Context, serverID uint) ([]*Inbound, error)
}

// ClientAccountRepository persists the local mirror of remote client accounts.
// Upsert keys on (inbound, email).
type ClientAccountRepository interface {
	Upsert(ctx context.Context, account *ClientAccount) error
	GetByInboundAndEmail(ctx context.Context, inboundID uint, email string) (*ClientAccount, error)
	ListByInbound(ctx context.Context, inboundID uint) ([]*ClientAccount, error)
	CountByServer(ctx context.Context, serverID uint) (int64, error)
}
