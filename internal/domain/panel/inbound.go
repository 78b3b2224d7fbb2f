// Package panel holds the local mirror of remote panel state: inbound
// listeners and the client accounts provisioned on them. The reconciler is
// the only writer; attributes always reflect the last remote listing.
package panel

import (
	"fmt"
	"time"
)

// Inbound is a listener configuration owned by exactly one server,
// unique per (server, port).
type Inbound struct {
	id         uint
	serverID   uint
	remoteID   int
	port       uint16
	protocol   string
	tag        string
	listen     string
	settings   string
	enabled    bool
	lastSeenAt time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewInbound creates an inbound from a remote listing entry.
func NewInbound(serverID uint, remoteID int, port uint16, protocol, tag, listen, settings string, enabled bool, seenAt time.Time) (*Inbound, error) {
	if serverID == 0 {
		return nil, fmt.Errorf("server ID is required")
	}
	if port == 0 {
		return nil, fmt.Errorf("inbound port is required")
	}
	if protocol == "" {
		return nil, fmt.Errorf("inbound protocol is required")
	}

	now := time.Now()
	return &Inbound{
		serverID:   serverID,
		remoteID:   remoteID,
		port:       port,
		protocol:   protocol,
		tag:        tag,
		listen:     listen,
		settings:   settings,
		enabled:    enabled,
		lastSeenAt: seenAt,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructInbound reconstructs an inbound from persistence
func ReconstructInbound(
	id, serverID uint,
	remoteID int,
	port uint16,
	protocol, tag, listen, settings string,
	enabled bool,
	lastSeenAt time.Time,
	createdAt, updatedAt time.Time,
) (*Inbound, error) {
	if id == 0 {
		return nil, fmt.Errorf("inbound ID cannot be zero")
	}
	if serverID == 0 {
		return nil, fmt.Errorf("server ID is required")
	}
	return &Inbound{
		id:         id,
		serverID:   serverID,
		remoteID:   remoteID,
		port:       port,
		protocol:   protocol,
		tag:        tag,
		listen:     listen,
		settings:   settings,
		enabled:    enabled,
		lastSeenAt: lastSeenAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (i *Inbound) ID() uint              { return i.id }
func (i *Inbound) ServerID() uint        { return i.serverID }
func (i *Inbound) RemoteID() int         { return i.remoteID }
func (i *Inbound) Port() uint16          { return i.port }
func (i *Inbound) Protocol() string      { return i.protocol }
func (i *Inbound) Tag() string           { return i.tag }
func (i *Inbound) Listen() string        { return i.listen }
func (i *Inbound) Settings() string      { return i.settings }
func (i *Inbound) Enabled() bool         { return i.enabled }
func (i *Inbound) LastSeenAt() time.Time { return i.lastSeenAt }
func (i *Inbound) CreatedAt() time.Time  { return i.createdAt }
func (i *Inbound) UpdatedAt() time.Time  { return i.updatedAt }

// SetID assigns the ID after persistence. It can only be set once.
func (i *Inbound) SetID(id uint) error {
	if i.id != 0 {
		return fmt.Errorf("inbound ID already set")
	}
	if id == 0 {
		return fmt.Errorf("inbound ID cannot be zero")
	}
	i.id = id
	return nil
}

// ApplyRemote overwrites all remote-owned attributes from a fresh listing.
// No local-only fields survive a reconciliation.
func (i *Inbound) ApplyRemote(remoteID int, protocol, tag, listen, settings string, enabled bool, seenAt time.Time) {
	i.remoteID = remoteID
	i.protocol = protocol
	i.tag = tag
	i.listen = listen
	i.settings = settings
	i.enabled = enabled
	i.lastSeenAt = seenAt
	i.updatedAt = time.Now()
}
