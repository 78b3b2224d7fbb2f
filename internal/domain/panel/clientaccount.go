package panel

import (
	"fmt"
	"time"
)

// ClientAccount mirrors one remote client identity bound to one inbound,
// unique per (inbound, email).
type ClientAccount struct {
	id           uint
	inboundID    uint
	email        string
	uuid         string
	uploadBytes  uint64
	downloadBytes uint64
	totalBytes   uint64
	expiresAt    *time.Time
	enabled      bool
	lastSeenAt   time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewClientAccount creates a client account from a remote traffic entry.
func NewClientAccount(inboundID uint, email, uuid string, upload, download, total uint64, expiresAt *time.Time, enabled bool, seenAt time.Time) (*ClientAccount, error) {
	if inboundID == 0 {
		return nil, fmt.Errorf("inbound ID is required")
	}
	if email == "" {
		return nil, fmt.Errorf("client email is required")
	}

	now := time.Now()
	return &ClientAccount{
		inboundID:     inboundID,
		email:         email,
		uuid:          uuid,
		uploadBytes:   upload,
		downloadBytes: download,
		totalBytes:    total,
		expiresAt:     expiresAt,
		enabled:       enabled,
		lastSeenAt:    seenAt,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructClientAccount reconstructs a client account from persistence
func ReconstructClientAccount(
	id, inboundID uint,
	email, uuid string,
	upload, download, total uint64,
	expiresAt *time.Time,
	enabled bool,
	lastSeenAt time.Time,
	createdAt, updatedAt time.Time,
) (*ClientAccount, error) {
	if id == 0 {
		return nil, fmt.Errorf("client account ID cannot be zero")
	}
	if inboundID == 0 {
		return nil, fmt.Errorf("inbound ID is required")
	}
	return &ClientAccount{
		id:            id,
		inboundID:     inboundID,
		email:         email,
		uuid:          uuid,
		uploadBytes:   upload,
		downloadBytes: download,
		totalBytes:    total,
		expiresAt:     expiresAt,
		enabled:       enabled,
		lastSeenAt:    lastSeenAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

func (c *ClientAccount) ID() uint              { return c.id }
func (c *ClientAccount) InboundID() uint       { return c.inboundID }
func (c *ClientAccount) Email() string         { return c.email }
func (c *ClientAccount) UUID() string          { return c.uuid }
func (c *ClientAccount) UploadBytes() uint64   { return c.uploadBytes }
func (c *ClientAccount) DownloadBytes() uint64 { return c.downloadBytes }
func (c *ClientAccount) TotalBytes() uint64    { return c.totalBytes }
func (c *ClientAccount) ExpiresAt() *time.Time { return c.expiresAt }
func (c *ClientAccount) Enabled() bool         { return c.enabled }
func (c *ClientAccount) LastSeenAt() time.Time { return c.lastSeenAt }
func (c *ClientAccount) CreatedAt() time.Time  { return c.createdAt }
func (c *ClientAccount) UpdatedAt() time.Time  { return c.updatedAt }

// SetID assigns the ID after persistence. It can only be set once.
func (c *ClientAccount) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("client account ID already set")
	}
	if id == 0 {
		return fmt.Errorf("client account ID cannot be zero")
	}
	c.id = id
	return nil
}

// UsedBytes returns total consumed traffic in both directions.
func (c *ClientAccount) UsedBytes() uint64 {
	return c.uploadBytes + c.downloadBytes
}

// ApplyRemote overwrites traffic totals, expiry and the enable flag from a
// fresh remote traffic entry.
func (c *ClientAccount) ApplyRemote(uuid string, upload, download, total uint64, expiresAt *time.Time, enabled bool, seenAt time.Time) {
	if uuid != "" {
		c.uuid = uuid
	}
	c.uploadBytes = upload
	c.downloadBytes = download
	c.totalBytes = total
	c.expiresAt = expiresAt
	c.enabled = enabled
	c.lastSeenAt = seenAt
	c.updatedAt = time.Now()
}
