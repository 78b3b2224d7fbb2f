// Package dto defines the typed payloads exchanged with remote panels.
// Panel responses are validated into these structs at the connector
// boundary; untyped maps never cross into the engine.
package dto

import "time"

// ResourceUsage is a current/total pair reported by the panel status endpoint.
type ResourceUsage struct {
	Current uint64 `json:"current"`
	Total   uint64 `json:"total"`
}

// Percent returns usage as a percentage, 0 when the total is unknown.
func (r ResourceUsage) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Current) / float64(r.Total) * 100
}

// ServerStatus is the panel's resource snapshot.
type ServerStatus struct {
	CPUPercent    float64       `json:"cpu"`
	Memory        ResourceUsage `json:"mem"`
	Disk          ResourceUsage `json:"disk"`
	UptimeSeconds uint64        `json:"uptime"`
	TCPCount      uint          `json:"tcpCount"`
	UDPCount      uint          `json:"udpCount"`
}

// ActiveConnections returns the combined TCP/UDP connection count.
func (s *ServerStatus) ActiveConnections() uint {
	return s.TCPCount + s.UDPCount
}

// ClientStat is one client's traffic entry under an inbound.
// ExpiryTime follows the panel convention of unix milliseconds, zero
// meaning no expiry.
type ClientStat struct {
	ID         int    `json:"id"`
	InboundID  int    `json:"inboundId"`
	Enable     bool   `json:"enable"`
	Email      string `json:"email"`
	UUID       string `json:"uuid"`
	Up         int64  `json:"up"`
	Down       int64  `json:"down"`
	ExpiryTime int64  `json:"expiryTime"`
	Total      int64  `json:"total"`
}

// ExpiresAt converts the panel's millisecond expiry into a time, nil when unset.
func (c *ClientStat) ExpiresAt() *time.Time {
	if c.ExpiryTime <= 0 {
		return nil
	}
	t := time.UnixMilli(c.ExpiryTime)
	return &t
}

// Inbound is one listener configuration in the panel's inbound listing.
type Inbound struct {
	ID          int          `json:"id"`
	Up          int64        `json:"up"`
	Down        int64        `json:"down"`
	Total       int64        `json:"total"`
	Remark      string       `json:"remark"`
	Enable      bool         `json:"enable"`
	ExpiryTime  int64        `json:"expiryTime"`
	Listen      string       `json:"listen"`
	Port        int          `json:"port"`
	Protocol    string       `json:"protocol"`
	Settings    string       `json:"settings"`
	ClientStats []ClientStat `json:"clientStats"`
}

// ClientSettings carries the mutable attributes of a remote client account.
type ClientSettings struct {
	UUID       string
	TotalBytes uint64
	ExpiresAt  *time.Time
	Enable     bool
}
