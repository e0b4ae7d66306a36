// Package models holds the client-side data model: the replicated inventory
// record with its sync marker, and the cached account identity.
package models

import "time"

// SyncStatus marks a replica row's relation to the server copy.
type SyncStatus string

const (
	// StatusSynced means the row mirrors the server copy.
	StatusSynced SyncStatus = "synced"
	// StatusPending means the row carries a local create or edit that has
	// not reached the server yet.
	StatusPending SyncStatus = "pending"
	// StatusDeleted is a tombstone: deleted locally, deletion not yet
	// propagated.
	StatusDeleted SyncStatus = "deleted"
)

// Record is an inventory item as held in the local replica.
//
// Key is the local identity and never changes; records created offline get a
// generated key before they have a server id. ID is the server identity and
// stays 0 until the first successful push. The JSON tags describe the wire
// shape used by the server API; Key and SyncStatus are local-only.
type Record struct {
	Key            string     `json:"-"`
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	SerialNumber   string     `json:"serialNumber"`
	Location       string     `json:"location"`
	Status         string     `json:"status"`
	Quantity       int        `json:"quantity"`
	AssignedTo     *int64     `json:"assignedTo"`
	AssignedToName string     `json:"assignedToName,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	SyncStatus     SyncStatus `json:"-"`
}

// Synced reports whether the row carries no local changes.
func (r *Record) Synced() bool {
	return r.SyncStatus == StatusSynced
}

// OnServer reports whether the record has a server identity yet.
func (r *Record) OnServer() bool {
	return r.ID != 0
}

// Update is a partial record mutation sent to the server. Nil fields keep
// their stored value.
type Update struct {
	Name         *string `json:"name"`
	SerialNumber *string `json:"serialNumber"`
	Location     *string `json:"location"`
	Status       *string `json:"status"`
	Quantity     *int    `json:"quantity"`
	AssignedTo   *int64  `json:"assignedTo"`
}

// UpdateFrom builds the partial mutation that pushes every replicated field
// of a locally edited record.
func UpdateFrom(r *Record) *Update {
	return &Update{
		Name:         &r.Name,
		SerialNumber: &r.SerialNumber,
		Location:     &r.Location,
		Status:       &r.Status,
		Quantity:     &r.Quantity,
		AssignedTo:   r.AssignedTo,
	}
}
