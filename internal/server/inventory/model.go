// Package inventory implements the authoritative record store for physical
// inventory: models, persistence, and the service that stamps timestamps and
// validates input.
package inventory

import "time"

// Record is a single inventory item as stored on the server.
//
// Status is an open string tag; the server does not enforce a closed enum.
// AssignedTo references a user id and is nil when the item is unassigned.
// AssignedToName is injected by joining on users for list and report output;
// it is never stored.
type Record struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	SerialNumber   string    `json:"serialNumber"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	Quantity       int       `json:"quantity"`
	AssignedTo     *int64    `json:"assignedTo"`
	AssignedToName string    `json:"assignedToName,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Update is a partial record mutation. Nil fields keep their stored value;
// they are never overwritten with defaults.
type Update struct {
	Name         *string `json:"name"`
	SerialNumber *string `json:"serialNumber"`
	Location     *string `json:"location"`
	Status       *string `json:"status"`
	Quantity     *int    `json:"quantity"`
	AssignedTo   *int64  `json:"assignedTo"`
}

// Filter restricts List results. Zero values mean "no restriction".
type Filter struct {
	Status     string
	AssignedTo *int64
}
