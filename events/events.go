package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/geo/move"
	"github.com/rotblauer/catwatch/types/record"
)

// Movement describes a change to a person's last known position.
type Movement struct {
	Person     conceptual.PersonID `json:"person"`
	Record     record.Record       `json:"record"`
	Assessment move.Assessment     `json:"assessment"`
	Moving     bool                `json:"moving"`

	// SelfDistance is the distance in meters from the watching account's
	// own position, if it was known.
	SelfDistance *float64 `json:"self_distance,omitempty"`
	Near         bool     `json:"near"`
}

// MovementFeed is emitted by the collector whenever a person's last record
// changes its observation time. It is not emitted for a person's first record.
var MovementFeed = event.FeedOf[Movement]{}

// Saved is emitted after each store save attempt.
type Saved struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Err     error  `json:"-"`
}

// StoreSavedFeed is emitted by the autosave scheduler and on shutdown.
var StoreSavedFeed = event.FeedOf[Saved]{}
