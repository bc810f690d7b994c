package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/trkgeo/types/trk"
)

// FocusChanged is sent when a track's point of focus changes.
// Ref is nil when focus was cleared.
type FocusChanged struct {
	TrackKey string
	Ref      *trk.PointRef
}

// Recomputed is sent after a project item has been derived.
type Recomputed struct {
	TrackKey   string
	Generation uint64
	Visible    int
}

// FocusFeed is emitted for every point of focus change, after the tracker's
// own (synchronous) observers have been notified.
// Send blocks until every subscriber has received, so subscribers should
// read promptly or subscribe with a buffered channel.
var FocusFeed = event.FeedOf[FocusChanged]{}

// RecomputedFeed is emitted whenever a project re-derives one of its tracks,
// eg. after an edit.
var RecomputedFeed = event.FeedOf[Recomputed]{}
