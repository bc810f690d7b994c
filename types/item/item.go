// Package item is the closed set of things a project holds: tracks and waypoints.
package item

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/paulmach/orb"
	"github.com/rotblauer/trkgeo/geo/derive"
	"github.com/rotblauer/trkgeo/types/trk"
)

type Kind string

const (
	KindTrack    Kind = "trk"
	KindWaypoint Kind = "wpt"
)

// Item is implemented only by the types in this package.
type Item interface {
	Key() string
	Name() string
	Kind() Kind
	Bound() orb.Bound
	// Derive brings the item's secondary data up to date with its raw data.
	Derive()
	json.Marshaler

	isItem()
}

// Track is a track item.
type Track struct {
	*trk.Track
	// Engine derives the track; nil uses derive.Recompute.
	Engine *derive.Engine
}

func NewTrack(t *trk.Track) *Track {
	t.GenKey()
	return &Track{Track: t}
}

func (t *Track) Key() string  { return t.Track.Key }
func (t *Track) Name() string { return t.Track.Name }
func (t *Track) Kind() Kind   { return KindTrack }
func (t *Track) isItem()      {}

func (t *Track) Bound() orb.Bound {
	return t.Track.Bound
}

func (t *Track) Derive() {
	if t.Engine != nil {
		t.Engine.Recompute(t.Track)
		return
	}
	derive.Recompute(t.Track)
}

func (t *Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Track)
}

// Waypoint is a single named position.
type Waypoint struct {
	ID  string         `json:"key"`
	Nom string         `json:"name"`
	Pt  trk.TrackPoint `json:"pt"`
}

// NewWaypoint returns a waypoint keyed by a hash of its name and raw point,
// so the same waypoint loaded twice has the same key.
func NewWaypoint(name string, pt trk.TrackPoint) *Waypoint {
	w := &Waypoint{Nom: name, Pt: pt}
	h, err := hashstructure.Hash(w, hashstructure.FormatV2, nil)
	if err != nil {
		// Only unhashable kinds fail, and Waypoint has none.
		panic(err)
	}
	w.ID = "w" + strconv.FormatUint(h, 16)
	return w
}

func (w *Waypoint) Key() string      { return w.ID }
func (w *Waypoint) Name() string     { return w.Nom }
func (w *Waypoint) Kind() Kind       { return KindWaypoint }
func (w *Waypoint) Bound() orb.Bound { return w.Pt.Point().Bound() }
func (w *Waypoint) Derive()          {}
func (w *Waypoint) isItem()          {}

func (w *Waypoint) MarshalJSON() ([]byte, error) {
	type alias Waypoint
	return json.Marshal((*alias)(w))
}

// envelope is how items are stored: a kind tag and the item's own JSON.
type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Marshal encodes an item with its kind, for Unmarshal.
func Marshal(it Item) ([]byte, error) {
	data, err := it.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: it.Kind(), Data: data})
}

// Unmarshal decodes an item encoded by Marshal. Tracks come back derived.
func Unmarshal(data []byte) (Item, error) {
	env := envelope{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case KindTrack:
		t := trk.NewTrack("")
		if err := json.Unmarshal(env.Data, t); err != nil {
			return nil, fmt.Errorf("decode track: %w", err)
		}
		it := NewTrack(t)
		it.Derive()
		return it, nil
	case KindWaypoint:
		w := &Waypoint{}
		if err := json.Unmarshal(env.Data, w); err != nil {
			return nil, fmt.Errorf("decode waypoint: %w", err)
		}
		return w, nil
	}
	return nil, fmt.Errorf("unknown item kind %q", env.Kind)
}
