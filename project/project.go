// Package project keeps an ordered collection of items (tracks and waypoints),
// the item the user is focused on, and the point of focus within it.
// Projects are persisted by Store.
package project

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotblauer/trkgeo/events"
	"github.com/rotblauer/trkgeo/geo/focus"
	"github.com/rotblauer/trkgeo/geo/summary"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/item"
	"github.com/rotblauer/trkgeo/types/trk"
)

var ErrNotFound = errors.New("not found")
var ErrNotTrack = errors.New("item is not a track")

// summaryKey identifies one derivation of one item.
// Track generations do not count soft deletes, so the project counts derivations itself.
type summaryKey struct {
	Key string
	Rev uint64
}

type Project struct {
	ID   string
	Name string

	// Focus tracks the point of focus within the user focus track.
	Focus *focus.Tracker

	mu        sync.RWMutex
	keys      []string
	items     map[string]item.Item
	revs      map[string]uint64
	userFocus string
	summaries *lru.Cache[summaryKey, *summary.Summary]
}

func New(name string) *Project {
	cache, err := lru.New[summaryKey, *summary.Summary](params.SummaryCacheSize)
	if err != nil {
		// Only a non-positive size fails.
		panic(err)
	}
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Focus:     focus.NewTracker(nil, params.DefaultFocusConfig),
		items:     map[string]item.Item{},
		revs:      map[string]uint64{},
		summaries: cache,
	}
}

// derive must be called with mu held.
// The returned event, if any, is for sendRecomputed once mu is released;
// Feed.Send blocks on subscribers.
func (p *Project) derive(it item.Item) *events.Recomputed {
	it.Derive()
	p.revs[it.Key()]++
	tr, ok := it.(*item.Track)
	if !ok {
		return nil
	}
	return &events.Recomputed{
		TrackKey:   tr.Key(),
		Generation: tr.Generation(),
		Visible:    tr.CntVisiblePoints,
	}
}

func sendRecomputed(ev *events.Recomputed) {
	if ev != nil {
		events.RecomputedFeed.Send(*ev)
	}
}

// Add derives it and adds it at the end of the project.
// An item with the same key is replaced in place; if Focus was tracking the replaced track,
// it moves to the new one and its point of focus is dropped.
func (p *Project) Add(it item.Item) {
	p.mu.Lock()
	key := it.Key()
	old, replaced := p.items[key]
	if !replaced {
		p.keys = append(p.keys, key)
	}
	p.items[key] = it
	ev := p.derive(it)
	p.mu.Unlock()
	sendRecomputed(ev)

	if tr, ok := old.(*item.Track); replaced && ok && tr.Track != nil && p.Focus.Track() == tr.Track {
		var next *trk.Track
		if nt, ok := it.(*item.Track); ok {
			next = nt.Track
		}
		p.Focus.SetFocusOn(next, nil, focus.InitiatorNone)
	}
	slog.Debug("Project added item", "project", p.Name, "key", key, "kind", it.Kind(), "name", it.Name())
}

func (p *Project) Get(key string) (item.Item, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	it, ok := p.items[key]
	if !ok {
		return nil, fmt.Errorf("item %q: %w", key, ErrNotFound)
	}
	return it, nil
}

// Track returns the track item with key.
func (p *Project) Track(key string) (*item.Track, error) {
	it, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	tr, ok := it.(*item.Track)
	if !ok {
		return nil, fmt.Errorf("item %q: %w", key, ErrNotTrack)
	}
	return tr, nil
}

// Remove drops an item. If it was the user focus, the user focus is cleared.
func (p *Project) Remove(key string) error {
	p.mu.Lock()
	if _, ok := p.items[key]; !ok {
		p.mu.Unlock()
		return fmt.Errorf("item %q: %w", key, ErrNotFound)
	}
	delete(p.items, key)
	delete(p.revs, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	wasFocus := p.userFocus == key
	if wasFocus {
		p.userFocus = ""
	}
	p.mu.Unlock()

	if wasFocus {
		p.Focus.SetFocusOn(nil, nil, focus.InitiatorNone)
	}
	return nil
}

// Items returns the items in the order they were added.
func (p *Project) Items() []item.Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]item.Item, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, p.items[k])
	}
	return out
}

func (p *Project) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.keys)
}

// SetUserFocus makes key the item the user is working on; "" clears it.
// Focusing a track retargets Focus to it, dropping any point of focus in the previous track.
func (p *Project) SetUserFocus(key string) error {
	p.mu.Lock()
	var t *trk.Track
	if key != "" {
		it, ok := p.items[key]
		if !ok {
			p.mu.Unlock()
			return fmt.Errorf("item %q: %w", key, ErrNotFound)
		}
		if tr, ok := it.(*item.Track); ok {
			t = tr.Track
		}
	}
	changed := p.userFocus != key
	p.userFocus = key
	p.mu.Unlock()

	if changed {
		p.Focus.SetFocusOn(t, nil, focus.InitiatorNone)
	}
	return nil
}

// UserFocus returns the key of the item the user is working on, or "".
func (p *Project) UserFocus() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userFocus
}

// Edit runs fn on the track with key, then derives it again whether or not fn failed,
// since fn may have changed the track before failing.
// A point of focus lost to the edit is cleared.
func (p *Project) Edit(key string, fn func(t *trk.Track) error) error {
	p.mu.Lock()
	it, ok := p.items[key]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("item %q: %w", key, ErrNotFound)
	}
	tr, ok := it.(*item.Track)
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("item %q: %w", key, ErrNotTrack)
	}
	err := fn(tr.Track)
	ev := p.derive(tr)
	p.mu.Unlock()
	sendRecomputed(ev)

	if p.Focus.Track() == tr.Track {
		p.Focus.Revalidate()
	}
	if err != nil {
		return fmt.Errorf("edit %q: %w", key, err)
	}
	return nil
}

// Derive derives the item with key again, eg. after its engine changed.
func (p *Project) Derive(key string) error {
	p.mu.Lock()
	it, ok := p.items[key]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("item %q: %w", key, ErrNotFound)
	}
	ev := p.derive(it)
	p.mu.Unlock()
	sendRecomputed(ev)
	return nil
}

// Summary returns the summary of the track with key, cached until the track is derived again.
func (p *Project) Summary(key string) (*summary.Summary, error) {
	tr, err := p.Track(key)
	if err != nil {
		return nil, err
	}
	p.mu.RLock()
	sk := summaryKey{Key: key, Rev: p.revs[key]}
	p.mu.RUnlock()
	if s, ok := p.summaries.Get(sk); ok {
		return s, nil
	}
	s := summary.Of(tr.Track)
	p.summaries.Add(sk, s)
	return s, nil
}
