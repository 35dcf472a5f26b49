// Package tracker implements the session-scoped identifier consistency
// tracker.
//
// A Tracker remembers every identifier observed during a working session and
// derives naming-convention variations for each one. When a new name shows up
// that is a variation of something already defined (getUserData vs
// get_user_data, fetch_user vs get_user), CheckConsistency reports the
// existing spelling so the caller can reuse it instead of coining a duplicate.
//
// A Tracker is single-owner and not safe for concurrent use. Hosts that serve
// concurrent requests give each session its own Tracker and serialize access
// to it (see package session).
package tracker

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// Kind tags what sort of identifier a record describes. Any string is
// accepted by Track; the constants below are the values the extractors emit.
type Kind string

const (
	KindFunction Kind = "function"
	KindVariable Kind = "variable"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindConstant Kind = "constant"
)

// KindValues returns the known kinds, for tool schemas and validation.
func KindValues() []string {
	return []string{
		string(KindFunction),
		string(KindVariable),
		string(KindClass),
		string(KindMethod),
		string(KindConstant),
	}
}

// Known reports whether k is one of the predefined kinds.
func (k Kind) Known() bool {
	switch k {
	case KindFunction, KindVariable, KindClass, KindMethod, KindConstant:
		return true
	}
	return false
}

// Record is everything the tracker knows about one identifier.
type Record struct {
	Name            string    `json:"name"`
	Kind            Kind      `json:"type"`
	FirstSeenAt     time.Time `json:"first_seen"`
	LastSeenAt      time.Time `json:"last_seen"`
	OccurrenceCount int       `json:"occurrences"`
	Signatures      []string  `json:"signatures"`
	FileLocations   []string  `json:"files"`
}

// ConsistencyResult describes a name that looks like a re-spelling of one or
// more identifiers already tracked.
type ConsistencyResult struct {
	Name       string   `json:"identifier"`
	Message    string   `json:"message"`
	Existing   []string `json:"existing"`
	Suggestion string   `json:"suggestion"`
}

type entry struct {
	rec   Record
	files map[string]struct{}
}

// Tracker holds the identifiers and variation index of one session.
type Tracker struct {
	now     func() time.Time
	records map[string]*entry
	order   []string
	index   map[string]map[string]struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for FirstSeenAt/LastSeenAt.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates an empty Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		now:     time.Now,
		records: make(map[string]*entry),
		index:   make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type trackOptions struct {
	signature string
	file      string
}

// TrackOption supplies optional data to Track.
type TrackOption func(*trackOptions)

// WithSignature attaches a signature string to the observation.
func WithSignature(sig string) TrackOption {
	return func(o *trackOptions) { o.signature = sig }
}

// WithFile attaches the file path the identifier was observed in.
func WithFile(path string) TrackOption {
	return func(o *trackOptions) { o.file = path }
}

// Track records one observation of name. The first observation creates the
// record and indexes its variations; later ones bump the occurrence count,
// refresh LastSeenAt and merge the signature and file location. The kind of
// an existing record is never changed.
func (t *Tracker) Track(name string, kind Kind, opts ...TrackOption) {
	var o trackOptions
	for _, opt := range opts {
		opt(&o)
	}
	now := t.now()

	if e, ok := t.records[name]; ok {
		e.rec.OccurrenceCount++
		e.rec.LastSeenAt = now
		if o.signature != "" && !slices.Contains(e.rec.Signatures, o.signature) {
			e.rec.Signatures = append(e.rec.Signatures, o.signature)
		}
		if o.file != "" {
			e.files[o.file] = struct{}{}
		}
		return
	}

	e := &entry{
		rec: Record{
			Name:            name,
			Kind:            kind,
			FirstSeenAt:     now,
			LastSeenAt:      now,
			OccurrenceCount: 1,
			Signatures:      []string{},
		},
		files: make(map[string]struct{}),
	}
	if o.signature != "" {
		e.rec.Signatures = append(e.rec.Signatures, o.signature)
	}
	if o.file != "" {
		e.files[o.file] = struct{}{}
	}
	t.records[name] = e
	t.order = append(t.order, name)

	for _, v := range ComputeVariations(name) {
		t.link(v, name)
		t.link(name, v)
	}
}

func (t *Tracker) link(from, to string) {
	set, ok := t.index[from]
	if !ok {
		set = make(map[string]struct{})
		t.index[from] = set
	}
	set[to] = struct{}{}
}

// CheckConsistency reports whether name is a likely re-spelling of tracked
// identifiers. It returns nil when name is itself tracked or when nothing
// tracked links to it. Existing is sorted, and Suggestion is its first
// element.
func (t *Tracker) CheckConsistency(name string) *ConsistencyResult {
	if _, ok := t.records[name]; ok {
		return nil
	}

	var existing []string
	for candidate := range t.index[name] {
		if _, ok := t.records[candidate]; ok {
			existing = append(existing, candidate)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	sort.Strings(existing)

	return &ConsistencyResult{
		Name:       name,
		Message:    fmt.Sprintf("%q might be inconsistent with existing identifier(s)", name),
		Existing:   existing,
		Suggestion: existing[0],
	}
}

// Lookup returns a copy of the record for name.
func (t *Tracker) Lookup(name string) (*Record, bool) {
	e, ok := t.records[name]
	if !ok {
		return nil, false
	}
	rec := e.snapshot()
	return &rec, true
}

// List returns records in the order they were first tracked. A non-empty kind
// restricts the result to records of exactly that kind.
func (t *Tracker) List(kind Kind) []Record {
	out := make([]Record, 0, len(t.order))
	for _, name := range t.order {
		e := t.records[name]
		if kind != "" && e.rec.Kind != kind {
			continue
		}
		out = append(out, e.snapshot())
	}
	return out
}

// Linked returns the variation index entry for name, sorted. For a tracked
// name these are its synthetic spellings; for a variation they are the
// tracked names that produced it.
func (t *Tracker) Linked(name string) []string {
	set := t.index[name]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of tracked identifiers.
func (t *Tracker) Len() int {
	return len(t.records)
}

// Clear forgets every record and the whole variation index.
func (t *Tracker) Clear() {
	t.records = make(map[string]*entry)
	t.order = nil
	t.index = make(map[string]map[string]struct{})
}

func (e *entry) snapshot() Record {
	rec := e.rec
	rec.Signatures = append([]string(nil), e.rec.Signatures...)
	if rec.Signatures == nil {
		rec.Signatures = []string{}
	}
	rec.FileLocations = make([]string, 0, len(e.files))
	for f := range e.files {
		rec.FileLocations = append(rec.FileLocations, f)
	}
	sort.Strings(rec.FileLocations)
	return rec
}
