package domain

// CandidatePool is an ordered, id-deduplicated set of tracks with provenance
// retained for diagnostics only. Provenance never influences selection.
type CandidatePool struct {
	tracks []TrackRef
	index  map[string]int
	source map[string]string
}

// NewPool returns an empty pool.
func NewPool() *CandidatePool {
	return &CandidatePool{
		index:  make(map[string]int),
		source: make(map[string]string),
	}
}

// Add appends a track unless its id is already present. The stage label
// records which strategy stage contributed the track.
func (p *CandidatePool) Add(t TrackRef, stage string) bool {
	if t.ID == "" {
		return false
	}
	if _, ok := p.index[t.ID]; ok {
		return false
	}
	p.index[t.ID] = len(p.tracks)
	p.tracks = append(p.tracks, t)
	p.source[t.ID] = stage
	return true
}

// AddAll appends every track in ts under one stage label.
func (p *CandidatePool) AddAll(ts []TrackRef, stage string) {
	for _, t := range ts {
		p.Add(t, stage)
	}
}

// Contains reports whether the pool holds the given track id.
func (p *CandidatePool) Contains(id string) bool {
	_, ok := p.index[id]
	return ok
}

// Source returns the stage label that contributed the track id.
func (p *CandidatePool) Source(id string) string {
	return p.source[id]
}

// Len returns the number of tracks in the pool.
func (p *CandidatePool) Len() int {
	return len(p.tracks)
}

// Tracks returns a copy of the pool contents in insertion order.
func (p *CandidatePool) Tracks() []TrackRef {
	out := make([]TrackRef, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// ScoredTrack pairs a track with its selection score. The score is a pure
// function of the run inputs and the run's random source; nothing mutable is
// carried across invocations.
type ScoredTrack struct {
	Track TrackRef
	Score float64
}

// Result is the single output artifact of a run: an ordered track list plus
// the naming material the materializer needs. An empty Tracks slice is a
// valid terminal state, distinguishable from an error.
type Result struct {
	RunID       string
	Strategy    Strategy
	Tracks      []TrackRef
	Title       string
	Description string
}

// TrackIDs returns the ordered id list handed to the materializer.
func (r Result) TrackIDs() []string {
	ids := make([]string, len(r.Tracks))
	for i, t := range r.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Empty reports the explicit "no tracks selected" terminal state.
func (r Result) Empty() bool {
	return len(r.Tracks) == 0
}
