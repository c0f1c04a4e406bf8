package decoder

import (
	"fmt"
	"sync"
)

// State holds the per-client decoding context that persists between
// requests from the same client (each request arrives on its own
// connection; SessionRegistry keys State by client IP): the last stroke
// decoded (so CONFIRM can
// derive a keyboard offset without the client resending points) and that
// calibrated offset, mutated only by CONFIRM and UNDO (§4.10).
type State struct {
	mu sync.Mutex

	lastStroke RawStroke
	offsetX    float64
	offsetY    float64
}

// RecordStroke stores the most recently decoded stroke, so a later CONFIRM
// can compute its keyboard offset without the client resending points
// (§4.10: "DECODE/CMD_DECODE: record last_stroke").
func (s *State) RecordStroke(stroke RawStroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStroke = stroke
}

// Confirm resamples the last decoded stroke to SamplePoints, derives the
// keyboard offset the confirmed word's gesture anchors imply relative to
// its canonical centroids at the reference keyboard size, and stores it for
// subsequent location-scored decodes (§1(f), §4.10 CONFIRM).
func (s *State) Confirm(word string, kb *Keyboard) error {
	s.mu.Lock()
	stroke := s.lastStroke
	s.mu.Unlock()

	sampled, err := Resample(stroke.X, stroke.Y, SamplePoints)
	if err != nil {
		return fmt.Errorf("session: confirming %q: %w", word, err)
	}
	dx, dy, err := wordOffset(word, kb, sampled, ReferenceKeyboardWidth, ReferenceKeyboardHeight)
	if err != nil {
		return fmt.Errorf("session: confirming %q: %w", word, err)
	}

	s.mu.Lock()
	s.offsetX, s.offsetY = dx, dy
	s.mu.Unlock()
	return nil
}

// Undo resets the offset to (0,0) and clears the remembered stroke (§4.10
// UNDO).
func (s *State) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsetX, s.offsetY = 0, 0
	s.lastStroke = RawStroke{}
}

// Offset returns the current calibrated keyboard offset, (0,0) until the
// first CONFIRM (§3 Offset). The location scorer is only engaged once this
// is non-zero.
func (s *State) Offset() (dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offsetX, s.offsetY
}

// SessionRegistry tracks one State per connected client, keyed by client
// IP. A registry is safe for concurrent use by multiple connection
// handlers.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*State
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*State)}
}

// Get returns the State for clientID, creating one on first use.
func (r *SessionRegistry) Get(clientID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[clientID]
	if !ok {
		s = &State{}
		r.sessions[clientID] = s
	}
	return s
}

// Drop removes a client's session, e.g. when its connection closes.
func (r *SessionRegistry) Drop(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, clientID)
}
