package stream

import (
	"fmt"
	"sort"
	"sync"

	"github.com/TenniS-Open/omega/notation"
)

// Cursor tracks per-SID state while consuming frames.
type Cursor struct {
	mu      sync.RWMutex
	streams map[uint64]*State
}

// State holds the state of a single stream ID.
type State struct {
	SID       uint64
	LastSeq   uint64 // last sequence number seen, valid when Started
	LastAcked uint64
	Started   bool
	Doc       *notation.Var // last complete value, nil until one arrives
	Digest    [32]byte      // digest of Doc
	Final     bool
}

// NewCursor creates an empty cursor.
func NewCursor() *Cursor {
	return &Cursor{streams: make(map[uint64]*State)}
}

// Get returns the state for sid, creating it if needed.
func (c *Cursor) Get(sid uint64) *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.streams[sid]
	if !ok {
		state = &State{SID: sid}
		c.streams[sid] = state
	}
	return state
}

// Lookup returns the state for sid without creating it.
func (c *Cursor) Lookup(sid uint64) *State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streams[sid]
}

// Delete forgets sid.
func (c *Cursor) Delete(sid uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, sid)
}

// SIDs returns the tracked stream IDs in ascending order.
func (c *Cursor) SIDs() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sids := make([]uint64, 0, len(c.streams))
	for sid := range c.streams {
		sids = append(sids, sid)
	}
	sort.Slice(sids, func(i, j int) bool { return sids[i] < sids[j] })
	return sids
}

// Process checks that frame continues its stream and records it. The first
// frame of a stream may carry any sequence number; later ones must follow
// by exactly one. Frames after a final frame are rejected.
func (c *Cursor) Process(frame *Frame) error {
	state := c.Get(frame.SID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if state.Final {
		return fmt.Errorf("stream: sid %d already ended at seq %d", frame.SID, state.LastSeq)
	}
	if state.Started && frame.Seq != state.LastSeq+1 {
		return &SequenceError{SID: frame.SID, Expected: state.LastSeq + 1, Got: frame.Seq}
	}
	state.Started = true
	state.LastSeq = frame.Seq
	if frame.Final {
		state.Final = true
	}
	return nil
}

// SetDoc records v as the current value of sid.
func (c *Cursor) SetDoc(sid uint64, v *notation.Var) error {
	d, err := DigestVar(v)
	if err != nil {
		return err
	}
	state := c.Get(sid)
	c.mu.Lock()
	defer c.mu.Unlock()
	state.Doc = v
	state.Digest = d
	return nil
}

// Ack marks seq as acknowledged.
func (c *Cursor) Ack(sid, seq uint64) {
	state := c.Get(sid)
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > state.LastAcked {
		state.LastAcked = seq
	}
}

// PendingAcks returns sequences that have been seen but not acknowledged.
func (c *Cursor) PendingAcks(sid uint64) []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state := c.streams[sid]
	if state == nil || !state.Started || state.LastSeq <= state.LastAcked {
		return nil
	}
	pending := make([]uint64, 0, state.LastSeq-state.LastAcked)
	for seq := state.LastAcked + 1; seq <= state.LastSeq; seq++ {
		pending = append(pending, seq)
	}
	return pending
}

// ============================================================
// Handler
// ============================================================

// Handler decodes frames and dispatches them to callbacks, tracking
// per-SID state in Cursor. Duplicate frames are dropped silently.
type Handler struct {
	Cursor *Cursor

	OnDoc   func(sid, seq uint64, v *notation.Var, state *State) error
	OnRow   func(sid, seq uint64, v *notation.Var, state *State) error
	OnAck   func(sid, seq uint64, state *State) error
	OnErr   func(sid, seq uint64, msg string, state *State) error
	OnFinal func(sid uint64, state *State) error

	// OnSeqGap decides whether a gap is fatal; without it gaps fail.
	OnSeqGap func(sid, expected, got uint64) error
}

// NewHandler creates a handler with a fresh cursor.
func NewHandler() *Handler {
	return &Handler{Cursor: NewCursor()}
}

// Handle processes one frame.
func (h *Handler) Handle(frame *Frame) error {
	state := h.Cursor.Get(frame.SID)
	if state.Started && frame.Seq <= state.LastSeq {
		return nil
	}
	if state.Started && frame.Seq != state.LastSeq+1 {
		if h.OnSeqGap == nil {
			return &SequenceError{SID: frame.SID, Expected: state.LastSeq + 1, Got: frame.Seq}
		}
		if err := h.OnSeqGap(frame.SID, state.LastSeq+1, frame.Seq); err != nil {
			return err
		}
		// Accepted gap: resume from the frame before this one.
		h.Cursor.mu.Lock()
		state.LastSeq = frame.Seq - 1
		h.Cursor.mu.Unlock()
	}
	if err := h.Cursor.Process(frame); err != nil {
		return err
	}

	switch frame.Kind {
	case KindDoc, KindRow:
		v, err := frame.Var()
		if err != nil {
			return fmt.Errorf("sid %d seq %d: %w", frame.SID, frame.Seq, err)
		}
		if frame.Kind == KindDoc {
			if err := h.Cursor.SetDoc(frame.SID, v); err != nil {
				return err
			}
			if h.OnDoc != nil {
				if err := h.OnDoc(frame.SID, frame.Seq, v, state); err != nil {
					return err
				}
			}
		} else if h.OnRow != nil {
			if err := h.OnRow(frame.SID, frame.Seq, v, state); err != nil {
				return err
			}
		}
	case KindAck:
		h.Cursor.Ack(frame.SID, frame.Seq)
		if h.OnAck != nil {
			if err := h.OnAck(frame.SID, frame.Seq, state); err != nil {
				return err
			}
		}
	case KindErr:
		v, err := frame.Var()
		if err != nil {
			return err
		}
		msg, _ := v.AsString()
		if h.OnErr != nil {
			if err := h.OnErr(frame.SID, frame.Seq, msg, state); err != nil {
				return err
			}
		}
	}

	if frame.Final && h.OnFinal != nil {
		return h.OnFinal(frame.SID, state)
	}
	return nil
}
