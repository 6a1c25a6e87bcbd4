package stream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenniS-Open/omega/notation"
)

func TestCursorSequence(t *testing.T) {
	c := NewCursor()
	require.NoError(t, c.Process(&Frame{SID: 1, Seq: 5}))
	require.NoError(t, c.Process(&Frame{SID: 1, Seq: 6}))

	err := c.Process(&Frame{SID: 1, Seq: 6})
	var se *SequenceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, uint64(7), se.Expected)

	err = c.Process(&Frame{SID: 1, Seq: 9})
	assert.True(t, errors.As(err, &se))

	require.NoError(t, c.Process(&Frame{SID: 2, Seq: 0}))
	assert.Equal(t, []uint64{1, 2}, c.SIDs())

	require.NoError(t, c.Process(&Frame{SID: 2, Seq: 1, Final: true}))
	assert.Error(t, c.Process(&Frame{SID: 2, Seq: 2}))
	assert.True(t, c.Lookup(2).Final)

	c.Delete(2)
	assert.Nil(t, c.Lookup(2))
}

func TestCursorAcks(t *testing.T) {
	c := NewCursor()
	assert.Nil(t, c.PendingAcks(1))
	for seq := uint64(0); seq < 4; seq++ {
		require.NoError(t, c.Process(&Frame{SID: 1, Seq: seq}))
	}
	c.Ack(1, 1)
	assert.Equal(t, []uint64{2, 3}, c.PendingAcks(1))
	c.Ack(1, 0)
	assert.Equal(t, uint64(1), c.Lookup(1).LastAcked)
}

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithDigest())
	require.NoError(t, w.WriteVar(3, 1, notation.String("doc")))
	require.NoError(t, w.WriteRow(3, 2, notation.Int(10)))
	require.NoError(t, w.WriteRow(3, 2, notation.Int(10)))
	require.NoError(t, w.WriteErr(3, 3, "boom"))
	require.NoError(t, w.WriteFinal(3, 4, notation.String("last")))

	h := NewHandler()
	var docs, rows []string
	var errMsg string
	finals := 0
	h.OnDoc = func(sid, seq uint64, v *notation.Var, _ *State) error {
		s, err := v.AsString()
		docs = append(docs, s)
		return err
	}
	h.OnRow = func(sid, seq uint64, v *notation.Var, _ *State) error {
		rows = append(rows, v.Type().String())
		return nil
	}
	h.OnErr = func(sid, seq uint64, msg string, _ *State) error {
		errMsg = msg
		return nil
	}
	h.OnFinal = func(sid uint64, _ *State) error {
		finals++
		return nil
	}

	r := NewReader(&buf)
	for {
		f, err := r.Next()
		if err != nil {
			break
		}
		require.NoError(t, h.Handle(f))
	}

	assert.Equal(t, []string{"doc", "last"}, docs)
	assert.Len(t, rows, 1)
	assert.Equal(t, "boom", errMsg)
	assert.Equal(t, 1, finals)

	state := h.Cursor.Lookup(3)
	require.NotNil(t, state)
	assert.True(t, notation.Equal(notation.String("last"), state.Doc))
	want, err := DigestVar(notation.String("last"))
	require.NoError(t, err)
	assert.Equal(t, want, state.Digest)
}

func TestHandlerGap(t *testing.T) {
	h := NewHandler()
	require.NoError(t, h.Handle(&Frame{SID: 1, Seq: 1, Kind: KindPing}))
	err := h.Handle(&Frame{SID: 1, Seq: 5, Kind: KindPing})
	var se *SequenceError
	assert.True(t, errors.As(err, &se))

	var gaps [][2]uint64
	h.OnSeqGap = func(sid, expected, got uint64) error {
		gaps = append(gaps, [2]uint64{expected, got})
		return nil
	}
	require.NoError(t, h.Handle(&Frame{SID: 1, Seq: 5, Kind: KindPing}))
	assert.Equal(t, [][2]uint64{{2, 5}}, gaps)
	assert.Equal(t, uint64(5), h.Cursor.Lookup(1).LastSeq)
}
