package rlpstream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := rlp.EncodeToBytes(v)
	require.NoError(t, err)
	return b
}

// feed drives Step over the given pieces and returns the collected payload.
func feed(t *testing.T, pieces [][]byte, limit uint64) (State, []byte) {
	t.Helper()
	var (
		st   State
		body []byte
	)
	for _, piece := range pieces {
		for len(piece) > 0 && !st.Done() {
			var (
				p   Progress
				err error
			)
			st, p, err = Step(st, piece, limit)
			require.NoError(t, err)
			body = append(body, p.Body...)
			piece = piece[p.N:]
			if p.N == 0 {
				break
			}
		}
	}
	return st, body
}

func TestStepWhole(t *testing.T) {
	long := bytes.Repeat([]byte{0xab}, 300)
	tests := []struct {
		name string
		enc  []byte
		kind Kind
		body []byte
	}{
		{"single byte", []byte{0x05}, Byte, []byte{0x05}},
		{"zero byte", []byte{0x00}, Byte, []byte{0x00}},
		{"empty string", []byte{0x80}, String, nil},
		{"short string", mustEncode(t, []byte("dog")), String, []byte("dog")},
		{"one high byte", []byte{0x81, 0x80}, String, []byte{0x80}},
		{"long string", mustEncode(t, long), String, long},
		{"empty list", []byte{0xc0}, List, nil},
		{"short list", mustEncode(t, []string{"cat", "dog"}), List, []byte{0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, body := feed(t, [][]byte{tc.enc}, 1024)
			assert.True(t, st.Done())
			assert.Equal(t, tc.kind, st.Kind)
			assert.Equal(t, len(tc.body), len(body))
			if len(tc.body) > 0 {
				assert.Equal(t, tc.body, body)
			}
			assert.Equal(t, uint64(len(tc.enc)), st.EncodedLen())
		})
	}
}

func TestStepEverySplit(t *testing.T) {
	payload := bytes.Repeat([]byte{0x11, 0x22, 0x33}, 40)
	enc := mustEncode(t, payload)

	for i := 0; i <= len(enc); i++ {
		st, body := feed(t, [][]byte{enc[:i], enc[i:]}, 1024)
		if !st.Done() {
			t.Fatalf("split %d: not complete, phase %v", i, st.Phase)
		}
		if !bytes.Equal(body, payload) {
			t.Fatalf("split %d: payload mismatch", i)
		}
	}

	// byte at a time
	pieces := make([][]byte, len(enc))
	for i := range enc {
		pieces[i] = enc[i : i+1]
	}
	st, body := feed(t, pieces, 1024)
	assert.True(t, st.Done())
	assert.Equal(t, payload, body)
}

func TestHeaderSplitAtFirstByte(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 70)
	enc := mustEncode(t, payload) // b8 46 ...

	st, n, err := ReadHeader(State{}, enc[:1], 1024)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, PhaseHeader, st.Phase)
	assert.Equal(t, []byte{0xb8}, st.Header())

	st, n, err = ReadHeader(st, enc[1:], 1024)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	whole, _, err := ReadHeader(State{}, enc, 1024)
	require.NoError(t, err)
	assert.Equal(t, whole, st)
	assert.Equal(t, uint64(70), st.Size)
	assert.Equal(t, PhaseBody, st.Phase)
}

func TestStepResumeIsPure(t *testing.T) {
	enc := mustEncode(t, []byte("hello world"))
	st1, p1, err := Step(State{}, enc[:4], 64)
	require.NoError(t, err)
	st2, p2, err := Step(State{}, enc[:4], 64)
	require.NoError(t, err)
	assert.Equal(t, st1, st2)
	assert.Equal(t, p1, p2)
	assert.True(t, p1.HeaderDone)
	assert.Equal(t, uint64(3), st1.Consumed)

	st3, p3, err := Step(st1, enc[4:], 64)
	require.NoError(t, err)
	assert.False(t, p3.HeaderDone)
	assert.True(t, st3.Done())
	assert.Equal(t, []byte("lo world"), p3.Body)
}

func TestStepErrors(t *testing.T) {
	tests := []struct {
		name  string
		enc   []byte
		limit uint64
		err   error
	}{
		{"single byte as string", []byte{0x81, 0x05}, 64, ErrCanonSize},
		{"leading zero size", []byte{0xb8, 0x00}, 64, ErrCanonSize},
		{"long form for short size", []byte{0xb8, 0x05, 1, 2, 3, 4, 5}, 64, ErrCanonSize},
		{"long list short size", []byte{0xf8, 0x10}, 64, ErrCanonSize},
		{"string over limit", []byte{0x94}, 8, ErrTooLarge},
		{"long string over limit", []byte{0xb9, 0x01, 0x00}, 255, ErrTooLarge},
		{"byte with zero limit", []byte{0x01}, 0, ErrTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Step(State{}, tc.enc, tc.limit)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestStepComplete(t *testing.T) {
	st, p, err := Step(State{}, []byte{0x80, 0x01}, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, p.N)
	assert.True(t, st.Done())

	_, _, err = Step(st, []byte{0x01}, 8)
	assert.ErrorIs(t, err, ErrComplete)
}

func TestStepEmptyInput(t *testing.T) {
	st, p, err := Step(State{}, nil, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, p.N)
	assert.Equal(t, State{}, st)
}
