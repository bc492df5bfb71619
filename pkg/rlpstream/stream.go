// Package rlpstream decodes a single RLP item from input that arrives in
// arbitrary pieces. Decoding progress is a plain State value; Step and
// ReadHeader are pure functions from (State, input) to the next State, so a
// caller can keep the State between chunks and inspect it in tests.
package rlpstream

import (
	"errors"
	"fmt"
)

// MaxHeaderLen is the longest possible item header: a prefix byte and
// eight size bytes.
const MaxHeaderLen = 9

var (
	ErrCanonSize = errors.New("rlp: non-canonical size information")
	ErrTooLarge  = errors.New("rlp: item size exceeds limit")
	ErrComplete  = errors.New("rlp: item already complete")
)

// Kind represents the kind of value contained in an RLP item.
type Kind uint8

const (
	Byte Kind = iota
	String
	List
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "Byte"
	case String:
		return "String"
	case List:
		return "List"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Phase is the position of the decoder within one item.
type Phase uint8

const (
	PhaseHeader Phase = iota
	PhaseBody
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseHeader:
		return "Header"
	case PhaseBody:
		return "Body"
	case PhaseComplete:
		return "Complete"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// State is the resumable progress of one item. The zero value awaits the
// first header byte.
type State struct {
	Phase Phase
	Kind  Kind
	// Size is the payload size, valid once the header is complete.
	Size uint64
	// Consumed counts payload bytes already delivered.
	Consumed uint64

	// Header bytes seen so far. HeaderLen is the full header length once the
	// prefix byte is known; a single byte item has no header.
	Pending    [MaxHeaderLen]byte
	PendingLen uint8
	HeaderLen  uint8
}

// Progress describes what one Step call did.
type Progress struct {
	// N is the number of input bytes consumed, header and payload.
	N int
	// Body holds the payload bytes delivered by this call. It aliases the input.
	Body []byte
	// HeaderDone reports that the header completed during this call.
	HeaderDone bool
}

func (s State) Done() bool { return s.Phase == PhaseComplete }

// Header returns the header bytes read so far.
func (s State) Header() []byte { return s.Pending[:s.PendingLen] }

// Remaining returns the payload bytes still expected.
func (s State) Remaining() uint64 { return s.Size - s.Consumed }

// EncodedLen is the full wire length of the item, header included.
// Only meaningful once the header is complete.
func (s State) EncodedLen() uint64 { return uint64(s.HeaderLen) + s.Size }

// ReadHeader advances st through the item header only and reports how many
// bytes of in it consumed. It returns with st.Phase still PhaseHeader when in
// ran out mid header. limit bounds the declared payload size.
func ReadHeader(st State, in []byte, limit uint64) (State, int, error) {
	if st.Phase == PhaseComplete {
		return st, 0, ErrComplete
	}
	n := 0
	for st.Phase == PhaseHeader {
		if st.PendingLen == 0 {
			if n >= len(in) {
				return st, n, nil
			}
			b := in[n]
			if b < 0x80 {
				// the byte is its own payload and stays in the input
				if limit < 1 {
					return st, n, ErrTooLarge
				}
				st.Kind, st.Size, st.HeaderLen = Byte, 1, 0
				st.Phase = PhaseBody
				return st, n, nil
			}
			st.Pending[0] = b
			st.PendingLen = 1
			st.HeaderLen = headerLen(b)
			n++
		}
		if st.PendingLen < st.HeaderLen {
			if n >= len(in) {
				return st, n, nil
			}
			k := copy(st.Pending[st.PendingLen:st.HeaderLen], in[n:])
			st.PendingLen += uint8(k)
			n += k
			if st.PendingLen < st.HeaderLen {
				return st, n, nil
			}
		}
		kind, size, err := decodeHeader(st.Pending[:st.HeaderLen])
		if err != nil {
			return st, n, err
		}
		if size > limit {
			return st, n, fmt.Errorf("%w: %d > %d", ErrTooLarge, size, limit)
		}
		st.Kind, st.Size = kind, size
		st.Phase = PhaseBody
		if size == 0 {
			st.Phase = PhaseComplete
		}
	}
	return st, n, nil
}

// Step advances st over as much of in as belongs to the current item, header
// and payload alike. List payloads are delivered as opaque bytes.
func Step(st State, in []byte, limit uint64) (State, Progress, error) {
	var p Progress
	if st.Phase == PhaseComplete {
		return st, p, ErrComplete
	}
	if st.Phase == PhaseHeader {
		var err error
		st, p.N, err = ReadHeader(st, in, limit)
		if err != nil || st.Phase == PhaseHeader {
			return st, p, err
		}
		p.HeaderDone = true
		if st.Phase == PhaseComplete {
			return st, p, nil
		}
	}

	avail := in[p.N:]
	take := st.Remaining()
	if uint64(len(avail)) < take {
		take = uint64(len(avail))
	}
	if take == 0 {
		return st, p, nil
	}
	if st.Kind == String && st.Size == 1 && st.Consumed == 0 && avail[0] < 0x80 {
		return st, p, ErrCanonSize
	}
	p.Body = avail[:take:take]
	p.N += int(take)
	st.Consumed += take
	if st.Consumed == st.Size {
		st.Phase = PhaseComplete
	}
	return st, p, nil
}

func headerLen(b byte) uint8 {
	switch {
	case b < 0x80:
		return 0
	case b < 0xB8:
		return 1
	case b < 0xC0:
		return 1 + b - 0xB7
	case b < 0xF8:
		return 1
	default:
		return 1 + b - 0xF7
	}
}

func decodeHeader(h []byte) (Kind, uint64, error) {
	b := h[0]
	switch {
	case b < 0xB8:
		return String, uint64(b - 0x80), nil
	case b < 0xC0:
		size, err := readSize(h[1:])
		return String, size, err
	case b < 0xF8:
		return List, uint64(b - 0xC0), nil
	default:
		size, err := readSize(h[1:])
		return List, size, err
	}
}

func readSize(b []byte) (uint64, error) {
	if b[0] == 0 {
		return 0, ErrCanonSize
	}
	var s uint64
	for _, c := range b {
		s = s<<8 | uint64(c)
	}
	// a long form size must not fit the short form
	if s < 56 {
		return 0, ErrCanonSize
	}
	return s, nil
}
