// Package client is the host side of the signer: it frames requests into
// command APDUs and decodes the replies.
package client

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"signer-core/pkg/bip32"
	"signer-core/pkg/errno"
)

const (
	cla = 0xe0

	opGetVersion   = 0x01
	opGetPubkey    = 0x02
	opSignTx       = 0x03
	opPersonalSign = 0x04
	opGetAppName   = 0x05

	p1First        = 0x00
	p1Continuation = 0x80
	p2Last         = 0x00
	p2More         = 0x80

	// maxChunk is the largest data field of one command.
	maxChunk = 255
)

var errInvalidReply = errors.New("client: invalid reply")

// Client drives a signer through an Exchanger.
type Client struct {
	ex Exchanger
}

func New(ex Exchanger) *Client {
	return &Client{ex: ex}
}

// FlattenPath encodes a derivation path as [count][uint32 BE]...
func FlattenPath(path []uint32) []byte {
	out := make([]byte, 1+4*len(path))
	out[0] = byte(len(path))
	for i, component := range path {
		binary.BigEndian.PutUint32(out[1+4*i:], component)
	}
	return out
}

// ParsePath parses "m/44'/503'/0'/0/0" style paths.
func ParsePath(s string) ([]uint32, error) {
	return bip32.ParsePath(s)
}

func (c *Client) exchange(ctx context.Context, op, p1, p2 byte, data []byte) ([]byte, error) {
	if len(data) > maxChunk {
		return nil, fmt.Errorf("client: chunk of %d bytes exceeds %d", len(data), maxChunk)
	}
	apdu := make([]byte, 0, 5+len(data))
	apdu = append(apdu, cla, op, p1, p2, byte(len(data)))
	apdu = append(apdu, data...)

	payload, sw, err := c.ex.Exchange(ctx, apdu)
	if err != nil {
		return nil, err
	}
	if sw != errno.OK.Code {
		return nil, &StatusError{SW: sw}
	}
	return payload, nil
}

// AppVersion is the reply of GetVersion.
type AppVersion struct {
	BlindSigning    bool
	DetailedDisplay bool
	Major           uint8
	Minor           uint8
	Patch           uint8
}

func (v AppVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (c *Client) Version(ctx context.Context) (AppVersion, error) {
	reply, err := c.exchange(ctx, opGetVersion, 0, 0, nil)
	if err != nil {
		return AppVersion{}, err
	}
	if len(reply) != 4 {
		return AppVersion{}, fmt.Errorf("%w: version of %d bytes", errInvalidReply, len(reply))
	}
	return AppVersion{
		BlindSigning:    reply[0]&0x01 != 0,
		DetailedDisplay: reply[0]&0x02 != 0,
		Major:           reply[1],
		Minor:           reply[2],
		Patch:           reply[3],
	}, nil
}

func (c *Client) AppName(ctx context.Context) (string, error) {
	reply, err := c.exchange(ctx, opGetAppName, 0, 0, nil)
	if err != nil {
		return "", err
	}
	return string(reply), nil
}

// GetPublicKey returns the uncompressed public key (0x04||X||Y) and, when
// requested, the chain code.
func (c *Client) GetPublicKey(ctx context.Context, path []uint32, display, chainCode bool) ([]byte, []byte, error) {
	var p1, p2 byte
	if display {
		p1 = 0x01
	}
	if chainCode {
		p2 = 0x01
	}
	reply, err := c.exchange(ctx, opGetPubkey, p1, p2, FlattenPath(path))
	if err != nil {
		return nil, nil, err
	}
	if len(reply) < 1+65 || reply[0] != 65 || reply[1] != 0x04 {
		return nil, nil, fmt.Errorf("%w: public key", errInvalidReply)
	}
	pub := append([]byte(nil), reply[1:66]...)
	rest := reply[66:]
	if !chainCode {
		if len(rest) != 0 {
			return nil, nil, fmt.Errorf("%w: trailing bytes", errInvalidReply)
		}
		return pub, nil, nil
	}
	if len(rest) != 33 || rest[0] != 32 {
		return nil, nil, fmt.Errorf("%w: chain code", errInvalidReply)
	}
	return pub, append([]byte(nil), rest[1:]...), nil
}

// SignTransaction streams path||tx in chunks and returns [v][r][s].
func (c *Client) SignTransaction(ctx context.Context, path []uint32, tx []byte) ([]byte, error) {
	payload := append(FlattenPath(path), tx...)
	op := byte(p1First)

	var reply []byte
	for len(payload) > 0 {
		chunk := min(maxChunk, len(payload))
		var err error
		if reply, err = c.exchange(ctx, opSignTx, op, 0, payload[:chunk]); err != nil {
			return nil, err
		}
		payload = payload[chunk:]
		op = p1Continuation
		if len(reply) > 0 && len(payload) > 0 {
			return nil, fmt.Errorf("%w: signature before the last chunk", errInvalidReply)
		}
	}
	if len(reply) != 65 {
		return nil, fmt.Errorf("%w: signature of %d bytes", errInvalidReply, len(reply))
	}
	return reply, nil
}

// SignMessage signs a personal message and returns [v][r][s].
func (c *Client) SignMessage(ctx context.Context, path []uint32, msg []byte) ([]byte, error) {
	payload := append(FlattenPath(path), msg...)
	op := byte(p1First)

	for {
		chunk := min(maxChunk, len(payload))
		p2 := byte(p2More)
		if chunk == len(payload) {
			p2 = p2Last
		}
		reply, err := c.exchange(ctx, opPersonalSign, op, p2, payload[:chunk])
		if err != nil {
			return nil, err
		}
		payload = payload[chunk:]
		op = p1Continuation
		if p2 == p2Last {
			if len(reply) != 65 {
				return nil, fmt.Errorf("%w: signature of %d bytes", errInvalidReply, len(reply))
			}
			return reply, nil
		}
	}
}

// UnpackSignature splits a [v][r][s] reply.
func UnpackSignature(vrs []byte) (v byte, r, s [32]byte, err error) {
	if len(vrs) != 65 || vrs[0] > 3 {
		return 0, r, s, fmt.Errorf("%w: signature", errInvalidReply)
	}
	copy(r[:], vrs[1:33])
	copy(s[:], vrs[33:])
	return vrs[0], r, s, nil
}

// EthSignature reorders [v][r][s] into the [r][s][v] layout go-ethereum's
// crypto package expects.
func EthSignature(vrs []byte) ([]byte, error) {
	if _, _, _, err := UnpackSignature(vrs); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 65)
	out = append(out, vrs[1:]...)
	return append(out, vrs[0]), nil
}

// Raw sends a pre-built frame and returns the reply as is.
func (c *Client) Raw(ctx context.Context, apdu []byte) ([]byte, uint16, error) {
	return c.ex.Exchange(ctx, apdu)
}
