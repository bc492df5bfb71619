// Package apdu decodes ISO 7816 style command frames and routes them into
// the signing session.
package apdu

import (
	"fmt"

	"signer-core/pkg/errno"
)

// CLA is the only accepted class byte.
const CLA = 0xE0

// Ins is an instruction code.
type Ins byte

const (
	InsGetVersion   Ins = 0x01
	InsGetPubkey    Ins = 0x02
	InsSignTx       Ins = 0x03
	InsPersonalSign Ins = 0x04
	InsGetAppName   Ins = 0x05
)

func (i Ins) String() string {
	switch i {
	case InsGetVersion:
		return "get_version"
	case InsGetPubkey:
		return "get_pubkey"
	case InsSignTx:
		return "sign_tx"
	case InsPersonalSign:
		return "personal_sign"
	case InsGetAppName:
		return "get_app_name"
	default:
		return fmt.Sprintf("0x%02x", byte(i))
	}
}

// P1/P2 values
const (
	P1First        = 0x00
	P1Continuation = 0x80
	P2Last         = 0x00
	P2More         = 0x80

	P1NoDisplay   = 0x00
	P1Display     = 0x01
	P2NoChainCode = 0x00
	P2ChainCode   = 0x01
)

// HeaderLen is CLA INS P1 P2 Lc.
const HeaderLen = 5

// Command is a decoded command frame.
type Command struct {
	CLA  byte
	INS  Ins
	P1   byte
	P2   byte
	Data []byte
}

// Parse decodes [CLA][INS][P1][P2][Lc][data]. A bare 4 byte header means no
// data. Lc must match the data length exactly.
func Parse(raw []byte) (Command, error) {
	if len(raw) < HeaderLen-1 {
		return Command{}, errno.WrongApduLength
	}
	cmd := Command{CLA: raw[0], INS: Ins(raw[1]), P1: raw[2], P2: raw[3]}
	if len(raw) == HeaderLen-1 {
		return cmd, nil
	}
	if int(raw[4]) != len(raw)-HeaderLen {
		return Command{}, errno.WrongApduLength
	}
	cmd.Data = raw[HeaderLen:]
	return cmd, nil
}

// Encode builds a command frame. Data longer than 255 bytes is rejected.
func (c Command) Encode() ([]byte, error) {
	if len(c.Data) > 0xFF {
		return nil, fmt.Errorf("apdu: data too long (%d bytes)", len(c.Data))
	}
	out := make([]byte, 0, HeaderLen+len(c.Data))
	out = append(out, c.CLA, byte(c.INS), c.P1, c.P2, byte(len(c.Data)))
	return append(out, c.Data...), nil
}

// Reply joins payload and status word.
func Reply(payload []byte, sw uint16) []byte {
	out := make([]byte, 0, len(payload)+2)
	out = append(out, payload...)
	return append(out, byte(sw>>8), byte(sw))
}
