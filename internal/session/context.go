package session

import (
	"fmt"

	"signer-core/pkg/signer"
	"signer-core/pkg/txparser"
)

// Mode is the application state of a signing session.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeSigningTx
	ModeSigningMessage
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeSigningTx:
		return "signing-tx"
	case ModeSigningMessage:
		return "signing-message"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// Context is the state of one signing session. Parser progress is only
// meaningful while Mode is ModeSigningTx.
type Context struct {
	Mode      Mode
	Path      []uint32
	Parser    *txparser.Parser
	Digest    [32]byte
	Signature signer.Signature
	// Message accumulates personal-sign chunks.
	Message []byte

	parserCfg txparser.Config
}

func NewContext(cfg txparser.Config) *Context {
	c := &Context{parserCfg: cfg}
	c.Reset()
	return c
}

// Reset drops any in-progress session and returns to idle.
func (c *Context) Reset() {
	c.Mode = ModeIdle
	c.Path = nil
	c.Parser = txparser.New(c.parserCfg)
	c.Digest = [32]byte{}
	c.Signature = signer.Signature{}
	for i := range c.Message {
		c.Message[i] = 0
	}
	c.Message = nil
}
