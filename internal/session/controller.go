// Package session drives transaction and message signing across the chunks
// of a command, enforcing the session state machine.
package session

import (
	"go.uber.org/zap"

	"signer-core/pkg/logger"
	"signer-core/pkg/monitor"
	"signer-core/pkg/signer"
	"signer-core/pkg/txparser"
)

// KeyService is the key derivation and signing capability the controller uses.
type KeyService interface {
	SignDigest(path []uint32, digest [32]byte) (signer.Signature, error)
	DerivePublicKey(path []uint32) ([64]byte, [32]byte, error)
}

type Options struct {
	Parser          txparser.Config
	BlindSigning    bool
	DetailedDisplay bool
	MaxMessageLen   int
	AppName         string
	Version         [3]byte
}

func DefaultOptions() Options {
	return Options{
		Parser:        txparser.DefaultConfig(),
		MaxMessageLen: 4096,
		AppName:       "Conflux",
		Version:       [3]byte{1, 2, 0},
	}
}

// Controller owns a Context and serves one command at a time. It is not
// safe for concurrent use; the transport serializes commands.
type Controller struct {
	ctx      *Context
	keys     KeyService
	approver Approver
	opts     Options
	log      *zap.Logger
}

func NewController(keys KeyService, approver Approver, opts Options) *Controller {
	return &Controller{
		ctx:      NewContext(opts.Parser),
		keys:     keys,
		approver: approver,
		opts:     opts,
		log:      logger.Named("session"),
	}
}

// Context exposes the session state for inspection.
func (c *Controller) Context() *Context { return c.ctx }

func (c *Controller) Options() Options { return c.opts }

// SetBlindSigning toggles the blind signing setting.
func (c *Controller) SetBlindSigning(on bool) { c.opts.BlindSigning = on }

func (c *Controller) metrics() *monitor.SignerMetrics { return monitor.Signer }
