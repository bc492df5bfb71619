package session

import (
	"go.uber.org/zap"

	"signer-core/pkg/bip32"
	"signer-core/pkg/buffer"
	"signer-core/pkg/errno"
	"signer-core/pkg/txparser"
)

// SignTx feeds one chunk of a transaction. The first chunk starts with the
// derivation path: one count byte then big-endian uint32 entries. A nil
// payload with nil error asks for more data; on completion the response is
// [v][r][s].
func (c *Controller) SignTx(chunk []byte, first bool) ([]byte, error) {
	ctx := c.ctx
	rest := chunk

	if first {
		if len(chunk) == 0 {
			return nil, errno.WrongDataLength
		}
		if ctx.Mode != ModeIdle {
			c.log.Info("discarding unfinished session", zap.Stringer("mode", ctx.Mode))
			ctx.Reset()
		}
		ctx.Mode = ModeSigningTx

		r := buffer.NewReader(chunk)
		path, err := r.ReadPathPrefix()
		if err != nil {
			ctx.Reset()
			return nil, errno.WrongDataLength
		}
		ctx.Path = path
		ctx.Parser.Init()
		rest, _ = r.ReadFixed(r.Remaining())
	} else if ctx.Mode != ModeSigningTx {
		return nil, errno.BadState
	}

	if !ctx.Parser.Initialized() {
		return nil, errno.BadState
	}

	switch status := ctx.Parser.Feed(rest); status {
	case txparser.NeedMore:
		c.metrics().Chunk("need_more")
		return nil, nil
	case txparser.Done:
		c.metrics().Chunk("done")
		c.metrics().TxSize(ctx.Parser.Consumed())
		return c.finishTx()
	case txparser.Fault:
		c.metrics().Chunk("fault")
		c.log.Warn("transaction parsing failed",
			zap.Error(ctx.Parser.Err()),
			zap.Int("consumed", ctx.Parser.Consumed()))
		ctx.Reset()
		return nil, errno.TxParsingFail
	default:
		c.log.Error("unexpected parser status", zap.Stringer("status", status))
		ctx.Reset()
		return nil, errno.InvalidData
	}
}

func (c *Controller) finishTx() ([]byte, error) {
	ctx := c.ctx
	defer ctx.Reset()

	tx := ctx.Parser.Transaction()
	ctx.Digest = ctx.Parser.Digest()

	c.log.Debug("transaction parsed",
		zap.String("path", bip32.FormatPath(ctx.Path)),
		zap.Stringer("version", tx.Version),
		zap.Binary("digest", ctx.Digest[:]))

	review := Review{Path: ctx.Path, Digest: ctx.Digest, Tx: tx, Blind: !tx.FullyDecoded()}
	if review.Blind && !c.opts.BlindSigning {
		c.log.Info("blind signing disabled, rejecting contract call")
		c.metrics().Approval("tx", false)
		return nil, errno.Deny
	}

	approved, err := c.approver.ApproveTransaction(review)
	if err != nil {
		c.log.Error("transaction review failed", zap.Error(err))
		return nil, errno.TxDisplayFail
	}
	c.metrics().Approval("tx", approved)
	if !approved {
		return nil, errno.Deny
	}

	return c.sign("tx")
}

// sign signs ctx.Digest with the key at ctx.Path and encodes [v][r][s].
func (c *Controller) sign(kind string) ([]byte, error) {
	ctx := c.ctx
	sig, err := c.keys.SignDigest(ctx.Path, ctx.Digest)
	if err != nil {
		c.log.Error("signing failed", zap.String("kind", kind), zap.Error(err))
		return nil, errno.TxSignFail
	}
	ctx.Signature = sig

	vrs, err := sig.VRS()
	if err != nil {
		c.log.Error("signature encoding failed", zap.Error(err))
		return nil, errno.TxSignFail
	}
	c.metrics().Signature(kind)
	return vrs, nil
}
