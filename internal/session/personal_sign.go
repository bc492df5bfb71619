package session

import (
	"go.uber.org/zap"

	"signer-core/pkg/buffer"
	"signer-core/pkg/crypto_util"
	"signer-core/pkg/errno"
)

// PersonalSign accumulates a message across chunks and signs
// keccak256("\x19Conflux Signed Message:\n" + len + message) after the last
// one. The first chunk starts with the derivation path.
func (c *Controller) PersonalSign(chunk []byte, first, more bool) ([]byte, error) {
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
		r := buffer.NewReader(chunk)
		path, err := r.ReadPathPrefix()
		if err != nil {
			return nil, errno.WrongDataLength
		}
		ctx.Mode = ModeSigningMessage
		ctx.Path = path
		rest, _ = r.ReadFixed(r.Remaining())
	} else if ctx.Mode != ModeSigningMessage {
		return nil, errno.BadState
	}

	if len(ctx.Message)+len(rest) > c.opts.MaxMessageLen {
		ctx.Reset()
		return nil, errno.TxWrongLength
	}
	ctx.Message = append(ctx.Message, rest...)
	if more {
		return nil, nil
	}

	defer ctx.Reset()
	ctx.Digest = crypto_util.PersonalMessageHash(ctx.Message)

	approved, err := c.approver.ApproveMessage(MessageReview{
		Path:    ctx.Path,
		Digest:  ctx.Digest,
		Message: append([]byte(nil), ctx.Message...),
	})
	if err != nil {
		c.log.Error("message review failed", zap.Error(err))
		return nil, errno.TxDisplayFail
	}
	c.metrics().Approval("message", approved)
	if !approved {
		return nil, errno.Deny
	}
	return c.sign("message")
}
