package session

import (
	"go.uber.org/zap"

	"signer-core/pkg/buffer"
	"signer-core/pkg/errno"
)

// Version flag bits.
const (
	FlagBlindSigning    = 0x01
	FlagDetailedDisplay = 0x02
	FlagAlwaysSet       = 0x04
)

// GetPublicKey returns [65][0x04][X||Y], followed by [32][chain code] when
// chainCode is set. With display the address is confirmed by the user first.
// It does not touch an in-progress signing session.
func (c *Controller) GetPublicKey(data []byte, display, chainCode bool) ([]byte, error) {
	r := buffer.NewReader(data)
	path, err := r.ReadPathPrefix()
	if err != nil || r.Remaining() != 0 {
		return nil, errno.WrongDataLength
	}

	raw, cc, err := c.keys.DerivePublicKey(path)
	if err != nil {
		c.log.Warn("public key derivation failed", zap.Error(err))
		return nil, errno.KeyDeriveFail
	}

	if display {
		approved, err := c.approver.ApproveAddress(AddressReview{Path: path, PublicKey: raw})
		if err != nil {
			c.log.Error("address review failed", zap.Error(err))
			return nil, errno.AddrDisplayFail
		}
		c.metrics().Approval("address", approved)
		if !approved {
			return nil, errno.Deny
		}
	}

	out := make([]byte, 0, 2+64+33)
	out = append(out, 65, 0x04)
	out = append(out, raw[:]...)
	if chainCode {
		out = append(out, 32)
		out = append(out, cc[:]...)
	}
	return out, nil
}

// Version returns [flags][major][minor][patch].
func (c *Controller) Version() []byte {
	flags := byte(FlagAlwaysSet)
	if c.opts.BlindSigning {
		flags |= FlagBlindSigning
	}
	if c.opts.DetailedDisplay {
		flags |= FlagDetailedDisplay
	}
	return []byte{flags, c.opts.Version[0], c.opts.Version[1], c.opts.Version[2]}
}

// AppName returns the application name as ASCII.
func (c *Controller) AppName() []byte {
	return []byte(c.opts.AppName)
}
