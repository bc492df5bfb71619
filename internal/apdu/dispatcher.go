package apdu

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"signer-core/internal/session"
	"signer-core/pkg/errno"
	"signer-core/pkg/logger"
	"signer-core/pkg/monitor"
)

// Dispatcher serializes commands into a single session controller.
type Dispatcher struct {
	mu   sync.Mutex
	ctrl *session.Controller
	log  *zap.Logger
}

func NewDispatcher(ctrl *session.Controller) *Dispatcher {
	return &Dispatcher{ctrl: ctrl, log: logger.Named("apdu")}
}

// Exchange handles one raw command and returns payload||SW.
func (d *Dispatcher) Exchange(raw []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, err := Parse(raw)
	ins := "invalid"
	var payload []byte
	if err == nil {
		ins = cmd.INS.String()
		payload, err = d.handle(cmd)
	}

	sw, msg := errno.Decode(err)
	if err != nil {
		payload = nil
		d.log.Debug("command failed", zap.String("ins", ins), zap.String("sw", fmt.Sprintf("%04X", sw)), zap.String("reason", msg))
	}
	monitor.Signer.Apdu(ins, fmt.Sprintf("%04X", sw))
	return Reply(payload, sw)
}

func (d *Dispatcher) handle(cmd Command) ([]byte, error) {
	if cmd.CLA != CLA {
		return nil, errno.ClaNotSupported
	}

	switch cmd.INS {
	case InsGetVersion:
		if cmd.P1 != 0 || cmd.P2 != 0 {
			return nil, errno.WrongP1P2
		}
		return d.ctrl.Version(), nil

	case InsGetPubkey:
		if cmd.P1 > P1Display || cmd.P2 > P2ChainCode {
			return nil, errno.WrongP1P2
		}
		return d.ctrl.GetPublicKey(cmd.Data, cmd.P1 == P1Display, cmd.P2 == P2ChainCode)

	case InsSignTx:
		if (cmd.P1 != P1First && cmd.P1 != P1Continuation) || cmd.P2 != 0 {
			return nil, errno.WrongP1P2
		}
		return d.ctrl.SignTx(cmd.Data, cmd.P1 == P1First)

	case InsPersonalSign:
		if (cmd.P1 != P1First && cmd.P1 != P1Continuation) || (cmd.P2 != P2Last && cmd.P2 != P2More) {
			return nil, errno.WrongP1P2
		}
		return d.ctrl.PersonalSign(cmd.Data, cmd.P1 == P1First, cmd.P2 == P2More)

	case InsGetAppName:
		if cmd.P1 != 0 || cmd.P2 != 0 {
			return nil, errno.WrongP1P2
		}
		return d.ctrl.AppName(), nil

	default:
		return nil, errno.InsNotSupported
	}
}
