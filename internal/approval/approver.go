package approval

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"signer-core/internal/session"
	"signer-core/pkg/config"
	"signer-core/pkg/logger"
)

// Approval modes
const (
	ModeTerminal = "terminal"
	ModeAuto     = "auto"
	ModeReject   = "reject"
)

// Policy answers every review the same way. Used for headless emulators and tests.
type Policy struct {
	Approve bool
}

func (s Policy) ApproveTransaction(r session.Review) (bool, error) {
	logger.Debug("auto review", zap.String("kind", "tx"), zap.Bool("approve", s.Approve), zap.Bool("blind", r.Blind))
	return s.Approve, nil
}

func (s Policy) ApproveMessage(session.MessageReview) (bool, error) {
	return s.Approve, nil
}

func (s Policy) ApproveAddress(session.AddressReview) (bool, error) {
	return s.Approve, nil
}

// Terminal prints each review to out and reads a y/n answer from in.
type Terminal struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	detailed  bool
	networkID uint32
}

func NewTerminal(in io.Reader, out io.Writer, detailed bool, networkID uint32) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, detailed: detailed, networkID: networkID}
}

func (t *Terminal) ApproveTransaction(r session.Review) (bool, error) {
	fields, err := TransactionFields(r, t.detailed)
	if err != nil {
		return false, err
	}
	title := "Review Transaction"
	if r.Blind {
		title += " (blind signing)"
	}
	return t.confirm(title, fields)
}

func (t *Terminal) ApproveMessage(r session.MessageReview) (bool, error) {
	return t.confirm("Sign Message", MessageFields(r))
}

func (t *Terminal) ApproveAddress(r session.AddressReview) (bool, error) {
	fields, err := AddressFields(r, t.networkID)
	if err != nil {
		return false, err
	}
	return t.confirm("Confirm Address", fields)
}

func (t *Terminal) confirm(title string, fields []Field) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	width := 0
	for _, f := range fields {
		width = max(width, len(f.Name))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n-------- %s --------\n", title)
	for _, f := range fields {
		fmt.Fprintf(&b, "%-*s : %s\n", width, f.Name, f.Value)
	}
	b.WriteString("Approve? [y/N] ")
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return false, err
	}

	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, fmt.Errorf("approval: read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// New builds the approver named by cfg.Mode.
func New(cfg config.ApprovalConfig, in io.Reader, out io.Writer) (session.Approver, error) {
	switch cfg.Mode {
	case ModeTerminal, "":
		return NewTerminal(in, out, cfg.DetailedDisplay, cfg.NetworkID), nil
	case ModeAuto:
		return Policy{Approve: true}, nil
	case ModeReject:
		return Policy{Approve: false}, nil
	default:
		return nil, fmt.Errorf("approval: unknown mode %q", cfg.Mode)
	}
}
