// Package txparser assembles a Transaction from RLP wire bytes delivered in
// chunks, hashing the consumed bytes as it goes.
package txparser

import (
	"errors"
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/rlp"

	"signer-core/pkg/crypto_util"
	"signer-core/pkg/rlpstream"
)

var (
	ErrUninitialized = errors.New("txparser: parser not initialized")
	ErrUnknownType   = errors.New("txparser: unknown transaction type")
	ErrTypedDisabled = errors.New("txparser: typed transactions disabled")
	ErrNotList       = errors.New("txparser: transaction is not a list")
	ErrWrongKind     = errors.New("txparser: unexpected item kind")
	ErrElemTooLarge  = errors.New("txparser: element is larger than containing list")
	ErrTooFewFields  = errors.New("txparser: too few fields")
	ErrTooManyFields = errors.New("txparser: too many fields")
	ErrTrailingBytes = errors.New("txparser: trailing bytes after transaction")
	ErrAddressLen    = errors.New("txparser: address must be 20 bytes")
	ErrSelectorLen   = errors.New("txparser: data shorter than selector")
	ErrCallData      = errors.New("txparser: call data not allowed")
	ErrBadAccessList = errors.New("txparser: malformed access list")
)

// typedPrefix precedes the version byte of typed transactions.
var typedPrefix = [3]byte{'c', 'f', 'x'}

// Status is the outcome of a Feed call.
type Status uint8

const (
	NeedMore Status = iota
	Done
	Fault
)

func (s Status) String() string {
	switch s {
	case NeedMore:
		return "NeedMore"
	case Done:
		return "Done"
	case Fault:
		return "Fault"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Stage is the coarse state of the assembler.
type Stage uint8

const (
	StageUninitialized Stage = iota
	// StageAwaiting waits for Progress.Field. Before field 0 this includes
	// the optional typed prefix and the envelope list header.
	StageAwaiting
	StageComplete
	StageFault
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "Uninitialized"
	case StageAwaiting:
		return "Awaiting"
	case StageComplete:
		return "Complete"
	case StageFault:
		return "Fault"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// FieldNone is Progress.Field before Init.
const FieldNone = -1

// Progress is the resumable decoding state, kept as a plain value.
type Progress struct {
	Stage   Stage
	Field   int
	Version Version

	Prefix    [4]byte
	PrefixLen int

	Envelope rlpstream.State
	Item     rlpstream.State

	// ListRemaining counts envelope payload bytes not yet consumed.
	ListRemaining uint64
}

// Config holds the assembler limits and protocol switches.
type Config struct {
	// AllowCallData accepts data bytes beyond the 4 byte selector.
	AllowCallData bool
	// AllowTyped accepts "cfx"-prefixed typed transactions.
	AllowTyped       bool
	MaxCallDataLen   int
	MaxAccessListLen int
	// MaxTxLen bounds the whole transaction, prefix included.
	MaxTxLen int
}

func DefaultConfig() Config {
	return Config{
		AllowCallData:    true,
		AllowTyped:       true,
		MaxCallDataLen:   4096,
		MaxAccessListLen: 2048,
		MaxTxLen:         65535,
	}
}

// Parser is the Transaction Field Assembler. It is not safe for concurrent use.
type Parser struct {
	cfg  Config
	prog Progress

	tx       Transaction
	field    []byte // bytes of the field being decoded
	hasher   hash.Hash
	consumed int
	digest   [32]byte
	err      error
}

func New(cfg Config) *Parser {
	p := &Parser{cfg: cfg, hasher: crypto_util.NewKeccak256()}
	p.prog.Field = FieldNone
	return p
}

// Init prepares the parser for a new transaction and moves it to field 0.
func (p *Parser) Init() {
	p.prog = Progress{Stage: StageAwaiting, Field: 0}
	p.tx = Transaction{}
	p.field = p.field[:0]
	p.hasher.Reset()
	p.consumed = 0
	p.digest = [32]byte{}
	p.err = nil
}

func (p *Parser) Progress() Progress { return p.prog }
func (p *Parser) Err() error         { return p.err }
func (p *Parser) Consumed() int      { return p.consumed }

// Initialized reports whether Init has run since construction.
func (p *Parser) Initialized() bool { return p.prog.Field != FieldNone }

// Transaction returns the assembled record. Only complete after Done.
func (p *Parser) Transaction() *Transaction { return &p.tx }

// Digest is the Keccak-256 of every consumed wire byte. Valid after Done.
func (p *Parser) Digest() [32]byte { return p.digest }

// Schema returns the ordered fields of the transaction being parsed.
func (p *Parser) Schema() []FieldID { return Schema(p.prog.Version) }

// Feed consumes chunk. Fault is terminal until the next Init.
func (p *Parser) Feed(chunk []byte) Status {
	switch p.prog.Stage {
	case StageUninitialized:
		return p.fail(ErrUninitialized)
	case StageFault:
		return Fault
	case StageComplete:
		if len(chunk) > 0 {
			return p.fail(ErrTrailingBytes)
		}
		return Done
	}

	for len(chunk) > 0 {
		n, err := p.step(chunk)
		p.hasher.Write(chunk[:n])
		p.consumed += n
		if err != nil {
			return p.fail(err)
		}
		chunk = chunk[n:]
		if p.prog.Stage == StageComplete {
			if len(chunk) > 0 {
				return p.fail(ErrTrailingBytes)
			}
			p.digest = crypto_util.SumKeccak256(p.hasher)
			return Done
		}
	}
	return NeedMore
}

func (p *Parser) fail(err error) Status {
	p.prog.Stage = StageFault
	p.err = err
	return Fault
}

// step advances one sub-stage and returns the bytes it consumed.
func (p *Parser) step(in []byte) (int, error) {
	pr := &p.prog
	if pr.Envelope.Phase == rlpstream.PhaseHeader {
		if pr.PrefixLen == 0 && pr.Envelope.PendingLen == 0 && in[0] == typedPrefix[0] {
			if !p.cfg.AllowTyped {
				return 0, ErrTypedDisabled
			}
			return p.readPrefix(in)
		}
		if pr.PrefixLen > 0 && pr.PrefixLen < len(pr.Prefix) {
			return p.readPrefix(in)
		}
		return p.readEnvelope(in)
	}
	return p.readField(in)
}

func (p *Parser) readPrefix(in []byte) (int, error) {
	pr := &p.prog
	n := 0
	for n < len(in) && pr.PrefixLen < len(pr.Prefix) {
		b := in[n]
		if pr.PrefixLen < len(typedPrefix) {
			if b != typedPrefix[pr.PrefixLen] {
				return n, ErrUnknownType
			}
		} else {
			v, ok := versionByPrefix(b)
			if !ok {
				return n, fmt.Errorf("%w: 0x%02x", ErrUnknownType, b)
			}
			pr.Version = v
		}
		pr.Prefix[pr.PrefixLen] = b
		pr.PrefixLen++
		n++
	}
	return n, nil
}

func (p *Parser) readEnvelope(in []byte) (int, error) {
	pr := &p.prog
	limit := uint64(0)
	if room := p.cfg.MaxTxLen - pr.PrefixLen; room > 0 {
		limit = uint64(room)
	}
	st, n, err := rlpstream.ReadHeader(pr.Envelope, in, limit)
	pr.Envelope = st
	if err != nil {
		return n, err
	}
	if st.Phase == rlpstream.PhaseHeader {
		return n, nil
	}
	if st.Kind != rlpstream.List {
		return n, ErrNotList
	}
	if st.EncodedLen()+uint64(pr.PrefixLen) > uint64(p.cfg.MaxTxLen) {
		return n, rlpstream.ErrTooLarge
	}
	pr.ListRemaining = st.Size
	if st.Size == 0 {
		return n, ErrTooFewFields
	}
	return n, nil
}

func (p *Parser) readField(in []byte) (int, error) {
	pr := &p.prog
	schema := p.Schema()
	id := schema[pr.Field]

	st, prog, err := rlpstream.Step(pr.Item, in, p.cfg.limit(id))
	pr.Item = st
	if err != nil {
		return prog.N, fmt.Errorf("%s: %w", id, err)
	}
	if uint64(prog.N) > pr.ListRemaining {
		return prog.N, fmt.Errorf("%s: %w", id, ErrElemTooLarge)
	}
	pr.ListRemaining -= uint64(prog.N)

	if prog.HeaderDone {
		if st.Remaining() > pr.ListRemaining {
			return prog.N, fmt.Errorf("%s: %w", id, ErrElemTooLarge)
		}
		if (st.Kind == rlpstream.List) != id.expectList() {
			return prog.N, fmt.Errorf("%s: %w %v", id, ErrWrongKind, st.Kind)
		}
	}
	if id.expectList() {
		// access list is kept raw and decoded once complete
		p.field = append(p.field, in[:prog.N]...)
	} else {
		p.field = append(p.field, prog.Body...)
	}
	if !st.Done() {
		return prog.N, nil
	}

	if err := p.assign(id, p.field); err != nil {
		return prog.N, err
	}
	p.field = p.field[:0]
	pr.Item = rlpstream.State{}
	pr.Field++

	switch {
	case pr.Field == len(schema) && pr.ListRemaining > 0:
		return prog.N, ErrTooManyFields
	case pr.Field == len(schema):
		pr.Stage = StageComplete
	case pr.ListRemaining == 0:
		return prog.N, fmt.Errorf("%w: got %d of %d", ErrTooFewFields, pr.Field, len(schema))
	}
	return prog.N, nil
}

// assign copies a completed field into the record.
func (p *Parser) assign(id FieldID, b []byte) error {
	tx := &p.tx
	tx.Version = p.prog.Version
	own := func() []byte { return append([]byte(nil), b...) }

	switch id {
	case FieldNonce:
		tx.Nonce = own()
	case FieldGasPrice:
		tx.GasPrice = own()
	case FieldMaxPriorityFeePerGas:
		tx.MaxPriorityFeePerGas = own()
	case FieldMaxFeePerGas:
		tx.MaxFeePerGas = own()
	case FieldGas:
		tx.Gas = own()
	case FieldTo:
		if len(b) != AddressLen {
			return fmt.Errorf("%w: got %d", ErrAddressLen, len(b))
		}
		copy(tx.To[:], b)
	case FieldValue:
		tx.Value = own()
	case FieldStorageLimit:
		tx.StorageLimit = own()
	case FieldEpochHeight:
		tx.EpochHeight = own()
	case FieldChainID:
		tx.ChainID = own()
	case FieldData:
		if len(b) == 0 {
			return nil
		}
		if len(b) < SelectorLen {
			return fmt.Errorf("%w: got %d", ErrSelectorLen, len(b))
		}
		if len(b) > SelectorLen && !p.cfg.AllowCallData {
			return ErrCallData
		}
		tx.Selector = append([]byte(nil), b[:SelectorLen]...)
		if len(b) > SelectorLen {
			tx.CallData = append([]byte(nil), b[SelectorLen:]...)
		}
	case FieldAccessList:
		var list []AccessTuple
		if err := rlp.DecodeBytes(b, &list); err != nil {
			return fmt.Errorf("%w: %v", ErrBadAccessList, err)
		}
		tx.AccessList = list
	}
	return nil
}
