package txparser

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signer-core/pkg/rlpstream"
)

type legacyTx struct {
	Nonce        []byte
	GasPrice     []byte
	Gas          []byte
	To           []byte
	Value        []byte
	StorageLimit []byte
	EpochHeight  []byte
	ChainID      []byte
	Data         []byte
}

type accessListTx struct {
	Nonce        []byte
	GasPrice     []byte
	Gas          []byte
	To           []byte
	Value        []byte
	StorageLimit []byte
	EpochHeight  []byte
	ChainID      []byte
	Data         []byte
	AccessList   []AccessTuple
}

type dynamicFeeTx struct {
	Nonce                []byte
	MaxPriorityFeePerGas []byte
	MaxFeePerGas         []byte
	Gas                  []byte
	To                   []byte
	Value                []byte
	StorageLimit         []byte
	EpochHeight          []byte
	ChainID              []byte
	Data                 []byte
	AccessList           []AccessTuple
}

var (
	zero      = []byte{0x00}
	selector  = []byte{0xa9, 0x05, 0x9c, 0xbb}
	recipient = common.HexToAddress("0x1123456789012345678901234567890123456789")
)

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := rlp.EncodeToBytes(v)
	require.NoError(t, err)
	return b
}

// minimalTx is a transfer with every integer a single zero byte, a zero
// destination and a bare selector.
func minimalTx(t *testing.T) []byte {
	return encode(t, legacyTx{
		Nonce: zero, GasPrice: zero, Gas: zero, To: make([]byte, 20),
		Value: zero, StorageLimit: zero, EpochHeight: zero, ChainID: zero,
		Data: selector,
	})
}

func transferTx(t *testing.T) []byte {
	return encode(t, legacyTx{
		Nonce:        []byte{0x07},
		GasPrice:     big.NewInt(1_000_000_000).Bytes(),
		Gas:          big.NewInt(21000).Bytes(),
		To:           recipient.Bytes(),
		Value:        new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil).Bytes(),
		StorageLimit: big.NewInt(0).Bytes(),
		EpochHeight:  big.NewInt(123456).Bytes(),
		ChainID:      big.NewInt(1029).Bytes(),
	})
}

func typedTx(t *testing.T, v Version) []byte {
	list := []AccessTuple{{
		Address:     recipient,
		StorageKeys: []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
	}}
	var body []byte
	switch v {
	case AccessList:
		body = encode(t, accessListTx{
			Nonce: []byte{0x01}, GasPrice: []byte{0x02}, Gas: []byte{0x52, 0x08},
			To: recipient.Bytes(), Value: []byte{0x10}, StorageLimit: []byte{0x40},
			EpochHeight: []byte{0x33}, ChainID: []byte{0x01}, Data: append(append([]byte{}, selector...), 0xde, 0xad),
			AccessList: list,
		})
	case DynamicFee:
		body = encode(t, dynamicFeeTx{
			Nonce: []byte{0x01}, MaxPriorityFeePerGas: []byte{0x03}, MaxFeePerGas: []byte{0x05},
			Gas: []byte{0x52, 0x08}, To: recipient.Bytes(), Value: []byte{0x10}, StorageLimit: []byte{0x40},
			EpochHeight: []byte{0x33}, ChainID: []byte{0x04, 0x05}, AccessList: list,
		})
	}
	return append([]byte{'c', 'f', 'x', byte(v)}, body...)
}

func feedAll(t *testing.T, p *Parser, chunks [][]byte) Status {
	t.Helper()
	status := NeedMore
	for i, c := range chunks {
		status = p.Feed(c)
		if status != NeedMore && i != len(chunks)-1 {
			t.Fatalf("chunk %d: status %v before last chunk (err %v)", i, status, p.Err())
		}
	}
	return status
}

func parse(t *testing.T, cfg Config, chunks ...[]byte) *Parser {
	t.Helper()
	p := New(cfg)
	p.Init()
	if status := feedAll(t, p, chunks); status != Done {
		t.Fatalf("status = %v, err = %v", status, p.Err())
	}
	return p
}

func TestMinimalTransaction(t *testing.T) {
	wire := minimalTx(t)
	p := parse(t, DefaultConfig(), wire)

	digest := p.Digest()
	assert.Equal(t, crypto.Keccak256(wire), digest[:])
	assert.Equal(t, len(wire), p.Consumed())

	tx := p.Transaction()
	assert.Equal(t, Legacy, tx.Version)
	assert.Equal(t, zero, tx.Nonce)
	assert.Equal(t, common.Address{}, tx.To)
	assert.Equal(t, selector, tx.Selector)
	assert.Empty(t, tx.CallData)
	assert.False(t, tx.FullyDecoded())
	assert.Equal(t, StageComplete, p.Progress().Stage)
}

func TestTransferFields(t *testing.T) {
	p := parse(t, DefaultConfig(), transferTx(t))
	tx := p.Transaction()

	assert.Equal(t, recipient, tx.To)
	assert.Equal(t, uint64(1029), tx.ChainIDUint64())
	assert.Equal(t, "1000000000000000000", tx.ValueBig().String())
	assert.Equal(t, "21000000000000", tx.MaxGasFee().String())
	assert.Equal(t, int64(0), tx.MaxStorageFee().Int64())
	assert.True(t, tx.FullyDecoded())
	assert.Nil(t, tx.Selector)
}

func TestChunkingInvariance(t *testing.T) {
	wires := map[string][]byte{
		"minimal":     minimalTx(t),
		"transfer":    transferTx(t),
		"access-list": typedTx(t, AccessList),
		"dynamic-fee": typedTx(t, DynamicFee),
	}
	for name, wire := range wires {
		t.Run(name, func(t *testing.T) {
			ref := parse(t, DefaultConfig(), wire)

			for i := 1; i < len(wire); i++ {
				p := parse(t, DefaultConfig(), wire[:i], wire[i:])
				if p.Digest() != ref.Digest() {
					t.Fatalf("split %d: digest mismatch", i)
				}
				assert.Equal(t, ref.Transaction(), p.Transaction(), "split %d", i)
			}

			for size := 1; size <= 7; size++ {
				var chunks [][]byte
				for off := 0; off < len(wire); off += size {
					end := off + size
					if end > len(wire) {
						end = len(wire)
					}
					chunks = append(chunks, wire[off:end])
				}
				p := parse(t, DefaultConfig(), chunks...)
				assert.Equal(t, ref.Digest(), p.Digest(), "chunk size %d", size)
				assert.Equal(t, ref.Transaction(), p.Transaction(), "chunk size %d", size)
			}
		})
	}
}

func TestTypedTransactions(t *testing.T) {
	wire := typedTx(t, AccessList)
	p := parse(t, DefaultConfig(), wire)
	tx := p.Transaction()
	digest := p.Digest()

	assert.Equal(t, AccessList, tx.Version)
	assert.Equal(t, crypto.Keccak256(wire), digest[:])
	assert.Equal(t, selector, tx.Selector)
	assert.Equal(t, []byte{0xde, 0xad}, tx.CallData)
	require.Len(t, tx.AccessList, 1)
	assert.Equal(t, recipient, tx.AccessList[0].Address)
	assert.Len(t, tx.AccessList[0].StorageKeys, 2)

	p = parse(t, DefaultConfig(), typedTx(t, DynamicFee))
	tx = p.Transaction()
	assert.Equal(t, DynamicFee, tx.Version)
	assert.Equal(t, []byte{0x03}, tx.MaxPriorityFeePerGas)
	assert.Equal(t, []byte{0x05}, tx.MaxFeePerGas)
	assert.Nil(t, tx.GasPrice)
	assert.Equal(t, uint64(0x0405), tx.ChainIDUint64())
	assert.Equal(t, big.NewInt(5*0x5208).String(), tx.MaxGasFee().String())
}

func TestProgressIsInspectable(t *testing.T) {
	p := New(DefaultConfig())
	assert.Equal(t, FieldNone, p.Progress().Field)
	assert.Equal(t, StageUninitialized, p.Progress().Stage)

	p.Init()
	assert.Equal(t, 0, p.Progress().Field)

	wire := transferTx(t)
	// envelope header, nonce, and the first byte of the gas price header
	envLen := 1
	if wire[0] > 0xf7 {
		envLen += int(wire[0] - 0xf7)
	}
	require.Equal(t, NeedMore, p.Feed(wire[:envLen+2]))

	pr := p.Progress()
	assert.Equal(t, StageAwaiting, pr.Stage)
	assert.Equal(t, 1, pr.Field)
	assert.Equal(t, rlpstream.PhaseBody, pr.Item.Phase)
	assert.Equal(t, uint64(0), pr.Item.Consumed)

	require.Equal(t, Done, p.Feed(wire[envLen+2:]))
}

func TestFaults(t *testing.T) {
	tooLong := encode(t, legacyTx{
		Nonce: bytes.Repeat([]byte{0x01}, 33), GasPrice: zero, Gas: zero, To: make([]byte, 20),
		Value: zero, StorageLimit: zero, EpochHeight: zero, ChainID: zero,
	})
	shortAddr := encode(t, legacyTx{
		Nonce: zero, GasPrice: zero, Gas: zero, To: make([]byte, 19),
		Value: zero, StorageLimit: zero, EpochHeight: zero, ChainID: zero,
	})
	shortSelector := encode(t, legacyTx{
		Nonce: zero, GasPrice: zero, Gas: zero, To: make([]byte, 20),
		Value: zero, StorageLimit: zero, EpochHeight: zero, ChainID: zero, Data: []byte{0xaa, 0xbb},
	})
	callData := encode(t, legacyTx{
		Nonce: zero, GasPrice: zero, Gas: zero, To: make([]byte, 20),
		Value: zero, StorageLimit: zero, EpochHeight: zero, ChainID: zero, Data: append(append([]byte{}, selector...), 0x01),
	})
	tooFew := encode(t, [][]byte{zero, zero, zero})
	tooMany := encode(t, [][]byte{zero, zero, zero, make([]byte, 20), zero, zero, zero, zero, selector, zero})
	listField := encode(t, []interface{}{[]interface{}{}, zero})

	// outer list declares 2 bytes but the first item claims 3
	elemTooLarge := []byte{0xc2, 0x83, 0x01, 0x02}

	noCallData := DefaultConfig()
	noCallData.AllowCallData = false
	noTyped := DefaultConfig()
	noTyped.AllowTyped = false

	tests := []struct {
		name string
		cfg  Config
		wire []byte
		err  error
	}{
		{"field over limit", DefaultConfig(), tooLong, rlpstream.ErrTooLarge},
		{"short address", DefaultConfig(), shortAddr, ErrAddressLen},
		{"short selector", DefaultConfig(), shortSelector, ErrSelectorLen},
		{"call data disabled", noCallData, callData, ErrCallData},
		{"too few fields", DefaultConfig(), tooFew, ErrTooFewFields},
		{"too many fields", DefaultConfig(), tooMany, ErrTooManyFields},
		{"list where string expected", DefaultConfig(), listField, ErrWrongKind},
		{"element larger than list", DefaultConfig(), elemTooLarge, ErrElemTooLarge},
		{"not a list", DefaultConfig(), []byte{0x83, 0x01, 0x02, 0x03}, ErrNotList},
		{"empty list", DefaultConfig(), []byte{0xc0}, ErrTooFewFields},
		{"unknown type", DefaultConfig(), []byte{'c', 'f', 'x', 0x03, 0xc0}, ErrUnknownType},
		{"bad prefix", DefaultConfig(), []byte{'c', 'f', 'y', 0x01}, ErrUnknownType},
		{"typed disabled", noTyped, typedTx(t, AccessList), ErrTypedDisabled},
		{"trailing bytes", DefaultConfig(), append(minimalTx(t), 0x00), ErrTrailingBytes},
		{"non canonical size", DefaultConfig(), []byte{0xf8, 0x05}, rlpstream.ErrCanonSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.cfg)
			p.Init()
			status := p.Feed(tc.wire)
			require.Equal(t, Fault, status)
			if !errors.Is(p.Err(), tc.err) {
				t.Fatalf("err = %v, want %v", p.Err(), tc.err)
			}
			assert.Equal(t, StageFault, p.Progress().Stage)

			// terminal until re-initialized
			assert.Equal(t, Fault, p.Feed(minimalTx(t)))
			p.Init()
			assert.Equal(t, Done, p.Feed(minimalTx(t)))
		})
	}
}

func TestFeedBeforeInit(t *testing.T) {
	p := New(DefaultConfig())
	assert.Equal(t, Fault, p.Feed([]byte{0xc0}))
	assert.ErrorIs(t, p.Err(), ErrUninitialized)
	assert.False(t, p.Initialized())
	assert.Equal(t, FieldNone, p.Progress().Field)

	// still not initialized after repeated feeds
	assert.Equal(t, Fault, p.Feed(minimalTx(t)))
	assert.False(t, p.Initialized())

	p.Init()
	assert.True(t, p.Initialized())
	assert.Equal(t, Done, p.Feed(minimalTx(t)))
}

func TestInitializedAfterFault(t *testing.T) {
	p := New(DefaultConfig())
	p.Init()
	// a string where the envelope list is expected
	assert.Equal(t, Fault, p.Feed([]byte{0x80}))
	assert.ErrorIs(t, p.Err(), ErrNotList)
	assert.True(t, p.Initialized())
}

func TestFeedAfterDone(t *testing.T) {
	p := parse(t, DefaultConfig(), minimalTx(t))
	assert.Equal(t, Done, p.Feed(nil))
	assert.Equal(t, Fault, p.Feed([]byte{0x01}))
	assert.ErrorIs(t, p.Err(), ErrTrailingBytes)
}

func TestMaxTxLen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTxLen = 16
	p := New(cfg)
	p.Init()
	assert.Equal(t, Fault, p.Feed(transferTx(t)))
	assert.ErrorIs(t, p.Err(), rlpstream.ErrTooLarge)
}
