package txparser

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Version identifies the wire format of a transaction.
type Version uint8

const (
	Legacy     Version = iota
	AccessList         // "cfx" 0x01
	DynamicFee         // "cfx" 0x02
)

func (v Version) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case AccessList:
		return "access-list"
	case DynamicFee:
		return "dynamic-fee"
	default:
		return fmt.Sprintf("unknown(%d)", v)
	}
}

// SelectorLen is the length of the function selector at the head of call data.
const SelectorLen = 4

// AddressLen is the length of a raw account address.
const AddressLen = common.AddressLength

// StorageCollateralPerByte is the Drip charged per byte of storage limit (10^18 / 1024).
var StorageCollateralPerByte = new(big.Int).Div(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), big.NewInt(1024))

// AccessTuple is one entry of a typed transaction's access list.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// Transaction is the record assembled from the wire fields. Integer fields
// keep their big-endian byte form as received.
type Transaction struct {
	Version Version

	Nonce                []byte
	GasPrice             []byte // legacy and access-list only
	MaxPriorityFeePerGas []byte // dynamic-fee only
	MaxFeePerGas         []byte // dynamic-fee only
	Gas                  []byte
	To                   common.Address
	Value                []byte
	StorageLimit         []byte
	EpochHeight          []byte
	ChainID              []byte

	// Selector is empty or exactly SelectorLen bytes; CallData follows it.
	Selector   []byte
	CallData   []byte
	AccessList []AccessTuple
}

func toBig(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

func (tx *Transaction) NonceBig() *big.Int { return toBig(tx.Nonce) }
func (tx *Transaction) ValueBig() *big.Int { return toBig(tx.Value) }
func (tx *Transaction) GasBig() *big.Int   { return toBig(tx.Gas) }

// ChainIDUint64 returns the chain id, saturating at the maximum uint64.
func (tx *Transaction) ChainIDUint64() uint64 {
	id := toBig(tx.ChainID)
	if !id.IsUint64() {
		return ^uint64(0)
	}
	return id.Uint64()
}

// FeePerGas is the gas price, or the fee cap for dynamic-fee transactions.
func (tx *Transaction) FeePerGas() *big.Int {
	if tx.Version == DynamicFee {
		return toBig(tx.MaxFeePerGas)
	}
	return toBig(tx.GasPrice)
}

// MaxGasFee is the most Drip the transaction can spend on gas.
func (tx *Transaction) MaxGasFee() *big.Int {
	return new(big.Int).Mul(tx.FeePerGas(), tx.GasBig())
}

// MaxStorageFee is the storage collateral for the declared storage limit.
func (tx *Transaction) MaxStorageFee() *big.Int {
	return new(big.Int).Mul(toBig(tx.StorageLimit), StorageCollateralPerByte)
}

// HasData reports whether the transaction calls into a contract.
func (tx *Transaction) HasData() bool {
	return len(tx.Selector) > 0
}

// Data returns selector and call data joined.
func (tx *Transaction) Data() []byte {
	out := make([]byte, 0, len(tx.Selector)+len(tx.CallData))
	out = append(out, tx.Selector...)
	return append(out, tx.CallData...)
}

// FullyDecoded reports whether every field can be shown to the user.
// Contract calls need blind signing.
func (tx *Transaction) FullyDecoded() bool {
	return !tx.HasData()
}
