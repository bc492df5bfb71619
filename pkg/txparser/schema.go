package txparser

import "fmt"

// FieldID names a slot of the Transaction record.
type FieldID uint8

const (
	FieldNonce FieldID = iota
	FieldGasPrice
	FieldMaxPriorityFeePerGas
	FieldMaxFeePerGas
	FieldGas
	FieldTo
	FieldValue
	FieldStorageLimit
	FieldEpochHeight
	FieldChainID
	FieldData
	FieldAccessList
)

var fieldNames = [...]string{
	FieldNonce:                "nonce",
	FieldGasPrice:             "gasPrice",
	FieldMaxPriorityFeePerGas: "maxPriorityFeePerGas",
	FieldMaxFeePerGas:         "maxFeePerGas",
	FieldGas:                  "gas",
	FieldTo:                   "to",
	FieldValue:                "value",
	FieldStorageLimit:         "storageLimit",
	FieldEpochHeight:          "epochHeight",
	FieldChainID:              "chainId",
	FieldData:                 "data",
	FieldAccessList:           "accessList",
}

func (f FieldID) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", f)
}

// MaxIntLen bounds integer fields to 256 bits.
const MaxIntLen = 32

var (
	legacySchema = []FieldID{
		FieldNonce, FieldGasPrice, FieldGas, FieldTo, FieldValue,
		FieldStorageLimit, FieldEpochHeight, FieldChainID, FieldData,
	}
	accessListSchema = append(append([]FieldID{}, legacySchema...), FieldAccessList)
	dynamicFeeSchema = []FieldID{
		FieldNonce, FieldMaxPriorityFeePerGas, FieldMaxFeePerGas, FieldGas, FieldTo, FieldValue,
		FieldStorageLimit, FieldEpochHeight, FieldChainID, FieldData, FieldAccessList,
	}
)

// Schema returns the ordered fields of a transaction version.
func Schema(v Version) []FieldID {
	switch v {
	case AccessList:
		return accessListSchema
	case DynamicFee:
		return dynamicFeeSchema
	default:
		return legacySchema
	}
}

// expectList reports whether a field is encoded as an RLP list.
func (f FieldID) expectList() bool {
	return f == FieldAccessList
}

// limit is the largest payload accepted for field f.
func (c Config) limit(f FieldID) uint64 {
	switch f {
	case FieldTo:
		return AddressLen
	case FieldData:
		return uint64(SelectorLen + c.MaxCallDataLen)
	case FieldAccessList:
		return uint64(c.MaxAccessListLen)
	default:
		return MaxIntLen
	}
}

// versionByPrefix maps the last typed prefix byte to a Version.
func versionByPrefix(b byte) (Version, bool) {
	switch b {
	case 0x01:
		return AccessList, true
	case 0x02:
		return DynamicFee, true
	}
	return Legacy, false
}
