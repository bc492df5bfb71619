package errno

import "errors"

// Errno is the status word returned to the transport
type Errno struct {
	Code    uint16
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Bytes returns the status word in wire order.
func (e Errno) Bytes() []byte {
	return []byte{byte(e.Code >> 8), byte(e.Code)}
}

// Decode tries to convert an error to a status word.
// Wrapped Errno values are found through errors.As.
func Decode(err error) (uint16, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var e Errno
	if errors.As(err, &e) {
		return e.Code, e.Message
	}
	var pe *Errno
	if errors.As(err, &pe) && pe != nil {
		return pe.Code, pe.Message
	}
	return InternalError.Code, err.Error()
}

// Lookup maps a numeric status word back to its Errno.
func Lookup(code uint16) Errno {
	for _, e := range all {
		if e.Code == code {
			return e
		}
	}
	return Errno{Code: code, Message: "Unknown status"}
}

// Common status words
var (
	OK                  = Errno{Code: 0x9000, Message: "Success"}
	Deny                = Errno{Code: 0x6985, Message: "Rejected by user"}
	WrongP1P2           = Errno{Code: 0x6A86, Message: "Incorrect P1 or P2"}
	InsNotSupported     = Errno{Code: 0x6D00, Message: "Instruction not supported"}
	ClaNotSupported     = Errno{Code: 0x6E00, Message: "Class not supported"}
	WrongApduLength     = Errno{Code: 0x6E03, Message: "Wrong APDU length"}
	InvalidData         = Errno{Code: 0x6A80, Message: "Invalid data"}
	WrongDataLength     = Errno{Code: 0x6A87, Message: "Wrong data length"}
	InternalError       = Errno{Code: 0x6F01, Message: "Internal error"}
	WrongResponseLength = Errno{Code: 0xB000, Message: "Wrong response length"}
)

// Signing application status words (0xB0xx)
var (
	TxDisplayFail      = Errno{Code: 0xB001, Message: "Transaction display failed"}
	AddrDisplayFail    = Errno{Code: 0xB002, Message: "Address display failed"}
	AmountDisplayFail  = Errno{Code: 0xB003, Message: "Amount display failed"}
	TxWrongLength      = Errno{Code: 0xB004, Message: "Transaction too long"}
	TxParsingFail      = Errno{Code: 0xB005, Message: "Transaction parsing failed"}
	TxHashFail         = Errno{Code: 0xB006, Message: "Transaction hash failed"}
	BadState           = Errno{Code: 0xB007, Message: "Bad state"}
	TxSignFail         = Errno{Code: 0xB008, Message: "Signing failed"}
	KeyDeriveFail      = Errno{Code: 0xB009, Message: "Key derivation failed"}
	VersionParsingFail = Errno{Code: 0xB00A, Message: "Version parsing failed"}
)

var all = []Errno{
	OK, Deny, WrongP1P2, InsNotSupported, ClaNotSupported, WrongApduLength,
	InvalidData, WrongDataLength, InternalError, WrongResponseLength,
	TxDisplayFail, AddrDisplayFail, AmountDisplayFail, TxWrongLength, TxParsingFail,
	TxHashFail, BadState, TxSignFail, KeyDeriveFail, VersionParsingFail,
}
