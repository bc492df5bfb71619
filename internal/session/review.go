package session

import "signer-core/pkg/txparser"

// Review is what the user confirms before a transaction is signed.
type Review struct {
	Path   []uint32
	Digest [32]byte
	Tx     *txparser.Transaction
	// Blind is set when the transaction carries data that cannot be shown.
	Blind bool
}

type MessageReview struct {
	Path   []uint32
	Digest [32]byte
	// Message is a copy owned by the approver; the session buffer is wiped
	// once signing ends.
	Message []byte
}

type AddressReview struct {
	Path      []uint32
	PublicKey [64]byte
}

// Approver is the user approval collaborator. A false result without error
// is a rejection.
type Approver interface {
	ApproveTransaction(Review) (bool, error)
	ApproveMessage(MessageReview) (bool, error)
	ApproveAddress(AddressReview) (bool, error)
}
