// Package signer derives secp256k1 keys along BIP-32 paths and signs
// digests with them. Private keys never leave the package except through
// DerivePrivateKey, and are wiped before every public method returns.
package signer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg"

	"signer-core/pkg/bip32"
)

var ErrInvalidParameter = errors.New("signer: invalid parameter")

// compactRecoveryBase is the header byte offset of an uncompressed compact signature.
const compactRecoveryBase = 27

// Policy restricts the derivation paths the service accepts.
type Policy struct {
	MinPathDepth int
	MaxPathDepth int
}

func DefaultPolicy() Policy {
	return Policy{MinPathDepth: 1, MaxPathDepth: 10}
}

// Signature is a DER encoded signature with its recovery id.
type Signature struct {
	DER []byte
	V   byte
}

// RS splits the DER encoding into 32 byte r and s.
func (sig Signature) RS() (r, s [32]byte, err error) {
	return SplitDER(sig.DER)
}

// VRS returns the 65 byte [v][r][s] encoding.
func (sig Signature) VRS() ([]byte, error) {
	r, s, err := sig.RS()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 65)
	out = append(out, sig.V)
	out = append(out, r[:]...)
	return append(out, s[:]...), nil
}

// Service is the key derivation and signing capability.
type Service struct {
	seeds  SeedSource
	policy Policy
}

func NewService(seeds SeedSource, policy Policy) *Service {
	return &Service{seeds: seeds, policy: policy}
}

func (s *Service) Policy() Policy { return s.policy }

func (s *Service) checkPath(path []uint32) error {
	if len(path) < s.policy.MinPathDepth || len(path) > s.policy.MaxPathDepth {
		return fmt.Errorf("%w: path depth %d outside [%d, %d]",
			ErrInvalidParameter, len(path), s.policy.MinPathDepth, s.policy.MaxPathDepth)
	}
	return nil
}

// DerivePrivateKey walks path from the master seed. The caller owns the
// returned key and must Zero it.
func (s *Service) DerivePrivateKey(path []uint32) (*btcec.PrivateKey, [32]byte, error) {
	var chainCode [32]byte
	if err := s.checkPath(path); err != nil {
		return nil, chainCode, err
	}

	seed, err := s.seeds.Seed()
	if err != nil {
		return nil, chainCode, fmt.Errorf("%w: seed: %v", ErrInvalidParameter, err)
	}
	defer wipe(seed)

	wallet, err := bip32.NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, chainCode, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	defer wallet.Zero()

	key, err := wallet.Derive(path)
	if err != nil {
		return nil, chainCode, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	defer key.Zero()

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, chainCode, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return priv, key.ChainCode(), nil
}

// InitPublicKey returns the public key of priv and its raw 64 byte X||Y form.
func InitPublicKey(priv *btcec.PrivateKey) (*btcec.PublicKey, [64]byte, error) {
	var raw [64]byte
	if priv == nil || priv.Key.IsZero() {
		return nil, raw, fmt.Errorf("%w: empty private key", ErrInvalidParameter)
	}
	pub := priv.PubKey()
	copy(raw[:], pub.SerializeUncompressed()[1:])
	return pub, raw, nil
}

// DerivePublicKey returns the raw public key and chain code at path.
func (s *Service) DerivePublicKey(path []uint32) ([64]byte, [32]byte, error) {
	priv, chainCode, err := s.DerivePrivateKey(path)
	if err != nil {
		return [64]byte{}, [32]byte{}, err
	}
	defer priv.Zero()

	_, raw, err := InitPublicKey(priv)
	if err != nil {
		return [64]byte{}, [32]byte{}, err
	}
	return raw, chainCode, nil
}

// SignDigest signs a 32 byte digest with the key at path. Signatures are
// RFC 6979 deterministic with low S.
func (s *Service) SignDigest(path []uint32, digest [32]byte) (Signature, error) {
	priv, _, err := s.DerivePrivateKey(path)
	if err != nil {
		return Signature{}, err
	}
	defer priv.Zero()

	// [27 + recid][r][s]
	compact := ecdsa.SignCompact(priv, digest[:], false)
	if len(compact) != 65 || compact[0] < compactRecoveryBase {
		return Signature{}, fmt.Errorf("%w: unexpected compact signature", ErrInvalidParameter)
	}

	var r, sv btcec.ModNScalar
	if r.SetByteSlice(compact[1:33]) || sv.SetByteSlice(compact[33:65]) {
		return Signature{}, fmt.Errorf("%w: signature scalar overflow", ErrInvalidParameter)
	}
	der := ecdsa.NewSignature(&r, &sv).Serialize()

	sig := Signature{DER: der, V: compact[0] - compactRecoveryBase}

	// the key must be recoverable from what we hand out
	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil || !bytes.Equal(pub.SerializeUncompressed(), priv.PubKey().SerializeUncompressed()) {
		return Signature{}, fmt.Errorf("%w: recovery check failed", ErrInvalidParameter)
	}
	return sig, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
