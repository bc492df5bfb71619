package signer

import (
	"fmt"

	"signer-core/pkg/bip39"
	"signer-core/pkg/keystore"
)

// SeedSource provides the master seed. Each call returns a fresh copy that
// the caller wipes after use.
type SeedSource interface {
	Seed() ([]byte, error)
}

// MnemonicSeed derives the seed from a BIP-39 mnemonic held in memory.
type MnemonicSeed struct {
	Mnemonic   string
	Passphrase string
}

func (m MnemonicSeed) Seed() ([]byte, error) {
	return bip39.NewMnemonicService().SeedFromMnemonic(m.Mnemonic, m.Passphrase)
}

// KeystoreSeed decrypts the mnemonic from a keystore file on every call,
// so nothing secret stays resident between signatures.
type KeystoreSeed struct {
	Path       string
	Password   string
	Passphrase string
}

func (k KeystoreSeed) Seed() ([]byte, error) {
	keyJSON, err := keystore.LoadFromFile(k.Path)
	if err != nil {
		return nil, fmt.Errorf("load keystore: %w", err)
	}
	mnemonic, err := keystore.DecryptMnemonic(keyJSON, k.Password)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return bip39.NewMnemonicService().SeedFromMnemonic(mnemonic, k.Passphrase)
}

// SeedFunc adapts a function to SeedSource.
type SeedFunc func() ([]byte, error)

func (f SeedFunc) Seed() ([]byte, error) { return f() }
