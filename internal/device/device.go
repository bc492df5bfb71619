// Package device assembles an in-process signer from configuration.
package device

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"signer-core/internal/apdu"
	"signer-core/internal/approval"
	"signer-core/internal/session"
	"signer-core/pkg/config"
	"signer-core/pkg/signer"
	"signer-core/pkg/txparser"
)

var ErrNoSeed = errors.New("device: neither signer.mnemonic nor signer.keystore_path is set")

// SeedSource picks the configured seed: an inline mnemonic wins over the
// keystore file.
func SeedSource(cfg config.SignerConfig) (signer.SeedSource, error) {
	switch {
	case cfg.Mnemonic != "":
		return signer.MnemonicSeed{Mnemonic: cfg.Mnemonic, Passphrase: cfg.Passphrase}, nil
	case cfg.KeystorePath != "":
		return signer.KeystoreSeed{Path: cfg.KeystorePath, Password: cfg.Password, Passphrase: cfg.Passphrase}, nil
	default:
		return nil, ErrNoSeed
	}
}

// Options maps configuration onto session options.
func Options(cfg config.Config) session.Options {
	opts := session.DefaultOptions()
	opts.Parser = txparser.Config{
		AllowCallData:    cfg.Parser.AllowCallData,
		AllowTyped:       cfg.Parser.AllowTyped,
		MaxCallDataLen:   cfg.Parser.MaxCallDataLen,
		MaxAccessListLen: cfg.Parser.MaxAccessListLen,
		MaxTxLen:         cfg.Parser.MaxTxLen,
	}
	opts.MaxMessageLen = cfg.Parser.MaxMessageLen
	opts.BlindSigning = cfg.Approval.BlindSigning
	opts.DetailedDisplay = cfg.Approval.DetailedDisplay
	if cfg.App.Name != "" {
		opts.AppName = cfg.App.Name
	}
	if v, ok := parseVersion(cfg.App.Version); ok {
		opts.Version = v
	}
	return opts
}

// New builds a dispatcher over the configured seed. Terminal approval reads
// from in and writes to out.
func New(cfg config.Config, in io.Reader, out io.Writer) (*apdu.Dispatcher, error) {
	seeds, err := SeedSource(cfg.Signer)
	if err != nil {
		return nil, err
	}
	approver, err := approval.New(cfg.Approval, in, out)
	if err != nil {
		return nil, err
	}
	keys := signer.NewService(seeds, signer.Policy{
		MinPathDepth: cfg.Signer.MinPathDepth,
		MaxPathDepth: cfg.Signer.MaxPathDepth,
	})
	return apdu.NewDispatcher(session.NewController(keys, approver, Options(cfg))), nil
}

// parseVersion reads "major.minor.patch" with each part below 256.
func parseVersion(s string) ([3]byte, bool) {
	var v [3]byte
	parts := strings.Split(s, ".")
	if len(parts) != len(v) {
		return v, false
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return v, false
		}
		v[i] = byte(n)
	}
	return v, true
}
