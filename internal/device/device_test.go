package device

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signer-core/internal/approval"
	"signer-core/pkg/config"
	"signer-core/pkg/keystore"
	"signer-core/pkg/signer"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{Name: "Conflux", Version: "2.0.3"},
		Signer: config.SignerConfig{
			Mnemonic:     testMnemonic,
			MinPathDepth: 1,
			MaxPathDepth: 10,
		},
		Parser: config.ParserConfig{
			AllowCallData: true, AllowTyped: true,
			MaxCallDataLen: 4096, MaxAccessListLen: 2048, MaxTxLen: 65535, MaxMessageLen: 4096,
		},
		Approval: config.ApprovalConfig{Mode: approval.ModeAuto, BlindSigning: true, NetworkID: 1029},
	}
}

func TestSeedSource(t *testing.T) {
	src, err := SeedSource(config.SignerConfig{Mnemonic: testMnemonic, KeystorePath: "x.json"})
	require.NoError(t, err)
	assert.IsType(t, signer.MnemonicSeed{}, src)

	src, err = SeedSource(config.SignerConfig{KeystorePath: "x.json", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, signer.KeystoreSeed{Path: "x.json", Password: "pw"}, src)

	_, err = SeedSource(config.SignerConfig{})
	assert.ErrorIs(t, err, ErrNoSeed)
}

func TestOptions(t *testing.T) {
	opts := Options(testConfig())
	assert.Equal(t, [3]byte{2, 0, 3}, opts.Version)
	assert.True(t, opts.BlindSigning)
	assert.Equal(t, 4096, opts.Parser.MaxCallDataLen)

	cfg := testConfig()
	cfg.App.Version = "1.2"
	assert.Equal(t, [3]byte{1, 2, 0}, Options(cfg).Version)
}

func TestParseVersion(t *testing.T) {
	for in, ok := range map[string]bool{"1.2.0": true, "255.0.1": true, "1.2": false, "1.2.256": false, "a.b.c": false, "": false} {
		_, got := parseVersion(in)
		assert.Equal(t, ok, got, in)
	}
}

func TestNew(t *testing.T) {
	dev, err := New(testConfig(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 2, 0, 3, 0x90, 0x00}, dev.Exchange([]byte{0xe0, 0x01, 0x00, 0x00}))

	cfg := testConfig()
	cfg.Approval.Mode = "maybe"
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestNewFromKeystore(t *testing.T) {
	key, err := keystore.EncryptMnemonicWithParams(testMnemonic, "secret", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "signer.json")
	require.NoError(t, key.SaveToFile(path))

	cfg := testConfig()
	cfg.Signer = config.SignerConfig{KeystorePath: path, Password: "secret", MinPathDepth: 1, MaxPathDepth: 10}
	dev, err := New(cfg, nil, nil)
	require.NoError(t, err)

	// m/44'/503'/0'/0/0
	frame := []byte{0xe0, 0x02, 0x00, 0x00, 21, 5,
		0x80, 0, 0, 44, 0x80, 0, 0x01, 0xf7, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	reply := dev.Exchange(frame)
	require.Len(t, reply, 66+2)
	assert.Equal(t, []byte{0x90, 0x00}, reply[66:])
}
