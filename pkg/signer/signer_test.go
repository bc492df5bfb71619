package signer

import (
	"bytes"
	"encoding/hex"
	"errors"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signer-core/pkg/bip32"
	"signer-core/pkg/keystore"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// examplePath is m/44'/459'/0'/0/0.
var examplePath = []uint32{0x8000002C, 0x800001CB, 0x80000000, 0, 0}

func newTestService() *Service {
	return NewService(MnemonicSeed{Mnemonic: testMnemonic}, DefaultPolicy())
}

func TestDerivePublicKeyKnownVector(t *testing.T) {
	svc := newTestService()
	path, err := bip32.ParsePath("m/44'/60'/0'/0/0")
	require.NoError(t, err)

	raw, chainCode, err := svc.DerivePublicKey(path)
	require.NoError(t, err)
	assert.NotEqual(t, [32]byte{}, chainCode)

	pub, err := crypto.UnmarshalPubkey(append([]byte{0x04}, raw[:]...))
	require.NoError(t, err)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", crypto.PubkeyToAddress(*pub).Hex())
}

func TestDerivePrivateKeyMatchesPublic(t *testing.T) {
	svc := newTestService()
	priv, cc1, err := svc.DerivePrivateKey(examplePath)
	require.NoError(t, err)
	defer priv.Zero()

	pub, raw, err := InitPublicKey(priv)
	require.NoError(t, err)
	assert.Equal(t, pub.SerializeUncompressed()[1:], raw[:])

	raw2, cc2, err := svc.DerivePublicKey(examplePath)
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)
	assert.Equal(t, cc1, cc2)
}

func TestInitPublicKeyInvalid(t *testing.T) {
	_, _, err := InitPublicKey(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, _, err = InitPublicKey(&btcec.PrivateKey{})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSignDigestDeterministic(t *testing.T) {
	svc := newTestService()
	digest := crypto.Keccak256Hash([]byte("transaction bytes"))

	sig1, err := svc.SignDigest(examplePath, digest)
	require.NoError(t, err)
	sig2, err := svc.SignDigest(examplePath, digest)
	require.NoError(t, err)

	assert.Equal(t, sig1.DER, sig2.DER)
	assert.Equal(t, sig1.V, sig2.V)
	assert.LessOrEqual(t, len(sig1.DER), MaxDERSigLen)
	assert.LessOrEqual(t, sig1.V, byte(1))

	other, err := svc.SignDigest(examplePath[:4], digest)
	require.NoError(t, err)
	assert.NotEqual(t, sig1.DER, other.DER)
}

func TestSignDigestRecoverable(t *testing.T) {
	svc := newTestService()
	raw, _, err := svc.DerivePublicKey(examplePath)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		digest := crypto.Keccak256Hash([]byte{byte(i)})
		sig, err := svc.SignDigest(examplePath, digest)
		require.NoError(t, err)

		r, s, err := sig.RS()
		require.NoError(t, err)
		assert.Len(t, r, 32)
		assert.Len(t, s, 32)

		// go-ethereum expects [r][s][v]
		rsv := append(append(r[:], s[:]...), sig.V)
		recovered, err := crypto.Ecrecover(digest[:], rsv)
		require.NoError(t, err)
		assert.Equal(t, append([]byte{0x04}, raw[:]...), recovered)

		vrs, err := sig.VRS()
		require.NoError(t, err)
		assert.Equal(t, sig.V, vrs[0])
		assert.Equal(t, r[:], vrs[1:33])
		assert.Equal(t, s[:], vrs[33:])
	}
}

func TestPathPolicy(t *testing.T) {
	svc := newTestService()
	var digest [32]byte

	_, err := svc.SignDigest(nil, digest)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, _, err = svc.DerivePrivateKey(make([]uint32, 11))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, _, err = svc.DerivePublicKey([]uint32{})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	relaxed := NewService(MnemonicSeed{Mnemonic: testMnemonic}, Policy{MinPathDepth: 0, MaxPathDepth: 10})
	_, err = relaxed.SignDigest(nil, digest)
	assert.NoError(t, err)
}

func TestSeedWipedOnEveryPath(t *testing.T) {
	var handed [][]byte
	seeds := SeedFunc(func() ([]byte, error) {
		seed, err := MnemonicSeed{Mnemonic: testMnemonic}.Seed()
		handed = append(handed, seed)
		return seed, err
	})
	svc := NewService(seeds, DefaultPolicy())

	_, err := svc.SignDigest(examplePath, [32]byte{1})
	require.NoError(t, err)
	_, _, err = svc.DerivePublicKey(examplePath)
	require.NoError(t, err)

	priv, _, err := svc.DerivePrivateKey([]uint32{0x8000002C})
	require.NoError(t, err)
	priv.Zero()
	assert.True(t, priv.Key.IsZero())

	require.Len(t, handed, 3)
	for i, seed := range handed {
		if !bytes.Equal(seed, make([]byte, len(seed))) {
			t.Errorf("seed %d not wiped", i)
		}
	}
}

func TestSeedFailure(t *testing.T) {
	boom := errors.New("device locked")
	svc := NewService(SeedFunc(func() ([]byte, error) { return nil, boom }), DefaultPolicy())
	_, err := svc.SignDigest(examplePath, [32]byte{})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	bad := NewService(MnemonicSeed{Mnemonic: "not a mnemonic"}, DefaultPolicy())
	_, _, err = bad.DerivePublicKey(examplePath)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestKeystoreSeed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "signer.json")
	keyJSON, err := keystore.EncryptMnemonicWithParams(testMnemonic, "pw", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)
	require.NoError(t, keyJSON.SaveToFile(file))

	fromKeystore := NewService(KeystoreSeed{Path: file, Password: "pw"}, DefaultPolicy())
	raw1, _, err := fromKeystore.DerivePublicKey(examplePath)
	require.NoError(t, err)
	raw2, _, err := newTestService().DerivePublicKey(examplePath)
	require.NoError(t, err)
	assert.Equal(t, raw2, raw1)

	wrong := NewService(KeystoreSeed{Path: file, Password: "nope"}, DefaultPolicy())
	_, _, err = wrong.DerivePublicKey(examplePath)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSplitDER(t *testing.T) {
	r33 := append([]byte{0x00, 0x80}, bytes.Repeat([]byte{0x11}, 31)...)
	s31 := bytes.Repeat([]byte{0x22}, 31)
	der := []byte{0x30, byte(4 + len(r33) + len(s31)), 0x02, byte(len(r33))}
	der = append(der, r33...)
	der = append(der, 0x02, byte(len(s31)))
	der = append(der, s31...)

	r, s, err := SplitDER(der)
	require.NoError(t, err)
	assert.Equal(t, r33[1:], r[:])
	assert.Equal(t, byte(0x00), s[0])
	assert.Equal(t, s31, s[1:])

	bad := []struct {
		name string
		der  string
	}{
		{"empty", ""},
		{"wrong tag", "3106020101020101"},
		{"length mismatch", "3007020101020101"},
		{"missing s", "300602010102"},
		{"unpadded 33", "3026" + "0221" + "01" + "0000000000000000000000000000000000000000000000000000000000000000" + "020101"},
		{"trailing", "3007020101020101ff"},
	}
	for _, tc := range bad {
		b, _ := hex.DecodeString(tc.der)
		if _, _, err := SplitDER(b); !errors.Is(err, ErrDERFormat) {
			t.Errorf("%s: err = %v, want ErrDERFormat", tc.name, err)
		}
	}
}
