package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWallet_Valid(t *testing.T) {
	addr := "8Kv9wz8LqvFqr3nciX8a9iYnhqqd5A17mkgXkGCVrdGb"
	got, err := NormalizeWallet(addr)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestNormalizeWallet_Invalid(t *testing.T) {
	cases := []string{
		"",
		"not-base58-0OIl",
		"abc",                 // decodes but far too short
		"0x71C7656EC7ab88b098", // EVM-style address
	}
	for _, c := range cases {
		_, err := NormalizeWallet(c)
		assert.Error(t, err, "input %q", c)
	}
}

func TestIsWallet(t *testing.T) {
	assert.True(t, IsWallet("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	assert.False(t, IsWallet("hello"))
}
