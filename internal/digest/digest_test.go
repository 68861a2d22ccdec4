package digest

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryContents(t *testing.T) {
	for _, name := range []string{"none", "sha256", "blake2b-256", "murmur3-128"} {
		_, exists := AvailableDigesters[name]
		assert.True(t, exists, "digester '%s' missing from registry", name)
	}
	assert.Nil(t, AvailableDigesters["none"])
}

func TestKnownVectors(t *testing.T) {
	cases := []struct {
		alg     string
		payload string
		wantHex string
	}{
		{
			alg:     "sha256",
			payload: "hello world",
			wantHex: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			alg:     "blake2b-256",
			payload: "abc",
			wantHex: "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
		},
	}

	for _, tc := range cases {
		t.Run(tc.alg, func(t *testing.T) {
			h := AvailableDigesters[tc.alg]()
			_, err := h.Write([]byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.wantHex, hex.EncodeToString(h.Sum(nil)))
		})
	}
}

func TestMurmurDeterminism(t *testing.T) {
	sum := func() string {
		h := AvailableDigesters["murmur3-128"]()
		h.Write([]byte("some,csv,payload\n"))
		return hex.EncodeToString(h.Sum(nil))
	}

	first := sum()
	assert.Len(t, first, 32) // 128 bits
	assert.Equal(t, first, sum())
}
