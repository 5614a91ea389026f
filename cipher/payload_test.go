package cipher

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	payloadSecret  = "s3cr3t-key"
	payloadFixture = "U2FsdGVkX18BAgMEBQYHCKcCykPVmGPkRVw5oL4DiuOBY5071OICncEKy8uOaWt+nJjMsJ2DHE1fHWc6k1qQ0eLsMvoZoz7pc6S+neQRGPO0u8kvlfxfOOkh6esYGBcC"
	payloadPlain   = `[{"file":"https://cdn.example.com/hls/master.m3u8","type":"hls"}]`
)

func TestDeriveKey(t *testing.T) {
	salt := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	material := DeriveKey([]byte(payloadSecret), salt)
	require.Len(t, material, 48)
	assert.Equal(t, "d2167027a8f8547b2247b392fd80536ea0d29532f801bd05714e95c008715eea", hex.EncodeToString(material[:32]))
	assert.Equal(t, "43cb4064ac1b43b75ab28193cd2061bb", hex.EncodeToString(material[32:]))
}

func TestDecryptPayload(t *testing.T) {
	out, err := DecryptPayload(payloadFixture, payloadSecret)
	require.NoError(t, err)
	assert.Equal(t, payloadPlain, out)

	// surrounding whitespace from a JSON field is tolerated
	out, err = DecryptPayload("  "+payloadFixture+"\n", payloadSecret)
	require.NoError(t, err)
	assert.Equal(t, payloadPlain, out)
}

func TestDecryptPayload_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{name: "bad base64", input: "not*base64", check: IsCodec},
		{name: "embedded newline", input: payloadFixture[:40] + "\n" + payloadFixture[40:], check: IsCodec},
		{name: "embedded crlf", input: payloadFixture[:64] + "\r\n" + payloadFixture[64:], check: IsCodec},
		{name: "trailing bits", input: "U2FsdGVkX18BAgMEBQYHCB==", check: IsCodec},
		{name: "short header", input: "U2FsdGVkX18=", check: IsBlockSize},
		{name: "no ciphertext", input: "U2FsdGVkX18BAgMEBQYHCA==", check: IsBlockSize},
		{name: "partial block", input: "U2FsdGVkX18BAgMEBQYHCAAAAAAAAAAAAAAAAAAAAA==", check: IsBlockSize},
		{name: "wrong secret", input: payloadFixture, check: IsPadding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := payloadSecret
			if tt.name == "wrong secret" {
				secret = "wrong-secret"
			}
			out, err := DecryptPayload(tt.input, secret)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestDecryptPayload_ErrorMessage(t *testing.T) {
	_, err := DecryptPayload("U2FsdGVkX18BAgMEBQYHCAAAAAAAAAAAAAAAAAAAAA==", payloadSecret)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), ErrCodeBadBlockSize))
}

func TestPkcs7Unpad(t *testing.T) {
	block := []byte("0123456789ab\x04\x04\x04\x04")
	out, err := pkcs7Unpad(block)
	require.NoError(t, err)
	assert.Equal(t, "0123456789ab", string(out))

	_, err = pkcs7Unpad([]byte("0123456789abc\x01\x04\x04"))
	assert.True(t, IsPadding(err))
	_, err = pkcs7Unpad([]byte("0123456789abcde\x00"))
	assert.True(t, IsPadding(err))
	_, err = pkcs7Unpad([]byte("0123456789abcde\x11"))
	assert.True(t, IsPadding(err))
}
