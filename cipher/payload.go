package cipher

import (
	"bytes"
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"strings"
)

const (
	saltOffset   = 8
	saltLen      = 8
	keyLen       = 32
	ivLen        = aes.BlockSize
	materialSize = keyLen + ivLen
)

// DeriveKey stretches secret and salt the way OpenSSL's EVP_BytesToKey does
// with MD5 and one iteration: D0 = md5(secret|salt), Dn = md5(Dn-1|secret|salt).
// The result is 48 bytes, key first then IV.
func DeriveKey(secret, salt []byte) []byte {
	material := make([]byte, 0, materialSize+md5.Size)
	var block []byte
	for len(material) < materialSize {
		h := md5.New()
		h.Write(block)
		h.Write(secret)
		h.Write(salt)
		block = h.Sum(nil)
		material = append(material, block...)
	}
	return material[:materialSize]
}

// DecryptPayload decrypts a CryptoJS/OpenSSL style "Salted__" payload:
// base64(magic[8] | salt[8] | AES-256-CBC ciphertext), keyed by secret.
// Surrounding whitespace is trimmed, anything else non-canonical is rejected.
// Invalid UTF-8 in the plaintext is replaced, not rejected.
func DecryptPayload(ciphertextB64, secret string) (string, error) {
	var text = strings.TrimSpace(ciphertextB64)
	if strings.ContainsAny(text, "\r\n") {
		return "", NewError(ErrCodeCodec, "invalid base64 payload", "line break in input")
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(text)
	if err != nil {
		return "", NewError(ErrCodeCodec, "invalid base64 payload", err.Error())
	}
	if len(raw) < saltOffset+saltLen {
		return "", NewError(ErrCodeBadBlockSize, "payload shorter than salt header", len(raw))
	}

	salt := raw[saltOffset : saltOffset+saltLen]
	data := raw[saltOffset+saltLen:]
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", NewError(ErrCodeBadBlockSize, "ciphertext is not a multiple of the block size", len(data))
	}

	material := DeriveKey([]byte(secret), salt)
	block, err := aes.NewCipher(material[:keyLen])
	if err != nil {
		return "", NewError(ErrCodeInvalidKey, "aes key rejected", err.Error())
	}

	plain := make([]byte, len(data))
	gocipher.NewCBCDecrypter(block, material[keyLen:]).CryptBlocks(plain, data)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(plain), "\uFFFD"), nil
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, NewError(ErrCodeBadPadding, "invalid pkcs7 padding length", n)
	}
	if !bytes.Equal(data[len(data)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, NewError(ErrCodeBadPadding, "invalid pkcs7 padding bytes")
	}
	return data[:len(data)-n], nil
}
