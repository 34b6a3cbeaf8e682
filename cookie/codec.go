package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32
	keySize         = 32 // 256 bits for AES-256

	// keyInfo provides domain separation for HKDF so that keys derived here
	// can never collide with keys derived from the same secret elsewhere.
	keyInfo = "sessionguard.cookie.v1"
)

// Payload is the client-held session pointer. It is transient: always
// encrypted before leaving the server and never trusted without a
// corresponding active session record.
type Payload struct {
	SessionID   string    `json:"sid"`
	PrincipalID uuid.UUID `json:"pid"`
	IssuedAt    time.Time `json:"iat"`
}

// Codec encrypts and decrypts session pointers with AES-256-GCM. Keys are
// derived from site-wide secrets combined with a purpose-specific salt, so a
// codec constructed for one purpose cannot decode tokens from another.
//
// Multiple secrets support rotation: the first secret encrypts, all secrets
// are tried on decode so previously issued tokens stay readable during a
// transition.
type Codec struct {
	keys [][]byte
}

// NewCodec derives encryption keys from the given secrets and purpose.
// Each secret must be at least 32 characters.
func NewCodec(secrets []string, purpose string) (*Codec, error) {
	if purpose == "" {
		return nil, ErrNoPurpose
	}

	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	keys := make([][]byte, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}

		key, err := deriveKey(s, purpose)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return &Codec{keys: keys}, nil
}

// Encode encrypts the payload with a fresh random nonce and returns a
// transport-safe token: base64url(nonce || ciphertext).
func (c *Codec) Encode(p Payload) (string, error) {
	plaintext, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(c.keys[0])
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Prepend nonce to ciphertext for self-contained decryption
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decode decrypts a token back into its payload. Any failure — wrong
// encoding, truncation, tampering, unknown key — collapses to a typed error;
// callers treat every decode failure identically to "no session".
func (c *Codec) Decode(token string) (Payload, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, ErrInvalidFormat
	}

	// Try all keys to support secret rotation during decode
	for _, key := range c.keys {
		gcm, err := newGCM(key)
		if err != nil {
			continue
		}

		if len(ciphertext) < gcm.NonceSize() {
			return Payload{}, ErrInvalidFormat
		}

		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		plaintext, err := gcm.Open(nil, nonce, sealed, nil)
		if err != nil {
			continue
		}

		var p Payload
		if err := json.Unmarshal(plaintext, &p); err != nil {
			return Payload{}, errors.Join(ErrDecryptionFailed, err)
		}
		return p, nil
	}

	return Payload{}, ErrDecryptionFailed
}

// deriveKey stretches a secret into an AES-256 key bound to the purpose.
func deriveKey(secret, purpose string) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), []byte(purpose), []byte(keyInfo))

	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
