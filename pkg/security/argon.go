// Package security contains password hashing and session signing
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid hash format")

var b64 = base64.RawStdEncoding

// Params are the argon2id cost settings encoded into every hash
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// ArgonHash hashes passwords with argon2id into PHC strings of the form
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type ArgonHash struct {
	Params Params
}

func New() *ArgonHash {
	return &ArgonHash{Params: Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}}
}

// phc is a decoded hash string
type phc struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (h *phc) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.iterations, h.parallelism, b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func parsePHC(s string) (*phc, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrInvalidHash
	}

	h := &phc{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.iterations, &h.parallelism); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrInvalidHash, err)
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrInvalidHash, err)
	}

	if h.key, err = b64.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return nil, ErrInvalidHash
	}

	return h, nil
}

func (a *ArgonHash) Hash(password string) (string, error) {
	salt := make([]byte, a.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt, %w", err)
	}

	h := &phc{
		memory:      a.Params.Memory,
		iterations:  a.Params.Iterations,
		parallelism: a.Params.Parallelism,
		salt:        salt,
	}
	h.key = argon2.IDKey([]byte(password), salt, h.iterations, h.memory, h.parallelism, a.Params.KeyLength)

	return h.String(), nil
}

// Verify checks password against an encoded hash. rehash is true when the
// password matched but the hash was made with other parameters than the
// current ones, so the caller can store a fresh hash.
func (a *ArgonHash) Verify(password, encoded string) (ok, rehash bool, err error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, false, err
	}

	key := argon2.IDKey([]byte(password), h.salt, h.iterations, h.memory, h.parallelism, uint32(len(h.key)))
	if subtle.ConstantTimeCompare(h.key, key) != 1 {
		return false, false, nil
	}

	rehash = h.memory != a.Params.Memory ||
		h.iterations != a.Params.Iterations ||
		h.parallelism != a.Params.Parallelism ||
		uint32(len(h.salt)) != a.Params.SaltLength ||
		uint32(len(h.key)) != a.Params.KeyLength

	return true, rehash, nil
}
