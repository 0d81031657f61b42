package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
)

// sealedPrefix marks a field value as AES-GCM ciphertext.
const sealedPrefix = "enc:"

// ErrNotEncrypted is returned when a stored record carries plaintext where ciphertext was expected.
var ErrNotEncrypted = errors.New("record field is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionRepository
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts the free-text
// fields of a record (transcript and context slots) with AES-GCM.
// Token, state, branch, alignment and timestamps stay readable so stores can
// index and expire records.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SessionRepository) ports.SessionRepository {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Put(ctx context.Context, token string, record *domain.Record) error {
	sealed := record.Snapshot()
	err := m.transform(sealed, func(v string) (string, error) {
		ciphertext, err := encrypt([]byte(v), m.config.ActiveKey)
		if err != nil {
			return "", err
		}
		return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt record: %w", err)
	}
	return m.next.Put(ctx, token, sealed)
}

func (m *encryptionMiddleware) Get(ctx context.Context, token string) (*domain.Record, error) {
	sealed, err := m.next.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	rec := sealed.Snapshot()
	err = m.transform(rec, func(v string) (string, error) {
		encoded, ok := strings.CutPrefix(v, sealedPrefix)
		if !ok {
			return "", ErrNotEncrypted
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt record %s: %w", token, err)
	}
	return rec, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, token string) error {
	return m.next.Delete(ctx, token)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// transform applies fn to every non-empty free-text field of rec in place.
func (m *encryptionMiddleware) transform(rec *domain.Record, fn func(string) (string, error)) error {
	fields := []*string{
		&rec.Context.LearningObjectives,
		&rec.Context.GradeLevel,
		&rec.Context.Subject,
		&rec.Context.AssessmentContent,
		&rec.Context.LastGeneratedArtifact,
	}
	for i := range rec.Transcript {
		fields = append(fields, &rec.Transcript[i].Text)
	}
	for _, f := range fields {
		if *f == "" {
			continue
		}
		v, err := fn(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
