// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts whole bundles with age so that a bundle can
// be served from a public CDN while only builds holding the matching
// identity can load it.
//
// A sealed bundle is the raw binary age format wrapped around the
// plain bundle bytes; there is no extra framing. [IsSealed] recognises
// the age header, which is how the parser decides whether to unseal
// before reading the archive.
//
// Identities are carried in a [secret.Buffer] and only converted to a
// string at the age API boundary.
package sealed

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/bureau-foundation/bunny/lib/secret"
)

// ageHeader opens every binary age file.
var ageHeader = []byte("age-encryption.org/v1\n")

// Keypair is an x25519 identity and its recipient string. Close
// releases the private key.
type Keypair struct {
	PrivateKey *secret.Buffer
	PublicKey  string
}

// Close releases the private key buffer.
func (k *Keypair) Close() error {
	return k.PrivateKey.Close()
}

// GenerateKeypair creates a new x25519 identity.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// IsSealed reports whether data starts with the age header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, ageHeader)
}

// Seal encrypts plaintext to every recipient (age1... strings).
func Seal(plaintext []byte, recipientKeys []string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing bundle to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Unseal decrypts a sealed bundle with identity. The identity is
// borrowed, not closed.
func Unseal(ciphertext []byte, identity *secret.Buffer) ([]byte, error) {
	if identity == nil {
		return nil, fmt.Errorf("bundle is sealed but no identity is configured")
	}
	parsed, err := age.ParseX25519Identity(identity.String())
	if err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), parsed)
	if err != nil {
		return nil, fmt.Errorf("decrypting bundle: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted bundle: %w", err)
	}
	return plaintext, nil
}

// ParsePublicKey validates a recipient string.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}
