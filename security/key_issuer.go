// Package security issues credential key material. Production
// deployments plug the wallet SDK's issuer in through the KeyIssuer
// contract; the issuer here generates random keypairs for local and
// test use.
package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/goliatone/go-userops/core"
)

const privateKeyBytes = 32

type RandomKeyIssuer struct{}

func NewRandomKeyIssuer() *RandomKeyIssuer {
	return &RandomKeyIssuer{}
}

// IssueKeypair returns a fresh hex keypair. The public key is the
// keccak-256 digest of the private key bytes, which keeps the pair
// deterministic per key without depending on a curve implementation.
func (RandomKeyIssuer) IssueKeypair(_ context.Context) (string, string, error) {
	private := make([]byte, privateKeyBytes)
	if _, err := rand.Read(private); err != nil {
		return "", "", fmt.Errorf("security: generate private key: %w", err)
	}

	digest := sha3.NewLegacyKeccak256()
	digest.Write(private)
	public := digest.Sum(nil)

	return "0x" + hex.EncodeToString(public), "0x" + hex.EncodeToString(private), nil
}

var _ core.KeyIssuer = (*RandomKeyIssuer)(nil)
