package jwt

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-jose/go-jose/v4"
)

var (
	signKeyPair  *KeyPair
	signer       jose.Signer
	onceSignKeys sync.Once
	onceSigner   sync.Once
)

func SigningKeys() *KeyPair {
	onceSignKeys.Do(func() {
		signKeyPair = loadKeyPair("signing")
	})

	return signKeyPair
}

func Signer() jose.Signer {
	onceSigner.Do(func() {
		sig, err := jose.NewSigner(
			jose.SigningKey{Algorithm: jose.EdDSA, Key: &SigningKeys().Private},
			(&jose.SignerOptions{}).WithType("JWT"),
		)
		if err != nil {
			slog.Error(fmt.Sprintf("Could not create signer: %v", err))
			os.Exit(1)
		}

		signer = sig
	})

	return signer
}
