package jwt

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/go-jose/go-jose/v4"
)

var (
	cryptKeyPair  *KeyPair
	encrypter     jose.Encrypter
	onceCryptKeys sync.Once
	onceEncrypter sync.Once
)

func EncryptionKeys() *KeyPair {
	onceCryptKeys.Do(func() {
		cryptKeyPair = loadKeyPair("encryption")
	})

	return cryptKeyPair
}

func Encrypter() jose.Encrypter {
	onceEncrypter.Do(func() {
		enc, err := jose.NewEncrypter(
			jose.A256GCM,
			jose.Recipient{Algorithm: jose.ECDH_ES_A256KW, Key: &EncryptionKeys().Public},
			(&jose.EncrypterOptions{}).WithType("JWE").WithContentType("JWT"),
		)
		if err != nil {
			sentry.CaptureException(err)
			slog.Error(fmt.Sprintf("Could not create encrypter: %v", err))
			os.Exit(1)
		}

		encrypter = enc
	})

	return encrypter
}
