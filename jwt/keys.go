package jwt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-jose/go-jose/v4"
)

type KeyPair struct {
	Public  jose.JSONWebKey
	Private jose.JSONWebKey
}

func keyBasePath() string {
	dir := os.Getenv("JWT_KEYS_DIR")

	if len(dir) < 1 {
		dir = "keys"
	}

	return dir
}

func loadKey(name string) jose.JSONWebKey {
	jwk := jose.JSONWebKey{}

	buffer, err := os.ReadFile(filepath.Clean(filepath.Join(keyBasePath(), name)))
	if err != nil {
		slog.Error(fmt.Sprintf("Could not read key %s: %v", name, err))
		os.Exit(1)
	}

	if err := json.Unmarshal(buffer, &jwk); err != nil {
		slog.Error(fmt.Sprintf("Could not decode key %s: %v", name, err))
		os.Exit(1)
	}

	return jwk
}

func loadKeyPair(prefix string) *KeyPair {
	return &KeyPair{
		Public:  loadKey(prefix + "-public.json"),
		Private: loadKey(prefix + "-private.json"),
	}
}
