package payees

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLPaymentsHistory(t *testing.T) {
	signer := NewSigner("https://payments.example.com/", []byte("shared-key"))

	got := signer.SignedURL(KindPaymentsHistory, "payee-uuid-1", "", 1750000000)

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/PayeeDashboard/PaymentsHistory", parsed.Path)

	// Insertion order, hashkey last.
	query := parsed.RawQuery
	assert.True(t, strings.HasPrefix(query, "idap=payee-uuid-1&payer=MEDIAVINE&ts=1750000000&hashkey="))

	// The hashkey covers the exact query string preceding it.
	idx := strings.Index(query, "&hashkey=")
	mac := hmac.New(sha256.New, []byte("shared-key"))
	mac.Write([]byte(query[:idx]))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), query[idx+len("&hashkey="):])
}

func TestSignedURLEditProfile(t *testing.T) {
	signer := NewSigner("https://payments.example.com", []byte("shared-key"))

	got := signer.SignedURL(KindEditProfile, "payee-uuid-1", "https://dashboard.example.com/payments", 1750000000)

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/Payees/PayeeDashboard.aspx", parsed.Path)
	assert.Equal(t, "https://dashboard.example.com/payments?tipalti_completed=true", parsed.Query().Get("redirectto"))
	assert.Contains(t, parsed.RawQuery, "&redirectto=")
	assert.Regexp(t, `&hashkey=[0-9a-f]{64}$`, parsed.RawQuery)
}

func TestIframeTag(t *testing.T) {
	signer := NewSigner("https://payments.example.com", []byte("k"))

	tag := signer.IframeTag("https://payments.example.com/x?a=b")

	assert.True(t, strings.HasPrefix(tag, `<iframe id="tipalti_iframe"`))
	assert.Contains(t, tag, `src="https://payments.example.com/x?a=b"`)
}
