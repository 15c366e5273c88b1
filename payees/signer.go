package payees

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// URLKind selects the portal page an iframe embeds.
type URLKind int

const (
	KindPaymentsHistory URLKind = iota
	KindEditProfile
)

const (
	paymentsHistoryPath string = "PayeeDashboard/PaymentsHistory"
	editProfilePath     string = "Payees/PayeeDashboard.aspx"

	// Payer is the fixed payer name registered with the portal.
	Payer string = "MEDIAVINE"
)

// Signer builds portal URLs carrying an HMAC the portal verifies with the
// shared key.
type Signer struct {
	baseURL string
	key     []byte
}

func NewSigner(baseURL string, key []byte) *Signer {
	return &Signer{baseURL: strings.TrimRight(baseURL, "/"), key: key}
}

// SignedURL serializes the query parameters in insertion order and appends a
// hashkey computed over the exact serialized string. The portal recomputes
// the HMAC over the same bytes, so parameter order is part of the contract;
// never sort or re-encode.
func (s *Signer) SignedURL(kind URLKind, payeeUUID string, referer string, ts int64) string {
	path := paymentsHistoryPath

	params := [][2]string{
		{"idap", payeeUUID},
		{"payer", Payer},
		{"ts", fmt.Sprintf("%d", ts)},
	}

	if kind == KindEditProfile {
		path = editProfilePath
		params = append(params, [2]string{"redirectto", referer + "?tipalti_completed=true"})
	}

	pairs := make([]string, 0, len(params)+1)

	for _, p := range params {
		pairs = append(pairs, p[0]+"="+url.QueryEscape(p[1]))
	}

	query := strings.Join(pairs, "&")
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(query))
	query += "&hashkey=" + hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s/%s?%s", s.baseURL, path, query)
}

// IframeTag wraps a signed URL in the fixed-attribute embed the dashboard
// frontend expects.
func (s *Signer) IframeTag(signedURL string) string {
	return fmt.Sprintf(
		`<iframe id="tipalti_iframe" src="%s" width="100%%" height="1200" frameborder="0" scrolling="auto"></iframe>`,
		signedURL,
	)
}
