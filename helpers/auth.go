package helpers

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	jose_jwt "github.com/go-jose/go-jose/v4/jwt"
	"pubforge.dev/publisher-api/jwt"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/utils"
)

func NewAccessToken(u *models.User) (string, error) {
	return newToken(u, utils.AccessTokenExpiration(), true)
}

func NewRefreshToken(u *models.User) (string, error) {
	return newToken(u, utils.RefreshTokenExpiration(), false)
}

// newToken mints a signed-then-encrypted token. The claims carry the user's
// current token secret, so rotating the column invalidates everything minted
// before the rotation.
func newToken(u *models.User, expiration time.Duration, withProfile bool) (string, error) {
	issuer, err := utils.GetJwtIssuer()
	if err != nil {
		sentry.CaptureException(err)
		return "", fmt.Errorf("Invalid token issuer '%s': %w", issuer, err)
	}

	now := time.Now().In(utils.DefaultLocation())

	claims := &utils.CustomJwtClaims{
		Claims: jose_jwt.Claims{
			ID:        utils.HashString(u.ID.String()),
			Issuer:    issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jose_jwt.NewNumericDate(now),
			NotBefore: jose_jwt.NewNumericDate(now),
			Expiry:    jose_jwt.NewNumericDate(now.Add(expiration)),
		},
		User: utils.UserClaimData{
			ID:      u.ID,
			Email:   u.Email,
			IsAdmin: u.Admin(),
			Secret:  u.TokenSecret,
		},
	}

	if withProfile {
		claims.User.FirstName = u.FirstName
		claims.User.LastName = u.LastName
	}

	jwtStr, err := jose_jwt.Signed(jwt.Signer()).Claims(claims).Serialize()
	if err != nil {
		sentry.CaptureException(err)
		return "", fmt.Errorf("Error generating JWT: %w", err)
	}

	jwe, err := jwt.Encrypter().Encrypt([]byte(jwtStr))
	if err != nil {
		sentry.CaptureException(err)
		return "", fmt.Errorf("Error generating JWE: %w", err)
	}

	jweStr, err := jwe.CompactSerialize()
	if err != nil {
		sentry.CaptureException(err)
		return "", fmt.Errorf("Error generating token: %w", err)
	}

	return jweStr, nil
}
