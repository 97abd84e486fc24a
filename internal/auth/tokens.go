package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	domainerrors "github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/id"
)

const (
	tokenIssuer   = "nextbooru-server"
	tokenAudience = "nextbooru-admin"
	tokenSubject  = "admin"
)

// TokenService mints and verifies admin PASETO v4.local tokens.
type TokenService struct {
	key           paseto.V4SymmetricKey
	passwordHash  string
	tokenDuration time.Duration
}

// NewTokenService creates a token service. passwordHash is the argon2id
// hash of the admin secret; when empty, Login always fails and the admin
// surface is effectively disabled.
func NewTokenService(key []byte, passwordHash string, tokenDuration time.Duration) (*TokenService, error) {
	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}
	return &TokenService{
		key:           symmetric,
		passwordHash:  passwordHash,
		tokenDuration: tokenDuration,
	}, nil
}

// Enabled reports whether an admin secret is configured.
func (s *TokenService) Enabled() bool {
	return s.passwordHash != ""
}

// Login verifies the admin secret and mints a token on success.
func (s *TokenService) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", domainerrors.Forbidden("admin access is not configured")
	}
	ok, err := VerifyPassword(password, s.passwordHash)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "verify admin secret")
	}
	if !ok {
		return "", domainerrors.Unauthorized("invalid admin secret")
	}
	return s.mint()
}

func (s *TokenService) mint() (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(tokenSubject)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.tokenDuration))

	jti, err := id.Generate("tok-")
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	token.SetJti(jti)

	return token.V4Encrypt(s.key, nil), nil
}

// Verify checks an admin token's signature, audience, and validity window.
func (s *TokenService) Verify(raw string) error {
	if !s.Enabled() {
		return domainerrors.Forbidden("admin access is not configured")
	}

	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.Subject(tokenSubject))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	if _, err := parser.ParseV4Local(s.key, raw, nil); err != nil {
		return domainerrors.Unauthorized("invalid admin token")
	}
	return nil
}
