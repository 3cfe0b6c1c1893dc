package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenPair is a matched access and refresh token issued for one identity.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenService mints and validates JWT pairs
type TokenService interface {
	GeneratePair(identity Identity) (*TokenPair, error)
	Refresh(refreshToken string) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	ValidateRefresh(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	decorator  ClaimsDecorator
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, accessTTL, refreshTTL time.Duration, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if accessTTL == 0 {
		accessTTL = time.Hour
	}
	if refreshTTL == 0 {
		refreshTTL = 24 * time.Hour
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
		decorator:  noopClaimsDecorator{},
	}
}

// WithClaimsDecorator installs a decorator that can enrich extension
// claims (Resources, Metadata) before signing. Registered and identity
// claims stay immutable; a decorator that touches one fails the mint.
func (ts *TokenServiceImpl) WithClaimsDecorator(d ClaimsDecorator) *TokenServiceImpl {
	ts.decorator = normalizeClaimsDecorator(d)
	return ts
}

// GeneratePair mints an access and refresh token for the identity
func (ts *TokenServiceImpl) GeneratePair(identity Identity) (*TokenPair, error) {
	if identity == nil {
		return nil, errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := time.Now()

	accessExp := now.Add(ts.accessTTL)
	accessClaims := ts.newClaims(identity, TokenUseAccess, now, accessExp)
	if err := ts.decorate(identity, accessClaims); err != nil {
		return nil, err
	}
	access, err := ts.SignClaims(accessClaims)
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(ts.refreshTTL)
	refreshClaims := ts.newClaims(identity, TokenUseRefresh, now, refreshExp)
	if err := ts.decorate(identity, refreshClaims); err != nil {
		return nil, err
	}
	refresh, err := ts.SignClaims(refreshClaims)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh validates a refresh token and mints a new access token for the
// same subject. The refresh token itself is not rotated.
func (ts *TokenServiceImpl) Refresh(refreshToken string) (string, error) {
	claims, err := ts.ValidateRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	now := time.Now()
	access := ts.newClaimsFromExisting(claims, TokenUseAccess, now, now.Add(ts.accessTTL))

	return ts.SignClaims(access)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses an access token and returns the structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	return ts.validate(tokenString, TokenUseAccess)
}

// ValidateRefresh parses a refresh token and returns the structured claims
func (ts *TokenServiceImpl) ValidateRefresh(tokenString string) (AuthClaims, error) {
	return ts.validate(tokenString, TokenUseRefresh)
}

func (ts *TokenServiceImpl) validate(tokenString, expectedUse string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrUnableToDecodeClaims
	}

	if claims.TokenUse() != expectedUse {
		return nil, ErrTokenWrongUse.Clone().WithMetadata(map[string]any{
			"expected": expectedUse,
			"actual":   claims.TokenUse(),
		})
	}

	return claims, nil
}

func (ts *TokenServiceImpl) newClaims(identity Identity, use string, issuedAt, expiresAt time.Time) *JWTClaims {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:      identity.ID(),
		UserRole: identity.Role(),
		Use:      use,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return claims
}

func (ts *TokenServiceImpl) newClaimsFromExisting(src AuthClaims, use string, issuedAt, expiresAt time.Time) *JWTClaims {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   src.Subject(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:      src.UserID(),
		UserRole: src.Role(),
		Use:      use,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return claims
}

// decorate runs the configured decorator against freshly minted claims
// and rejects any mutation of the immutable core.
func (ts *TokenServiceImpl) decorate(identity Identity, claims *JWTClaims) error {
	guard := guardClaims(claims)
	if err := normalizeClaimsDecorator(ts.decorator).Decorate(context.Background(), identity, claims); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "claims decorator failed")
	}
	return guard.validate(claims)
}

func ensureTokenID(rc *jwt.RegisteredClaims) {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
}
