package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// claimsGuard freezes the identity claims of a token before decoration
// so a decorator cannot reissue the token for a different subject,
// audience, or lifetime.
type claimsGuard struct {
	subject  string
	issuer   string
	uid      string
	audience []string
	issued   *time.Time
	expires  *time.Time
}

func guardClaims(claims *JWTClaims) claimsGuard {
	g := claimsGuard{
		subject:  claims.RegisteredClaims.Subject,
		issuer:   claims.RegisteredClaims.Issuer,
		uid:      claims.UID,
		audience: slices.Clone([]string(claims.RegisteredClaims.Audience)),
	}

	if iat := claims.RegisteredClaims.IssuedAt; iat != nil {
		t := iat.Time
		g.issued = &t
	}
	if exp := claims.RegisteredClaims.ExpiresAt; exp != nil {
		t := exp.Time
		g.expires = &t
	}

	return g
}

func (g claimsGuard) validate(claims *JWTClaims) error {
	switch {
	case claims.RegisteredClaims.Subject != g.subject:
		return immutableClaimViolation("sub")
	case claims.RegisteredClaims.Issuer != g.issuer:
		return immutableClaimViolation("iss")
	case claims.UID != g.uid:
		return immutableClaimViolation("uid")
	case !slices.Equal([]string(claims.RegisteredClaims.Audience), g.audience):
		return immutableClaimViolation("aud")
	}

	if err := sameNumericDate(claims.RegisteredClaims.IssuedAt, g.issued, "iat"); err != nil {
		return err
	}
	return sameNumericDate(claims.RegisteredClaims.ExpiresAt, g.expires, "exp")
}

func sameNumericDate(date *jwt.NumericDate, want *time.Time, field string) error {
	if want == nil {
		if date != nil {
			return immutableClaimViolation(field)
		}
		return nil
	}
	if date == nil || !date.Time.Equal(*want) {
		return immutableClaimViolation(field)
	}
	return nil
}

func immutableClaimViolation(field string) error {
	clone := ErrImmutableClaimMutation.Clone()
	if clone == nil {
		return ErrImmutableClaimMutation
	}
	clone.Message = fmt.Sprintf("immutable claim mutated: %s", field)
	clone.Source = ErrImmutableClaimMutation
	return clone.WithMetadata(map[string]any{"claim": field})
}
