// Package auth implements the Shopwice account service: password and
// social sign in, JWT issuance, and the HTTP surface mounted under
// /api/v1/auth.
//
// Token issuance:
//   - TokenService mints HS256 access/refresh pairs carrying a token_use
//     claim so refresh tokens cannot be replayed as access tokens. The
//     refresh endpoint trades a valid refresh token for a new access
//     token without rotating the refresh token.
//   - ClaimsDecorator is invoked before JWTs are signed. Decorators may
//     enrich extension fields such as Resources or Metadata while
//     registered and identity claims (sub, iss, aud, exp, uid) remain
//     immutable.
//
// Social login lives in the social subpackage: providers verify a
// bearer access token against Google or Facebook, and the linking
// strategy resolves the profile to a local user, creating or linking
// accounts inside one transaction.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter fed by the account
//     controller and the social authenticator. Sinks run best-effort
//     (errors are logged) so you can forward events to a database or
//     queue without blocking authentication.
package auth
