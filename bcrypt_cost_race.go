//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// Race-enabled builds hash at the default cost so the suite finishes
// inside strict test timeouts.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
