// Package auth holds the mock credential table, the sign-up wizard and the
// API bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"klar/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// Credential is a plain entry used to build a Directory
type Credential struct {
	Email    string
	Password string
	Tier     models.AccountTier
}

// MockCredentials are the two test accounts of the product demo
var MockCredentials = []Credential{
	{Email: "test@klar.com", Password: "cipkanamida123", Tier: models.TierPro},
	{Email: "testfree@klar.com", Password: "cipkanamida", Tier: models.TierEssential},
}

// Directory is a static, read-only table of accounts
type Directory struct {
	accounts map[string]models.Account
}

// NewDirectory hashes the given credentials with bcrypt at the given cost.
// A cost of 0 uses bcrypt.DefaultCost.
func NewDirectory(creds []Credential, cost int) (*Directory, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	d := &Directory{accounts: make(map[string]models.Account, len(creds))}
	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", c.Email, err)
		}
		d.accounts[normalizeEmail(c.Email)] = models.Account{
			Email:        c.Email,
			PasswordHash: string(hash),
			Tier:         c.Tier,
		}
	}
	return d, nil
}

// Authenticate checks an email/password pair against the table. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (d *Directory) Authenticate(email, password string) (models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.Account{}, ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return models.Account{}, ErrInvalidEmail
	}

	acc, ok := d.accounts[normalizeEmail(email)]
	if !ok {
		return models.Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

// Lookup returns the account registered under email
func (d *Directory) Lookup(email string) (models.Account, bool) {
	acc, ok := d.accounts[normalizeEmail(email)]
	return acc, ok
}

// TierOf returns the tier of email. Emails outside the table are treated
// as essential accounts.
func (d *Directory) TierOf(email string) models.AccountTier {
	if acc, ok := d.Lookup(email); ok {
		return acc.Tier
	}
	return models.TierEssential
}

// MessageID maps an authentication error to its catalog message
func MessageID(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields):
		return "login_error_required"
	case errors.Is(err, ErrInvalidEmail):
		return "login_error_invalid_email"
	case errors.Is(err, ErrInvalidCredentials):
		return "login_error_credentials"
	case errors.Is(err, ErrPlanRequired):
		return "signup_error_plan"
	case errors.Is(err, ErrSignupFields):
		return "signup_error_required"
	case errors.Is(err, ErrInvalidUsername):
		return "signup_error_username"
	case errors.Is(err, ErrPasswordTooShort):
		return "signup_error_password_short"
	case errors.Is(err, ErrPasswordMismatch):
		return "signup_error_password_mismatch"
	}
	return "error_500"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
