package auth

import (
	"testing"
	"time"

	"klar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(MockCredentials, bcrypt.MinCost)
	require.NoError(t, err)
	return d
}

func TestAuthenticate(t *testing.T) {
	d := newDirectory(t)

	tests := []struct {
		name     string
		email    string
		password string
		tier     models.AccountTier
		err      error
	}{
		{"pro account", "test@klar.com", "cipkanamida123", models.TierPro, nil},
		{"essential account", "testfree@klar.com", "cipkanamida", models.TierEssential, nil},
		{"case and spaces in email", "  Test@KLAR.com ", "cipkanamida123", models.TierPro, nil},
		{"missing email", "", "cipkanamida", "", ErrMissingFields},
		{"missing password", "test@klar.com", "", "", ErrMissingFields},
		{"no at sign", "test.klar.com", "cipkanamida123", "", ErrInvalidEmail},
		{"wrong password", "test@klar.com", "cipkanamida", "", ErrInvalidCredentials},
		{"unknown email", "nobody@klar.com", "cipkanamida123", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := d.Authenticate(tt.email, tt.password)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tier, acc.Tier)
			assert.NotEqual(t, tt.password, acc.PasswordHash)
		})
	}
}

func TestTierOf(t *testing.T) {
	d := newDirectory(t)

	assert.Equal(t, models.TierPro, d.TierOf("test@klar.com"))
	assert.Equal(t, models.TierEssential, d.TierOf("testfree@klar.com"))
	assert.Equal(t, models.TierEssential, d.TierOf("stranger@example.com"))
}

func TestMessageID(t *testing.T) {
	assert.Equal(t, "login_error_required", MessageID(ErrMissingFields))
	assert.Equal(t, "login_error_invalid_email", MessageID(ErrInvalidEmail))
	assert.Equal(t, "login_error_credentials", MessageID(ErrInvalidCredentials))
	assert.Equal(t, "signup_error_password_mismatch", MessageID(ErrPasswordMismatch))
	assert.Equal(t, "error_500", MessageID(assert.AnError))
}

func TestSignupSteps(t *testing.T) {
	form := SignupForm{
		Plan:            "pro",
		FirstName:       "Marie",
		LastName:        "Dubois",
		Username:        "marie.dubois",
		Password:        "motdepasse",
		ConfirmPassword: "motdepasse",
	}
	require.NoError(t, form.Validate())

	tests := []struct {
		name   string
		step   int
		mutate func(*SignupForm)
		err    error
	}{
		{"no plan", 1, func(f *SignupForm) { f.Plan = "" }, ErrPlanRequired},
		{"unknown plan", 1, func(f *SignupForm) { f.Plan = "gold" }, ErrPlanRequired},
		{"missing last name", 2, func(f *SignupForm) { f.LastName = " " }, ErrSignupFields},
		{"bad username", 2, func(f *SignupForm) { f.Username = "Marie Dubois" }, ErrInvalidUsername},
		{"short password", 3, func(f *SignupForm) { f.Password, f.ConfirmPassword = "court", "court" }, ErrPasswordTooShort},
		{"mismatch", 3, func(f *SignupForm) { f.ConfirmPassword = "autrechose" }, ErrPasswordMismatch},
		{"missing confirmation", 3, func(f *SignupForm) { f.ConfirmPassword = "" }, ErrSignupFields},
		{"unknown step", 4, func(*SignupForm) {}, ErrUnknownStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := form
			tt.mutate(&f)
			assert.ErrorIs(t, f.ValidateStep(tt.step), tt.err)
		})
	}
}

func TestSignupComplete(t *testing.T) {
	d := newDirectory(t)
	form := SignupForm{
		Plan:            "essential",
		FirstName:       "Jean",
		LastName:        "Dupont",
		Username:        NormalizeUsername(" Jean.Dupont! "),
		Password:        "motdepasse",
		ConfirmPassword: "motdepasse",
	}

	summary, err := form.Complete()
	require.NoError(t, err)
	assert.Equal(t, "jean.dupont@klar.app", summary.Address)
	assert.Equal(t, "Jean Dupont", summary.FullName)
	assert.Equal(t, models.TierEssential, summary.Tier)

	// the mock never registers new accounts
	_, ok := d.Lookup(summary.Address)
	assert.False(t, ok)
	_, err = d.Authenticate(summary.Address, "motdepasse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	acc := models.Account{Email: "test@klar.com", Tier: models.TierPro}

	token, err := GenerateToken(acc, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, acc.Email, claims.Email)
	assert.Equal(t, models.TierPro, claims.Tier)
	assert.NotEmpty(t, claims.ID)

	other, err := GenerateToken(acc, "secret", time.Hour)
	require.NoError(t, err)
	otherClaims, err := ParseToken(other, "secret")
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestParseTokenRejects(t *testing.T) {
	acc := models.Account{Email: "test@klar.com", Tier: models.TierPro}

	token, err := GenerateToken(acc, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(acc, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("not-a-token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearer("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearer("bearer abc"))
	assert.Equal(t, "", ExtractBearer("Basic abc"))
	assert.Equal(t, "", ExtractBearer("Bearer"))
	assert.Equal(t, "", ExtractBearer(""))
}
