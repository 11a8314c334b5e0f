package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"klar/models"
)

var (
	ErrPlanRequired     = errors.New("a plan must be chosen")
	ErrSignupFields     = errors.New("all fields are required")
	ErrInvalidUsername  = errors.New("username may only contain a-z, 0-9, '.', '_' and '-'")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUnknownStep      = errors.New("unknown sign-up step")
)

const (
	// AddressDomain is the domain of every address handed out at sign-up
	AddressDomain = "klar.app"

	MinPasswordLength = 8
	SignupSteps       = 3
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// SignupForm carries the wizard state between steps. The password fields
// are never serialized into the session.
type SignupForm struct {
	Plan            string `json:"plan" form:"plan"`
	FirstName       string `json:"firstName" form:"firstName"`
	LastName        string `json:"lastName" form:"lastName"`
	Username        string `json:"username" form:"username"`
	Password        string `json:"-" form:"password"`
	ConfirmPassword string `json:"-" form:"confirmPassword"`
}

// NormalizeUsername lower-cases the username and drops characters outside
// the allowed set, as the form does while typing.
func NormalizeUsername(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateStep checks the fields owned by step 1 (plan), 2 (identity) or
// 3 (password).
func (f SignupForm) ValidateStep(step int) error {
	switch step {
	case 1:
		if _, err := models.ParseTier(f.Plan); err != nil {
			return ErrPlanRequired
		}
	case 2:
		if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" || f.Username == "" {
			return ErrSignupFields
		}
		if !usernamePattern.MatchString(f.Username) {
			return ErrInvalidUsername
		}
	case 3:
		if f.Password == "" || f.ConfirmPassword == "" {
			return ErrSignupFields
		}
		if len(f.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if f.Password != f.ConfirmPassword {
			return ErrPasswordMismatch
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	return nil
}

// Validate runs every step in order
func (f SignupForm) Validate() error {
	for step := 1; step <= SignupSteps; step++ {
		if err := f.ValidateStep(step); err != nil {
			return err
		}
	}
	return nil
}

// Address is the mailbox address the account would get
func (f SignupForm) Address() string {
	return f.Username + "@" + AddressDomain
}

// Tier is the chosen plan, essential when none is set
func (f SignupForm) Tier() models.AccountTier {
	tier, err := models.ParseTier(f.Plan)
	if err != nil {
		return models.TierEssential
	}
	return tier
}

// SignupSummary is what a completed wizard yields. Nothing is registered.
type SignupSummary struct {
	Address  string             `json:"address"`
	FullName string             `json:"fullName"`
	Tier     models.AccountTier `json:"tier"`
}

// Complete validates the whole form and returns its summary
func (f SignupForm) Complete() (SignupSummary, error) {
	if err := f.Validate(); err != nil {
		return SignupSummary{}, err
	}
	return SignupSummary{
		Address:  f.Address(),
		FullName: strings.TrimSpace(f.FirstName + " " + f.LastName),
		Tier:     f.Tier(),
	}, nil
}
