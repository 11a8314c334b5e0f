package models

import (
	"errors"
	"fmt"
	"time"
)

// SettingsPatch is a partial settings update. A nil field means no change.
// AccountType has no field: the tier never changes after creation.
type SettingsPatch struct {
	FullName             *string        `json:"fullName,omitempty"`
	EmailSignature       *string        `json:"emailSignature,omitempty"`
	ZenModeEnabled       *bool          `json:"zenModeEnabled,omitempty"`
	ZenModeActive        *bool          `json:"zenModeActive,omitempty"`
	ZenModeHours         *ZenHours      `json:"zenModeHours,omitempty"`
	PremiumShieldEnabled *bool          `json:"premiumShieldEnabled,omitempty"`
	ShieldPrice          *string        `json:"shieldPrice,omitempty"`
	ImmersionEnabled     *bool          `json:"immersionEnabled,omitempty"`
	TargetLanguage       *Language      `json:"targetLanguage,omitempty"`
	RewindEnabled        *bool          `json:"rewindEnabled,omitempty"`
	RewindDelay          *RewindDelay   `json:"rewindDelay,omitempty"`
	Notifications        *Notifications `json:"notifications,omitempty"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p == SettingsPatch{}
}

// Apply returns s with every non-nil field of p copied over it.
// Notifications are replaced as a whole.
func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	if p.FullName != nil {
		s.FullName = *p.FullName
	}
	if p.EmailSignature != nil {
		s.EmailSignature = *p.EmailSignature
	}
	if p.ZenModeEnabled != nil {
		s.ZenModeEnabled = *p.ZenModeEnabled
	}
	if p.ZenModeActive != nil {
		s.ZenModeActive = *p.ZenModeActive
	}
	if p.ZenModeHours != nil {
		s.ZenModeHours = *p.ZenModeHours
	}
	if p.PremiumShieldEnabled != nil {
		s.PremiumShieldEnabled = *p.PremiumShieldEnabled
	}
	if p.ShieldPrice != nil {
		s.ShieldPrice = *p.ShieldPrice
	}
	if p.ImmersionEnabled != nil {
		s.ImmersionEnabled = *p.ImmersionEnabled
	}
	if p.TargetLanguage != nil {
		s.TargetLanguage = *p.TargetLanguage
	}
	if p.RewindEnabled != nil {
		s.RewindEnabled = *p.RewindEnabled
	}
	if p.RewindDelay != nil {
		s.RewindDelay = *p.RewindDelay
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	return s
}

// Validation errors
var (
	ErrInvalidLanguage = errors.New("unsupported target language")
	ErrInvalidDelay    = errors.New("unsupported rewind delay")
	ErrInvalidHours    = errors.New("zen hours must be HH:MM")
)

// Validate checks the enum and range constraints of the fields set in p.
func (p SettingsPatch) Validate() error {
	if p.TargetLanguage != nil && !p.TargetLanguage.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, *p.TargetLanguage)
	}
	if p.RewindDelay != nil && !p.RewindDelay.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDelay, *p.RewindDelay)
	}
	if p.ZenModeHours != nil {
		for _, h := range p.ZenModeHours {
			if _, err := time.Parse("15:04", h); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidHours, h)
			}
		}
	}
	if p.ShieldPrice != nil {
		if _, err := ParseShieldPrice(*p.ShieldPrice); err != nil {
			return err
		}
	}
	return nil
}

// ErrProFeature is returned when an essential account sets a pro-only value.
var ErrProFeature = errors.New("feature requires a KLAR PRO account")

// CheckTier enforces the tier restrictions of the settings screens. The
// settings store itself never calls it; it accepts any write.
func (p SettingsPatch) CheckTier(tier AccountTier) error {
	if tier == TierPro {
		return nil
	}
	switch {
	case p.PremiumShieldEnabled != nil && *p.PremiumShieldEnabled:
		return fmt.Errorf("%w: premium shield", ErrProFeature)
	case p.ShieldPrice != nil:
		return fmt.Errorf("%w: shield price", ErrProFeature)
	case p.ZenModeHours != nil:
		return fmt.Errorf("%w: zen hours", ErrProFeature)
	case p.TargetLanguage != nil && *p.TargetLanguage != LangDutch:
		return fmt.Errorf("%w: target language", ErrProFeature)
	case p.RewindDelay != nil && *p.RewindDelay != Rewind10s:
		return fmt.Errorf("%w: rewind delay", ErrProFeature)
	}
	return nil
}
