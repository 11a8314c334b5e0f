package models

import (
	"errors"
	"fmt"
	"strconv"
)

// AccountTier is the subscription level of an account.
type AccountTier string

const (
	TierEssential AccountTier = "essential"
	TierPro       AccountTier = "pro"
)

// ErrUnknownTier is returned by ParseTier for values outside the enum.
var ErrUnknownTier = errors.New("unknown account tier")

// ParseTier converts a raw string into an AccountTier.
func ParseTier(s string) (AccountTier, error) {
	switch AccountTier(s) {
	case TierEssential, TierPro:
		return AccountTier(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Language is a target language of the immersion feature.
type Language string

const (
	LangEnglish Language = "en"
	LangSpanish Language = "es"
	LangGerman  Language = "de"
	LangItalian Language = "it"
	LangDutch   Language = "nl"
)

// Languages lists the immersion languages in display order.
var Languages = []Language{LangEnglish, LangSpanish, LangGerman, LangItalian, LangDutch}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// RewindDelay is the send-cancellation window in seconds.
type RewindDelay string

const (
	Rewind10s RewindDelay = "10"
	Rewind30s RewindDelay = "30"
	Rewind60s RewindDelay = "60"
)

// RewindDelays lists the selectable delays.
var RewindDelays = []RewindDelay{Rewind10s, Rewind30s, Rewind60s}

// Valid reports whether d is one of the selectable delays.
func (d RewindDelay) Valid() bool {
	return d == Rewind10s || d == Rewind30s || d == Rewind60s
}

// ZenHours holds the start and end of the Zen Mode delivery window ("HH:MM").
type ZenHours [2]string

// Notifications holds the notification channel toggles.
type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	Sound bool `json:"sound"`
}

// UserSettings is the per-account settings record. The JSON shape is the
// persisted format and must stay flat.
type UserSettings struct {
	FullName             string        `json:"fullName"`
	EmailSignature       string        `json:"emailSignature"`
	AccountType          AccountTier   `json:"accountType"`
	ZenModeEnabled       bool          `json:"zenModeEnabled"`
	ZenModeActive        bool          `json:"zenModeActive"`
	ZenModeHours         ZenHours      `json:"zenModeHours"`
	PremiumShieldEnabled bool          `json:"premiumShieldEnabled"`
	ShieldPrice          string        `json:"shieldPrice"`
	ImmersionEnabled     bool          `json:"immersionEnabled"`
	TargetLanguage       Language      `json:"targetLanguage"`
	RewindEnabled        bool          `json:"rewindEnabled"`
	RewindDelay          RewindDelay   `json:"rewindDelay"`
	Notifications        Notifications `json:"notifications"`
}

// Fixed defaults shared by every tier.
const (
	DefaultZenStart    = "09:00"
	DefaultZenEnd      = "17:00"
	DefaultShieldPrice = "0.10"
)

// DefaultsFor returns the settings a new account of the given tier starts
// with. Essential accounts are pinned to Dutch immersion and a 10 second
// rewind window.
func DefaultsFor(tier AccountTier) UserSettings {
	delay := Rewind10s
	if tier == TierPro {
		delay = Rewind30s
	}

	return UserSettings{
		AccountType:          tier,
		ZenModeHours:         ZenHours{DefaultZenStart, DefaultZenEnd},
		PremiumShieldEnabled: false,
		ShieldPrice:          DefaultShieldPrice,
		TargetLanguage:       LangDutch,
		RewindDelay:          delay,
		Notifications: Notifications{
			Email: true,
			Push:  false,
			Sound: true,
		},
	}
}

// IsPro reports whether the settings belong to a pro account.
func (s UserSettings) IsPro() bool {
	return s.AccountType == TierPro
}

// Shield price bounds, in euros.
const (
	MinShieldPrice = 0.10
	MaxShieldPrice = 100.00
)

// ErrShieldPrice is returned for unparseable or out of range shield prices.
var ErrShieldPrice = errors.New("shield price must be between 0.10 and 100.00")

// ParseShieldPrice parses a decimal price string and checks its range.
func ParseShieldPrice(price string) (float64, error) {
	v, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrShieldPrice, price)
	}
	// Compare in cents so "0.10" is not rejected by float rounding.
	cents := int64(v*100 + 0.5)
	if cents < 10 || cents > 10000 {
		return 0, fmt.Errorf("%w: %q", ErrShieldPrice, price)
	}
	return v, nil
}

// ShieldMonthlyEstimate is the revenue estimate shown on the billing page:
// 30 paid messages a month at a 1% conversion of the price.
func ShieldMonthlyEstimate(price string) (float64, error) {
	v, err := ParseShieldPrice(price)
	if err != nil {
		return 0, err
	}
	return v * 30 * 0.01, nil
}

// ZenNextDelivery returns the hour at which held messages are next
// delivered, which is the end of the Zen window.
func ZenNextDelivery(s UserSettings) string {
	if s.ZenModeHours[1] == "" {
		return DefaultZenEnd
	}
	return s.ZenModeHours[1]
}
