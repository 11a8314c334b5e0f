package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchApplyOnlyTouchesSetFields(t *testing.T) {
	base := DefaultsFor(TierPro)
	patch := SettingsPatch{
		FullName:    Ptr("Marie Dubois"),
		RewindDelay: Ptr(Rewind60s),
	}

	got := patch.Apply(base)

	want := base
	want.FullName = "Marie Dubois"
	want.RewindDelay = Rewind60s
	assert.Equal(t, want, got)
	// base is a value, the original record is untouched
	assert.Empty(t, base.FullName)
}

func TestPatchApplyReplacesNotifications(t *testing.T) {
	base := DefaultsFor(TierEssential)
	got := SettingsPatch{Notifications: &Notifications{Push: true}}.Apply(base)

	assert.Equal(t, Notifications{Push: true}, got.Notifications)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, SettingsPatch{}.Empty())
	assert.False(t, SettingsPatch{ZenModeActive: Ptr(false)}.Empty())
}

func TestPatchValidate(t *testing.T) {
	assert.NoError(t, SettingsPatch{}.Validate())
	assert.NoError(t, SettingsPatch{
		TargetLanguage: Ptr(LangGerman),
		RewindDelay:    Ptr(Rewind30s),
		ZenModeHours:   &ZenHours{"08:00", "18:30"},
		ShieldPrice:    Ptr("1.50"),
	}.Validate())

	assert.ErrorIs(t, SettingsPatch{TargetLanguage: Ptr(Language("fr"))}.Validate(), ErrInvalidLanguage)
	assert.ErrorIs(t, SettingsPatch{RewindDelay: Ptr(RewindDelay("15"))}.Validate(), ErrInvalidDelay)
	assert.ErrorIs(t, SettingsPatch{ZenModeHours: &ZenHours{"9h", "17:00"}}.Validate(), ErrInvalidHours)
	assert.ErrorIs(t, SettingsPatch{ShieldPrice: Ptr("250")}.Validate(), ErrShieldPrice)
}

func TestPatchCheckTier(t *testing.T) {
	proOnly := []SettingsPatch{
		{PremiumShieldEnabled: Ptr(true)},
		{ShieldPrice: Ptr("2.00")},
		{ZenModeHours: &ZenHours{"10:00", "16:00"}},
		{TargetLanguage: Ptr(LangSpanish)},
		{RewindDelay: Ptr(Rewind60s)},
	}
	for _, p := range proOnly {
		assert.ErrorIs(t, p.CheckTier(TierEssential), ErrProFeature)
		assert.NoError(t, p.CheckTier(TierPro))
	}

	allowed := []SettingsPatch{
		{PremiumShieldEnabled: Ptr(false)},
		{TargetLanguage: Ptr(LangDutch)},
		{RewindDelay: Ptr(Rewind10s)},
		{ZenModeEnabled: Ptr(true), ImmersionEnabled: Ptr(true), RewindEnabled: Ptr(true)},
	}
	for _, p := range allowed {
		assert.NoError(t, p.CheckTier(TierEssential))
	}
}
