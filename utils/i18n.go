package utils

import (
	"klar/locales"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Supported interface languages. French is the product language.
var SupportedLangs = []string{"fr", "en"}

// DefaultLang is used when nothing better is known about the client
const DefaultLang = "fr"

var (
	// Bundle is the global translation bundle
	Bundle *i18n.Bundle
	// Localizer is the default localizer
	Localizer *i18n.Localizer
)

// InitI18n initializes the i18n system from the embedded catalogs
func InitI18n() error {
	Bundle = i18n.NewBundle(language.French)
	Bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, lang := range SupportedLangs {
		if _, err := Bundle.LoadMessageFileFS(locales.FS, "active."+lang+".toml"); err != nil {
			return err
		}
	}

	Localizer = i18n.NewLocalizer(Bundle, DefaultLang)

	Log.Info("i18n system initialized (%d languages)", len(SupportedLangs))
	return nil
}

// IsSupportedLang reports whether lang has a catalog
func IsSupportedLang(lang string) bool {
	for _, l := range SupportedLangs {
		if l == lang {
			return true
		}
	}
	return false
}

// GetLocalizer returns a localizer for the specified language
func GetLocalizer(lang string) *i18n.Localizer {
	if lang == "" {
		lang = DefaultLang
	}
	if Bundle == nil {
		if err := InitI18n(); err != nil {
			Log.Error("Failed to initialize i18n: %v", err)
		}
	}
	return i18n.NewLocalizer(Bundle, lang, DefaultLang)
}

// T translates a message ID
func T(localizer *i18n.Localizer, messageID string) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// TWithData translates a message ID with template data
func TWithData(localizer *i18n.Localizer, messageID string, data map[string]interface{}) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// TPlural translates a message ID with plural support
func TPlural(localizer *i18n.Localizer, messageID string, count int) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:   messageID,
		PluralCount: count,
		TemplateData: map[string]interface{}{
			"Count": count,
		},
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// LanguageName returns the name of the language code in the interface
// language, e.g. ("nl", "fr") -> "néerlandais".
func LanguageName(code, uiLang string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	ui, err := language.Parse(uiLang)
	if err != nil {
		ui = language.French
	}
	name := display.Languages(ui).Name(tag)
	if name == "" {
		return code
	}
	return name
}
