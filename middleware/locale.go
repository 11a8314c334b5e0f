package middleware

import (
	"klar/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.French, // default
	language.English,
})

// LocaleMiddleware detects and sets the user's locale: query parameter,
// then cookie, then Accept-Language. An explicit ?lang= is remembered in
// the cookie.
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := c.Query("lang")
		if utils.IsSupportedLang(lang) {
			c.Cookie(&fiber.Cookie{
				Name:  "lang",
				Value: lang,
				Path:  "/",
			})
		} else {
			lang = c.Cookies("lang")
		}

		if !utils.IsSupportedLang(lang) {
			lang = matchAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
		}

		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		utils.Log.Debug("Locale detected: %s for path: %s", lang, c.Path())

		return c.Next()
	}
}

func matchAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return utils.DefaultLang
	}
	tag, _, _ := localeMatcher.Match(tags...)
	base, _ := tag.Base()
	if utils.IsSupportedLang(base.String()) {
		return base.String()
	}
	return utils.DefaultLang
}
