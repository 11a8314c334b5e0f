// Package views embeds the HTML templates and builds the Fiber view engine.
package views

import (
	"embed"
	"net/http"
	"strings"

	"klar/utils"

	"github.com/gofiber/template/html/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed *.html layouts/*.html pages/*.html
var FS embed.FS

// New creates the template engine with the i18n helpers. Every helper takes
// the request localizer, passed to templates as .L.
func New() *html.Engine {
	engine := html.NewFileSystem(http.FS(FS), ".html")

	engine.AddFunc("t", func(l *i18n.Localizer, messageID string) string {
		return utils.T(l, messageID)
	})
	engine.AddFunc("tData", func(l *i18n.Localizer, messageID, key string, value interface{}) string {
		return utils.TWithData(l, messageID, map[string]interface{}{key: value})
	})
	engine.AddFunc("tPlural", func(l *i18n.Localizer, messageID string, count int) string {
		return utils.TPlural(l, messageID, count)
	})
	engine.AddFunc("lower", strings.ToLower)
	engine.AddFunc("upper", strings.ToUpper)

	return engine
}
