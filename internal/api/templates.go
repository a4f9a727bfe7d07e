package api

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.UTC().Format("02.01.2006 15:04")
	},
	"paragraphs": paragraphs,
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
}

// paragraphs splits text on blank lines
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func renderNotFound(c *gin.Context, msg string) {
	c.HTML(http.StatusNotFound, "error", gin.H{
		"Title":   "Не найдено",
		"Status":  http.StatusNotFound,
		"Message": msg,
	})
}
