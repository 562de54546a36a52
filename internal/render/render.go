// Package render turns document markdown into HTML and parses imported files.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"blocknotes/internal/domain"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML with GitHub-flavoured extensions.
type Renderer struct {
	md   goldmark.Markdown
	page *template.Template
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
		page: template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// HTML renders markdown. Raw HTML in the source is omitted.
func (r *Renderer) HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

type pageData struct {
	Title       string
	Description string
	Icon        string
	CoverImage  string
	Heading     string
	Body        template.HTML
}

// PublicPage renders a complete HTML page for a published document.
func (r *Renderer) PublicPage(doc *domain.Document) ([]byte, error) {
	body, err := r.HTML(doc.MarkdownContent)
	if err != nil {
		return nil, err
	}
	title := doc.SEOTitle
	if title == "" {
		title = doc.Title
	}
	data := pageData{
		Title:       title,
		Description: doc.SEODescription,
		Icon:        doc.IconEmoji,
		CoverImage:  doc.CoverImageURL,
		Heading:     doc.Title,
		// goldmark escapes raw HTML unless html.WithUnsafe is set.
		Body: template.HTML(body),
	}
	var buf bytes.Buffer
	if err := r.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
<meta property="og:description" content="{{.Description}}">
{{- end}}
<meta property="og:title" content="{{.Title}}">
{{- if .CoverImage}}
<meta property="og:image" content="{{.CoverImage}}">
{{- end}}
</head>
<body>
<article>
{{- if .CoverImage}}
<img class="cover" src="{{.CoverImage}}" alt="">
{{- end}}
<h1>{{if .Icon}}{{.Icon}} {{end}}{{.Heading}}</h1>
{{.Body}}
</article>
</body>
</html>
`
