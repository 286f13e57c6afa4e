package api

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"retrodesk/pkg/content"
	"retrodesk/pkg/desktop"
	"retrodesk/pkg/router"
)

// Standalone document pages, so posts and projects have shareable URLs
// outside the desktop.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - retrodesk</title>
{{- with .Summary}}
<meta name="description" content="{{.}}">
{{- end}}
<link rel="stylesheet" href="/style.css">
</head>
<body class="page">
<article class="window page-window">
<header class="titlebar"><span class="title">{{.Title}}</span></header>
<div class="window-body doc">
{{- if .Placeholder}}
<p class="placeholder">{{.Placeholder}}</p>
{{- else}}
{{- if .Date}}
<p class="doc-meta">{{.Date}}{{with .ReadingTime}} &middot; {{.}}{{end}}</p>
{{- end}}
{{- with .Tags}}
<ul class="tags">{{range .}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{.Body}}
{{- end}}
</div>
</article>
<p class="back"><a href="/">Back to desktop</a></p>
</body>
</html>
`))

type pageData struct {
	Title       string
	Summary     string
	Date        string
	ReadingTime string
	Tags        []string
	// Body is rendered by content.Renderer, which escapes document text.
	Body        template.HTML
	Placeholder string
}

func newPageData(doc *content.Document) pageData {
	p := pageData{
		Title:   doc.Meta.Title,
		Summary: doc.Meta.Summary,
		Date:    doc.Meta.Date,
		Tags:    doc.Meta.Tags,
		Body:    template.HTML(doc.HTML),
	}
	if doc.Meta.ReadingTime != nil {
		p.ReadingTime = doc.Meta.ReadingTime.Text
	}
	if doc.RenderErr != nil {
		p.Placeholder = desktop.MsgRenderError
	}
	return p
}

type pageKind struct {
	typ content.Type
}

var (
	projectPages = pageKind{content.TypeProject}
	postPages    = pageKind{content.TypePost}
)

func (a *API) docPage(k pageKind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, err := a.desk.Index().Lookup(k.typ, router.Param(r, "slug"))
		if errors.Is(err, content.ErrNotFound) {
			a.renderPage(w, http.StatusNotFound, pageData{Title: "Not found", Placeholder: desktop.MsgNotFound})
			return
		}
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		if doc.Meta.Slug != router.Param(r, "slug") {
			http.Redirect(w, r, "/"+k.typ.Dir()+"/"+doc.Meta.Slug, http.StatusMovedPermanently)
			return
		}
		a.renderPage(w, pageStatus(doc), newPageData(doc))
	})
}

func (a *API) aboutPage(w http.ResponseWriter, r *http.Request) {
	doc, ok := a.desk.Index().About()
	if !ok {
		a.renderPage(w, http.StatusOK, pageData{Title: "About", Placeholder: desktop.MsgNoAbout})
		return
	}
	data := newPageData(doc)
	if data.Title == "" {
		data.Title = "About"
	}
	a.renderPage(w, pageStatus(doc), data)
}

func pageStatus(doc *content.Document) int {
	if doc.RenderErr != nil {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func (a *API) renderPage(w http.ResponseWriter, code int, data pageData) {
	var buf bytes.Buffer
	if err := a.pages.Execute(&buf, data); err != nil {
		a.logger.Error("render page", zap.String("title", data.Title), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
