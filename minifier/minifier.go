package minifier

import (
	"bytes"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

const (
	MediaTypeHtml = "text/html"
	MediaTypeCss  = "text/css"
)

var m = minify.New()

func init() {
	m.AddFunc(MediaTypeCss, css.Minify)
}

// HtmlOptions mirrors the two knobs the site build uses.
// Everything else that could change how a page renders is kept.
type HtmlOptions struct {
	RemoveComments     bool
	CollapseWhitespace bool
}

// Html minifies HTML documents with fixed options.
// Inline <style> and <script> are left as they are.
type Html struct {
	m *minify.M
}

func NewHtml(opts HtmlOptions) Html {
	h := minify.New()
	h.Add(MediaTypeHtml, &html.Minifier{
		KeepComments:        !opts.RemoveComments,
		KeepWhitespace:      !opts.CollapseWhitespace,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})

	return Html{m: h}
}

func (h Html) Minify(htmlDoc []byte) ([]byte, error) {
	min := bytes.NewBuffer(nil)
	err := h.m.Minify(MediaTypeHtml, min, bytes.NewBuffer(htmlDoc))
	if err != nil {
		return nil, err
	}

	return min.Bytes(), nil
}

func MinifyHtml(htmlDoc []byte, opts HtmlOptions) ([]byte, error) {
	return NewHtml(opts).Minify(htmlDoc)
}

func MinifyCss(cssDoc []byte) ([]byte, error) {
	min := bytes.NewBuffer(nil)
	err := m.Minify(MediaTypeCss, min, bytes.NewBuffer(cssDoc))
	if err != nil {
		return nil, err
	}

	return min.Bytes(), nil
}
