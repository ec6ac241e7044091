// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/joeycumines/go-eventloop"
)

// Selectors of the optional elements the shim interacts with.
const (
	SelectorLoadingScreen   = `.loading-screen`
	SelectorProgressFill    = `.progress-fill`
	SelectorLoadingText     = `.loading-text p`
	SelectorConnectionError = `.connection-error`
	SelectorHeavyAnimations = `.spinner, .pulse, .rotate`
)

const connectionErrorMarkup = `<div class="connection-error" style="position: fixed; top: 0; left: 0; width: 100%; height: 100%; background: rgba(0, 0, 0, 0.9); display: flex; justify-content: center; align-items: center; z-index: 10000">` +
	`<div class="error-content">` +
	`<h3>⚠️ Connection Error</h3>` +
	`<p>Unable to connect to the game server. Please check your internet connection and try again.</p>` +
	`<button onclick="location.reload()">Retry Connection</button>` +
	`</div>` +
	`</div>`

// DocumentOption configures a [Document].
type DocumentOption func(*documentOptions)

type documentOptions struct {
	confirm func(message string) bool
	reload  func()
}

// WithConfirm sets the handler for blocking yes/no prompts, which otherwise
// always decline.
func WithConfirm(confirm func(message string) bool) DocumentOption {
	return func(o *documentOptions) {
		o.confirm = confirm
	}
}

// WithReload sets the handler invoked when the page requests a reload.
func WithReload(reload func()) DocumentOption {
	return func(o *documentOptions) {
		o.reload = reload
	}
}

// Document models the page: its URL, its markup, and the window event
// target.
//
// Every element the shim touches is optional, and every mutator degrades to
// a no-op when its element is absent.
type Document struct {
	doc    *goquery.Document
	url    *url.URL
	window *eventloop.EventTarget
	opts   documentOptions
	mu     sync.Mutex
}

// NewDocument parses markup, as the page loaded from pageURL.
func NewDocument(pageURL string, markup io.Reader, opts ...DocumentOption) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("gameshim: invalid page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, fmt.Errorf("gameshim: failed to parse document: %w", err)
	}
	d := &Document{
		doc:    doc,
		url:    u,
		window: eventloop.NewEventTarget(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&d.opts)
		}
	}
	return d, nil
}

// URL returns a copy of the page URL.
func (d *Document) URL() *url.URL {
	u := *d.url
	return &u
}

// Query returns the parsed query string of the page URL.
func (d *Document) Query() url.Values {
	return d.url.Query()
}

// Window returns the target for window-level events.
func (d *Document) Window() *eventloop.EventTarget {
	return d.window
}

// DispatchEvent dispatches event on the window.
func (d *Document) DispatchEvent(event *eventloop.Event) bool {
	return d.window.DispatchEvent(event)
}

// Confirm prompts the user, returning true if they accepted.
func (d *Document) Confirm(message string) bool {
	if d.opts.confirm == nil {
		return false
	}
	return d.opts.confirm(message)
}

// Reload requests a page reload.
func (d *Document) Reload() {
	if d.opts.reload != nil {
		d.opts.reload()
	}
}

// HTML renders the current markup.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return goquery.OuterHtml(d.doc.Selection)
}

// Count returns the number of elements matching selector.
func (d *Document) Count(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).Length()
}

// Style returns the value of an inline style property of the first element
// matching selector.
func (d *Document) Style(selector, property string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	style, _ := d.doc.Find(selector).First().Attr(`style`)
	for _, decl := range parseStyle(style) {
		if decl[0] == property {
			return decl[1], true
		}
	}
	return ``, false
}

// ShowConnectionError appends the blocking connection error overlay to the
// body, offering a reload.
func (d *Document) ShowConnectionError() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find(`body`).AppendHtml(connectionErrorMarkup)
}

// RetryConnection performs the overlay's "Retry Connection" action,
// reloading the page. It returns false, doing nothing, if the overlay is not
// shown. The markup's onclick attribute only takes effect when the document
// is rendered by a browser.
func (d *Document) RetryConnection() bool {
	if d.Count(SelectorConnectionError) == 0 {
		return false
	}
	d.Reload()
	return true
}

// SetBodyStyleProperty sets an inline style property on the body.
func (d *Document) SetBodyStyleProperty(property, value string) {
	d.setStyle(`body`, property, value)
}

// PauseAnimations pauses the CSS animations of every element matching
// selector.
func (d *Document) PauseAnimations(selector string) int {
	return d.setStyle(selector, `animation-play-state`, `paused`)
}

// HasLoadingScreen reports whether both the loading screen container and
// its progress fill are present.
func (d *Document) HasLoadingScreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(SelectorLoadingScreen).Length() != 0 &&
		d.doc.Find(SelectorProgressFill).Length() != 0
}

// SetProgress sets the width of the progress fill, as a percentage.
func (d *Document) SetProgress(percent float64) {
	d.setStyle(SelectorProgressFill, `width`, strconv.FormatFloat(percent, 'f', -1, 64)+`%`)
}

// SetLoadingText replaces the text of the loading status node.
func (d *Document) SetLoadingText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find(SelectorLoadingText).SetText(text)
}

// FadeOutLoadingScreen starts the fade out transition.
func (d *Document) FadeOutLoadingScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find(SelectorLoadingScreen).AddClass(`fade-out`)
}

// HideLoadingScreen removes the loading screen from layout.
func (d *Document) HideLoadingScreen() {
	d.setStyle(SelectorLoadingScreen, `display`, `none`)
}

func (d *Document) setStyle(selector, property, value string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.doc.Find(selector)
	sel.Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr(`style`)
		s.SetAttr(`style`, setStyleProperty(style, property, value))
	})
	return sel.Length()
}

// parseStyle splits an inline style into ordered property/value pairs.
func parseStyle(style string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(style, `;`) {
		k, v, ok := strings.Cut(part, `:`)
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == `` {
			continue
		}
		decls = append(decls, [2]string{k, v})
	}
	return decls
}

func setStyleProperty(style, property, value string) string {
	decls := parseStyle(style)
	found := false
	for i := range decls {
		if decls[i][0] == property {
			decls[i][1] = value
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{property, value})
	}
	var b strings.Builder
	for i, decl := range decls {
		if i != 0 {
			b.WriteString(`; `)
		}
		b.WriteString(decl[0])
		b.WriteString(`: `)
		b.WriteString(decl[1])
	}
	return b.String()
}
