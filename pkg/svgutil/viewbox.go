// Package svgutil post-processes SVG markup produced by the tracing engine.
//
// It guarantees scaling-correct documents (EnsureViewBox) and optionally
// shrinks them through an external minifier (Optimizer). Both operations are
// safe on arbitrary input: malformed markup passes through unchanged.
package svgutil

import (
	"bytes"
	"fmt"
	"regexp"
)

var (
	svgOpenTag  = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	viewBoxAttr = regexp.MustCompile(`(?:^|[^-\w])viewBox\s*=`)

	// Integer or plain decimal dimensions, optionally suffixed with px.
	// Percentage or unit-bearing dimensions are intentionally not matched;
	// a document sized in percentages has no usable intrinsic size. The
	// attribute names must not match suffixes of hyphenated attributes such
	// as stroke-width, so a plain \b anchor is not enough.
	widthAttr  = regexp.MustCompile(`(?:^|[^-\w])width\s*=\s*"([0-9]+(?:\.[0-9]+)?)(?:px)?"`)
	heightAttr = regexp.MustCompile(`(?:^|[^-\w])height\s*=\s*"([0-9]+(?:\.[0-9]+)?)(?:px)?"`)
)

// EnsureViewBox makes sure the document's root element declares a viewBox.
//
// A root element that already carries one is returned unchanged, which makes
// the function idempotent. Otherwise the width and height attributes of the
// root element are copied into an injected viewBox="0 0 W H". Documents
// without a root <svg> element or without usable dimensions are returned
// unchanged; missing scaling metadata is not an error.
func EnsureViewBox(svg []byte) []byte {
	loc := svgOpenTag.FindIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	if viewBoxAttr.Match(tag) {
		return svg
	}

	wm := widthAttr.FindSubmatch(tag)
	hm := heightAttr.FindSubmatch(tag)
	if wm == nil || hm == nil {
		return svg
	}

	head := loc[0] + len("<svg")
	var buf bytes.Buffer
	buf.Grow(len(svg) + 32)
	buf.Write(svg[:head])
	fmt.Fprintf(&buf, ` viewBox="0 0 %s %s"`, wm[1], hm[1])
	buf.Write(svg[head:])
	return buf.Bytes()
}
