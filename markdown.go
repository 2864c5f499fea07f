package main

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	scriptTagPattern   = regexp.MustCompile(`(?is)<script.*?</script>`)
	dataImagePattern   = regexp.MustCompile(`(?i)^data:image/`)
	httpURLPattern     = regexp.MustCompile(`(?i)^https?://`)
	uploadPathPattern  = regexp.MustCompile(`(?i)^/uploads/`)
	unsafeLangPattern  = regexp.MustCompile(`[^a-z0-9#+.\-_]`)
	htmlEscapeReplacer = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
)

func escapeHTML(value string) string {
	return htmlEscapeReplacer.Replace(value)
}

// sanitizeImageSrc returns the source unchanged when it matches one of
// the three allowed forms (data URL with an image subtype, absolute
// http(s) URL, local upload path) and empty string otherwise. This keeps
// javascript: and friends out of rendered output.
func sanitizeImageSrc(src string) string {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return ""
	}
	if dataImagePattern.MatchString(trimmed) ||
		httpURLPattern.MatchString(trimmed) ||
		uploadPathPattern.MatchString(trimmed) {
		return trimmed
	}
	return ""
}

// blogHTMLRenderer overrides goldmark's rendering of fenced code blocks
// and images. It is stateless so a single engine can be shared across
// requests without locking.
type blogHTMLRenderer struct{}

func (r *blogHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
	reg.Register(ast.KindImage, r.renderImage)
}

// parseFenceInfo splits the first whitespace-separated token of a fence
// info string as language:filename. Both halves are optional.
func parseFenceInfo(node *ast.FencedCodeBlock, source []byte) (language, filename string) {
	if node.Info == nil {
		return "", ""
	}
	info := strings.TrimSpace(string(node.Info.Segment.Value(source)))
	if info == "" {
		return "", ""
	}
	token := strings.Fields(info)[0]
	parts := strings.SplitN(token, ":", 2)

	language = unsafeLangPattern.ReplaceAllString(strings.ToLower(parts[0]), "")
	if len(parts) == 2 {
		raw := parts[1]
		if len(raw) > 160 {
			raw = raw[:160]
		}
		filename = escapeHTML(raw)
	}
	return language, filename
}

func (r *blogHTMLRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	language, filename := parseFenceInfo(n, source)

	if !entering {
		if language == "" && filename == "" {
			_, _ = w.WriteString("</code></pre>\n")
		} else {
			_, _ = w.WriteString("</code></pre></div>\n")
		}
		return ast.WalkContinue, nil
	}

	if language != "" {
		_, _ = w.WriteString(`<div class="code-language">` + language + `</div>`)
	}
	if language != "" || filename != "" {
		_, _ = w.WriteString(`<div class="code-container">`)
	}
	if filename != "" {
		_, _ = w.WriteString(`<div class="code-filename" title="` + filename + `">` + filename + `</div>`)
	}

	switch {
	case language != "":
		_, _ = w.WriteString(`<pre class="code-block language-` + language + `"><code class="language-` + language + `">`)
	default:
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}

	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		_, _ = w.WriteString(escapeHTML(string(line.Value(source))))
	}
	return ast.WalkContinue, nil
}

func (r *blogHTMLRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	alt := string(n.Text(source))
	src := sanitizeImageSrc(string(n.Destination))
	if src == "" {
		// Disallowed source: drop the tag, keep the alt text readable.
		if alt != "" {
			_, _ = w.WriteString(escapeHTML(alt))
		}
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<img src="` + escapeHTML(src) + `" alt="` + escapeHTML(alt) + `"`)
	if n.Title != nil {
		_, _ = w.WriteString(` title="` + escapeHTML(string(n.Title)) + `"`)
	}
	_, _ = w.WriteString(` loading="lazy" />`)
	return ast.WalkSkipChildren, nil
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(&blogHTMLRenderer{}, 500)),
	),
)

// renderMarkdown converts trusted-author markdown into HTML safe to serve
// to visitors. Raw HTML passes through except for script blocks, which
// are stripped as a last line of defense.
func renderMarkdown(markdown string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		return escapeHTML(markdown)
	}
	return scriptTagPattern.ReplaceAllString(buf.String(), "")
}
