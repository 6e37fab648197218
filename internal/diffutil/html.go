package diffutil

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderHTML renders c as a standalone HTML page. Unchanged lines further
// than contextLines from a change are folded into a single marker.
func RenderHTML(c Comparison, contextLines int) string {
	var body strings.Builder
	body.WriteString(`<pre class="diff-output">`)

	prevOrig, prevMod := 0, 0
	for _, l := range c.Context(contextLines) {
		if skipped := gap(prevOrig, prevMod, l); skipped > 0 {
			fmt.Fprintf(&body, `<div class="line foldable"><span class="line-content">%d unchanged lines hidden</span></div>`, skipped)
		}
		writeLine(&body, l)
		if l.Original > 0 {
			prevOrig = l.Original
		}
		if l.Modified > 0 {
			prevMod = l.Modified
		}
	}
	body.WriteString(`</pre>`)

	return fmt.Sprintf(page, html.EscapeString(c.Summary.String()), body.String())
}

// gap returns how many lines were folded between the previous rendered line
// and l.
func gap(prevOrig, prevMod int, l Line) int {
	switch {
	case l.Original > 0:
		return l.Original - prevOrig - 1
	case l.Modified > 0:
		return l.Modified - prevMod - 1
	default:
		return 0
	}
}

func writeLine(b *strings.Builder, l Line) {
	class, op := "diff-equal", " "
	switch l.Kind {
	case Changed:
		class, op = "diff-change", "~"
	case Inserted:
		class, op = "diff-insert", "+"
	case Deleted:
		class, op = "diff-delete", "-"
	}

	fmt.Fprintf(b, `<div class="line %s"><span class="line-num">%s</span><span class="line-num">%s</span><span class="line-op">%s</span><span class="line-content">`,
		class, number(l.Original), number(l.Modified), op)
	for _, s := range l.Segments {
		text := html.EscapeString(strings.TrimSuffix(s.Text, "\n"))
		if text == "" {
			continue
		}
		switch s.Type {
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(b, `<ins>%s</ins>`, text)
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(b, `<del>%s</del>`, text)
		default:
			b.WriteString(text)
		}
	}
	b.WriteString("</span></div>\n")
}

func number(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Clipboard Change Details</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; margin: 15px; background: #f8f9fa; color: #212529; }
h1, h2 { border-bottom: 1px solid #dee2e6; padding-bottom: 8px; color: #0d6efd; }
pre.summary { background: #e9ecef; border: 1px solid #ced4da; padding: 10px 15px; border-radius: 4px; }
pre.diff-output { font-family: Menlo, Consolas, "Liberation Mono", monospace; font-size: 0.9em; border: 1px solid #dee2e6; background: #fff; padding: 10px; border-radius: 4px; overflow-x: auto; }
.line { display: flex; min-height: 1.4em; }
.line-num { width: 35px; padding-right: 10px; text-align: right; color: #6c757d; user-select: none; flex-shrink: 0; }
.line-op { width: 15px; margin-right: 10px; text-align: center; font-weight: bold; color: #6c757d; user-select: none; flex-shrink: 0; }
.line-content { white-space: pre-wrap; word-break: break-all; flex-grow: 1; }
.line.diff-insert { background: #e6ffed; }
.line.diff-delete { background: #ffeef0; }
.line.diff-change { background: #fff8e1; }
ins { background: #acf2bd; text-decoration: none; }
del { background: #fdb8c0; }
.line.foldable { background: #e9ecef; color: #6c757d; font-style: italic; justify-content: center; }
</style>
</head>
<body>
<h1>Clipboard Change Details</h1>
<h2>Summary</h2>
<pre class="summary">%s</pre>
<h2>Detailed Diff</h2>
%s
</body>
</html>
`
