package report

import (
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/utils"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/glamour"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; color: #1f2933; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #cbd2d9; padding: 0.3rem 0.6rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<article class="dcf-report" data-run-id="%s" data-ticker="%s">
%s</article>
</body>
</html>
`

// HTML renders the valuation summary as a standalone HTML page.
func HTML(res *pipeline.Result) (string, error) {
	body, err := utils.RenderHTML(Markdown(res))
	if err != nil {
		return "", err
	}
	title := html.EscapeString(fmt.Sprintf("DCF Valuation: %s", res.Snapshot.Ticker))
	return fmt.Sprintf(pageTemplate, title, html.EscapeString(res.RunID), html.EscapeString(res.Snapshot.Ticker), body), nil
}

// Terminal renders Markdown for a terminal. style is a glamour standard style
// ("dark", "light", "notty", ...); empty picks one from the terminal background.
func Terminal(md string, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
