package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/aishitdharwal/ai-agent/research"
)

var formats = []string{"text", "markdown", "html", "json"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	bannerStyle  = lipgloss.NewStyle().Bold(true).Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

func validFormat(f string) error {
	for _, ok := range formats {
		if f == ok {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", f, strings.Join(formats, ", "))
}

// resultMarkdown renders a stateful result as a markdown report.
func resultMarkdown(res *research.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Research: %s\n\n", res.Topic)

	sb.WriteString("## Search Queries\n\n")
	for i, q := range res.SearchQueries {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}

	fmt.Fprintf(&sb, "\n_Results analyzed: %d_\n\n", res.NumResults)

	sb.WriteString("## Key Findings\n\n")
	for _, f := range res.KeyFindings {
		fmt.Fprintf(&sb, "- %s\n", f)
	}

	sb.WriteString("\n## Summary\n\n")
	sb.WriteString(strings.TrimSpace(res.Summary))
	sb.WriteString("\n")
	return sb.String()
}

func naiveMarkdown(res *research.NaiveResult) string {
	return fmt.Sprintf("# Research: %s\n\n%s\n", res.Topic, strings.TrimSpace(res.Output))
}

// markdownToHTML renders markdown and sanitizes the result.
func markdownToHTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	opts := html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank}
	out := markdown.Render(doc, html.NewRenderer(opts))

	return string(bluemonday.UGCPolicy().SanitizeBytes(out))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResult(w io.Writer, format string, res *research.Result) error {
	switch format {
	case "json":
		return writeJSON(w, res)
	case "markdown":
		_, err := io.WriteString(w, resultMarkdown(res))
		return err
	case "html":
		_, err := io.WriteString(w, markdownToHTML(resultMarkdown(res)))
		return err
	}

	fmt.Fprintln(w, titleStyle.Render("Research: "+res.Topic))
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Search Queries"))
	for i, q := range res.SearchQueries {
		fmt.Fprintf(w, "  %d. %s\n", i+1, q)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Results analyzed: %d", res.NumResults)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Key Findings"))
	for i, f := range res.KeyFindings {
		fmt.Fprintf(w, "  %d. %s\n", i+1, f)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Summary"))
	fmt.Fprintln(w, strings.TrimSpace(res.Summary))
	return nil
}

func renderNaive(w io.Writer, format string, res *research.NaiveResult) error {
	switch format {
	case "json":
		return writeJSON(w, res)
	case "markdown":
		_, err := io.WriteString(w, naiveMarkdown(res))
		return err
	case "html":
		_, err := io.WriteString(w, markdownToHTML(naiveMarkdown(res)))
		return err
	}

	fmt.Fprintln(w, titleStyle.Render("Research: "+res.Topic))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimSpace(res.Output))
	return nil
}
