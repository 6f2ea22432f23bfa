package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/proleague/league-loadtest/internal/loadtest"
)

// timestampLayout is an ISO-8601 UTC timestamp safe for file names.
const timestampLayout = "2006-01-02T15-04-05"

// Report is the rendered summary of one run.
type Report struct {
	Name        string
	GeneratedAt time.Time
	Text        string
	HTML        []byte
}

// New renders the text and HTML summaries of result.
func New(result loadtest.LoadTestResult, generatedAt time.Time) (*Report, error) {
	text := RenderText(result)
	html, err := RenderHTML(result.Name, text, generatedAt)
	if err != nil {
		return nil, err
	}
	return &Report{
		Name:        result.Name,
		GeneratedAt: generatedAt,
		Text:        text,
		HTML:        html,
	}, nil
}

// BaseName is the file name of the report without extension.
func (r *Report) BaseName() string {
	return r.Name + "-" + r.GeneratedAt.UTC().Format(timestampLayout)
}

// Write stores the report as {name}-{timestamp}.txt and .html under dir,
// creating dir when needed, and returns the paths written.
func (r *Report) Write(dir string) (textPath, htmlPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	textPath = filepath.Join(dir, r.BaseName()+".txt")
	if err := os.WriteFile(textPath, []byte(r.Text), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write text report: %w", err)
	}

	htmlPath = filepath.Join(dir, r.BaseName()+".html")
	if err := os.WriteFile(htmlPath, r.HTML, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write HTML report: %w", err)
	}

	return textPath, htmlPath, nil
}
