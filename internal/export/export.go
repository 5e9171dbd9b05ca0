// Package export renders debate transcripts as Markdown and HTML.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ShayCichocki/podium/internal/debate"
)

// Document is everything an export needs from a debate.
type Document struct {
	Topic   string
	Entries []debate.Entry
	Vote    *debate.Vote
	Scoring string
}

// FromRecord builds a Document from an archived or just-finished debate.
func FromRecord(rec debate.Record) Document {
	return Document{
		Topic:   rec.Topic,
		Entries: rec.Transcript,
		Vote:    rec.Vote,
		Scoring: rec.Scoring,
	}
}

// Markdown renders the transcript in the same form agents see it, followed
// by the argument scores when scoring ran.
func Markdown(doc Document) string {
	var sb strings.Builder
	sb.WriteString(debate.RenderTranscript(doc.Topic, doc.Entries))
	if doc.Scoring != "" {
		sb.WriteString("## Argument Scores\n\n")
		sb.WriteString(strings.TrimSpace(doc.Scoring))
		sb.WriteString("\n")
	}
	return sb.String()
}

var (
	mdOnce sync.Once
	md     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	mdOnce.Do(func() {
		md = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return md
}

// htmlSource lays the transcript out as headed Markdown. A bare
// "[PRO]: text" line would parse as a link reference definition.
func htmlSource(doc Document) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(doc.Topic)
	sb.WriteString("\n\n")
	for _, e := range doc.Entries {
		fmt.Fprintf(&sb, "**%s** _(%s)_\n\n%s\n\n", e.Speaker, e.Phase, e.Content)
	}
	if doc.Scoring != "" {
		sb.WriteString("## Argument Scores\n\n")
		sb.WriteString(strings.TrimSpace(doc.Scoring))
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML renders the transcript as a standalone page. Raw HTML in agent
// output is not passed through.
func HTML(doc Document) (string, error) {
	var body bytes.Buffer
	if err := markdownRenderer().Convert([]byte(htmlSource(doc)), &body); err != nil {
		return "", fmt.Errorf("render transcript html: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(html.EscapeString(doc.Topic))
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// FileName returns the save name for a topic: its first 30 characters with
// spaces replaced by underscores.
func FileName(topic string) string {
	runes := []rune(topic)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	name := strings.ReplaceAll(string(runes), " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	return "debate_" + name + ".md"
}

// Save writes the Markdown export into dir and returns the file path.
func Save(dir string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, FileName(doc.Topic))
	if err := os.WriteFile(path, []byte(Markdown(doc)), 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
