// Package extract finds the candidate URL in a canonical message.
//
// Extraction is deterministic: a fixed strategy order is tried until one
// succeeds, so the same message always yields the same URL. At most one URL
// is returned per message.
package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/linkbrief/linkbrief/internal/models"
)

var (
	// bracketPattern matches Slack's angle-bracket link syntax:
	// <https://example.com> or <https://example.com|label>.
	bracketPattern = regexp.MustCompile(`<(https?://[^>]+)>`)

	// urlPattern matches a bare URL up to the next whitespace.
	urlPattern = regexp.MustCompile(`https?://\S+`)
)

// trailingPunct holds characters stripped from the end of a scanned URL.
// They are almost always sentence punctuation, not part of the URL.
const trailingPunct = ".,;:!?)"

// Extract returns the first URL found in the message, honoring the strategy
// precedence: angle-bracket link syntax, plain-text scan, rich text block
// link elements, then section block text. The second return value is false
// when the message contains no URL.
func Extract(msg models.Message) (string, bool) {
	text := rewriteBracketLinks(msg.Text)

	if url, ok := scanText(text); ok {
		slog.Debug("extract.Extract: url found in text", "id", msg.ID, "url", url)
		return url, true
	}
	if url, ok := scanRichTextBlocks(msg.Blocks); ok {
		slog.Debug("extract.Extract: url found in rich text block", "id", msg.ID, "url", url)
		return url, true
	}
	if url, ok := scanSectionBlocks(msg.Blocks); ok {
		slog.Debug("extract.Extract: url found in section block", "id", msg.ID, "url", url)
		return url, true
	}
	slog.Debug("extract.Extract: no url in message", "id", msg.ID)
	return "", false
}

// rewriteBracketLinks replaces Slack angle-bracket links with the bare URL.
// The label after "|" is dropped. Later strategies run over the rewritten
// text, so the bracketed URL always wins over any plain URL further on.
func rewriteBracketLinks(text string) string {
	return bracketPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(match, "<"), ">")
		if i := strings.IndexByte(inner, '|'); i >= 0 {
			inner = inner[:i]
		}
		return inner
	})
}

// scanText returns the first URL in the text with trailing sentence
// punctuation stripped.
func scanText(text string) (string, bool) {
	match := urlPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimRight(match, trailingPunct), true
}

// scanRichTextBlocks walks rich text blocks in order and returns the URL of
// the first link element. Traversal stops at the first match.
func scanRichTextBlocks(blocks []models.Block) (string, bool) {
	for _, block := range blocks {
		if block.Type != models.BlockTypeRichText {
			continue
		}
		if url, ok := scanElements(block.Elements); ok {
			return url, true
		}
	}
	return "", false
}

// scanElements searches an element tree depth-first for a link element.
func scanElements(elements []models.RichTextElement) (string, bool) {
	for _, el := range elements {
		if el.Type == models.ElementTypeLink && el.URL != "" {
			return el.URL, true
		}
		if url, ok := scanElements(el.Elements); ok {
			return url, true
		}
	}
	return "", false
}

// scanSectionBlocks scans the text of section blocks that mention "http"
// using the same plain-text scan as the message body.
func scanSectionBlocks(blocks []models.Block) (string, bool) {
	for _, block := range blocks {
		if block.Type != models.BlockTypeSection || block.Text == nil {
			continue
		}
		if !strings.Contains(block.Text.Text, "http") {
			continue
		}
		if url, ok := scanText(block.Text.Text); ok {
			return url, true
		}
	}
	return "", false
}
