package extract

import (
	"testing"

	"github.com/linkbrief/linkbrief/internal/models"
)

func TestExtract_BracketFormWinsOverPlainURL(t *testing.T) {
	msg := models.Message{Text: "<https://a.com|paper> see also https://b.com"}
	url, ok := Extract(msg)
	if !ok {
		t.Fatal("expected a url")
	}
	if url != "https://a.com" {
		t.Errorf("expected bracketed url to win, got %s", url)
	}
}

func TestExtract_BracketFormWithoutLabel(t *testing.T) {
	msg := models.Message{Text: "look at <https://example.com/paper>"}
	url, ok := Extract(msg)
	if !ok || url != "https://example.com/paper" {
		t.Errorf("expected https://example.com/paper, got %q (ok=%v)", url, ok)
	}
}

func TestExtract_PlainTextFirstURLOnly(t *testing.T) {
	msg := models.Message{Text: "see https://first.com and https://second.com"}
	url, ok := Extract(msg)
	if !ok || url != "https://first.com" {
		t.Errorf("expected first url, got %q (ok=%v)", url, ok)
	}
}

func TestExtract_StripsTrailingPunctuation(t *testing.T) {
	msg := models.Message{Text: "Check this: https://example.com/page."}
	url, ok := Extract(msg)
	if !ok || url != "https://example.com/page" {
		t.Errorf("expected trailing period stripped, got %q (ok=%v)", url, ok)
	}
}

func TestExtract_RichTextBlockLink(t *testing.T) {
	msg := models.Message{
		Text: "formatted message without inline url",
		Blocks: []models.Block{
			{
				Type: models.BlockTypeRichText,
				Elements: []models.RichTextElement{
					{
						Type: models.ElementTypeSection,
						Elements: []models.RichTextElement{
							{Type: "text"},
							{Type: models.ElementTypeLink, URL: "https://blocks.example.com"},
						},
					},
				},
			},
		},
	}
	url, ok := Extract(msg)
	if !ok || url != "https://blocks.example.com" {
		t.Errorf("expected block link url, got %q (ok=%v)", url, ok)
	}
}

func TestExtract_RichTextBlockWithEmptyText(t *testing.T) {
	msg := models.Message{
		Blocks: []models.Block{
			{
				Type: models.BlockTypeRichText,
				Elements: []models.RichTextElement{
					{Type: models.ElementTypeLink, URL: "https://only-in-blocks.example.com"},
				},
			},
		},
	}
	url, ok := Extract(msg)
	if !ok || url != "https://only-in-blocks.example.com" {
		t.Errorf("expected block-only url, got %q (ok=%v)", url, ok)
	}
}

func TestExtract_SectionBlockText(t *testing.T) {
	msg := models.Message{
		Blocks: []models.Block{
			{Type: models.BlockTypeSection, Text: &models.SectionText{Type: "mrkdwn", Text: "read https://section.example.com/doc, please"}},
		},
	}
	url, ok := Extract(msg)
	if !ok || url != "https://section.example.com/doc" {
		t.Errorf("expected section url with punctuation stripped, got %q (ok=%v)", url, ok)
	}
}

func TestExtract_TextWinsOverBlocks(t *testing.T) {
	msg := models.Message{
		Text: "inline https://text.example.com",
		Blocks: []models.Block{
			{
				Type:     models.BlockTypeRichText,
				Elements: []models.RichTextElement{{Type: models.ElementTypeLink, URL: "https://block.example.com"}},
			},
		},
	}
	url, _ := Extract(msg)
	if url != "https://text.example.com" {
		t.Errorf("expected text strategy to win over blocks, got %s", url)
	}
}

func TestExtract_NoURL(t *testing.T) {
	msg := models.Message{Text: "hello team"}
	if url, ok := Extract(msg); ok {
		t.Errorf("expected no url, got %s", url)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	msg := models.Message{Text: "<https://a.com|x> then https://b.com and https://c.com"}
	first, _ := Extract(msg)
	for i := 0; i < 10; i++ {
		got, _ := Extract(msg)
		if got != first {
			t.Fatalf("extraction not deterministic: %s vs %s", got, first)
		}
	}
}
