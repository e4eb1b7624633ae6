package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
)

// NotionURIPrefix qualifies remote URIs for the Notion platform.
const NotionURIPrefix = "notion://"

// Notion adapts Notion pages to the Adapter interface. The mapping is
// deliberately line-level (headings, bullets, quotes, code fences,
// paragraphs); rich block conversion is out of scope.
type Notion struct {
	client *notionapi.Client
}

// NewNotion creates a Notion adapter authenticated with the given API token.
func NewNotion(token string) *Notion {
	return &Notion{client: notionapi.NewClient(notionapi.Token(token))}
}

// NotionURI builds a notion:// URI from a page id.
func NotionURI(pageID string) string {
	return NotionURIPrefix + pageID
}

// ParseNotionURI extracts the page id from a notion:// URI.
func ParseNotionURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, NotionURIPrefix) {
		return "", fmt.Errorf("not a notion URI: %s", uri)
	}
	id := strings.TrimPrefix(uri, NotionURIPrefix)
	if id == "" {
		return "", fmt.Errorf("empty page id in URI: %s", uri)
	}
	return id, nil
}

// Read fetches a page and its block children and returns them as a markdown
// document with the content fingerprint populated.
func (n *Notion) Read(ctx context.Context, uri string) (model.Document, error) {
	pageID, err := ParseNotionURI(uri)
	if err != nil {
		return model.Document{}, NewError("read", uri, err)
	}

	page, err := n.client.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return model.Document{}, NewError("read", uri, err)
	}

	blocks, err := n.fetchBlocks(ctx, pageID)
	if err != nil {
		return model.Document{}, NewError("read", uri, err)
	}

	content := blocksToMarkdown(blocks)

	return model.Document{
		Content: content,
		Metadata: model.DocumentMetadata{
			Title:      pageTitle(page),
			CreatedAt:  page.CreatedTime,
			ModifiedAt: page.LastEditedTime,
		},
		ContentHash: model.Fingerprint(content),
	}, nil
}

// Write replaces the page's block children with the document's content.
func (n *Notion) Write(ctx context.Context, uri string, doc model.Document) error {
	pageID, err := ParseNotionURI(uri)
	if err != nil {
		return NewError("write", uri, err)
	}

	existing, err := n.fetchBlocks(ctx, pageID)
	if err != nil {
		return NewError("write", uri, err)
	}

	for _, block := range existing {
		if _, err := n.client.Block.Delete(ctx, block.GetID()); err != nil {
			return NewError("write", uri, err)
		}
	}

	children := markdownToBlocks(doc.Content)
	if len(children) == 0 {
		return nil
	}

	_, err = n.client.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	})
	if err != nil {
		return NewError("write", uri, err)
	}

	logging.Debug("wrote notion page",
		logging.URI(uri),
		logging.Count(len(children)),
	)
	return nil
}

// CreatePage creates a new child page under parentID and returns its URI.
func (n *Notion) CreatePage(ctx context.Context, parentID, title string, doc model.Document) (string, error) {
	page, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Type:  notionapi.PropertyTypeTitle,
				Title: richText(title),
			},
		},
		Children: markdownToBlocks(doc.Content),
	})
	if err != nil {
		return "", NewError("create", NotionURI(parentID), err)
	}
	return NotionURI(string(page.ID)), nil
}

// Archive archives the addressed page. Notion has no hard delete through the
// API; archive is the unpair counterpart.
func (n *Notion) Archive(ctx context.Context, uri string) error {
	pageID, err := ParseNotionURI(uri)
	if err != nil {
		return NewError("delete", uri, err)
	}

	_, err = n.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Archived:   true,
		Properties: notionapi.Properties{},
	})
	if err != nil {
		return NewError("delete", uri, err)
	}
	return nil
}

func (n *Notion) fetchBlocks(ctx context.Context, pageID string) ([]notionapi.Block, error) {
	var blocks []notionapi.Block
	cursor := ""
	for {
		resp, err := n.client.Block.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{
			StartCursor: notionapi.Cursor(cursor),
			PageSize:    100,
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore {
			return blocks, nil
		}
		cursor = resp.NextCursor
	}
}

func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(tp.Title)
		}
	}
	return ""
}

// blocksToMarkdown renders supported block types as markdown. Consecutive
// list items stay adjacent; everything else is separated by a blank line.
func blocksToMarkdown(blocks []notionapi.Block) string {
	var parts []string
	var prevList bool

	appendPart := func(text string, isList bool) {
		if len(parts) > 0 {
			if isList && prevList {
				parts = append(parts, "\n")
			} else {
				parts = append(parts, "\n\n")
			}
		}
		parts = append(parts, text)
		prevList = isList
	}

	for _, block := range blocks {
		switch b := block.(type) {
		case *notionapi.ParagraphBlock:
			appendPart(plainText(b.Paragraph.RichText), false)
		case *notionapi.Heading1Block:
			appendPart("# "+plainText(b.Heading1.RichText), false)
		case *notionapi.Heading2Block:
			appendPart("## "+plainText(b.Heading2.RichText), false)
		case *notionapi.Heading3Block:
			appendPart("### "+plainText(b.Heading3.RichText), false)
		case *notionapi.BulletedListItemBlock:
			appendPart("- "+plainText(b.BulletedListItem.RichText), true)
		case *notionapi.NumberedListItemBlock:
			appendPart("1. "+plainText(b.NumberedListItem.RichText), true)
		case *notionapi.QuoteBlock:
			appendPart("> "+plainText(b.Quote.RichText), false)
		case *notionapi.CodeBlock:
			lang := b.Code.Language
			appendPart("```"+lang+"\n"+plainText(b.Code.RichText)+"\n```", false)
		default:
			// Unsupported block types are skipped rather than lossily
			// approximated.
		}
	}
	return strings.Join(parts, "")
}

// markdownToBlocks parses line-level markdown into Notion blocks.
func markdownToBlocks(content string) []notionapi.Block {
	var blocks []notionapi.Block
	lines := strings.Split(content, "\n")

	var paragraph []string
	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, paragraphBlock(strings.Join(paragraph, "\n")))
		paragraph = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimRight(line, " \t")

		switch {
		case trimmed == "":
			flushParagraph()

		case strings.HasPrefix(trimmed, "```"):
			flushParagraph()
			lang := strings.TrimPrefix(trimmed, "```")
			var code []string
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimRight(lines[i], " \t"), "```") {
					break
				}
				code = append(code, lines[i])
			}
			blocks = append(blocks, codeBlock(strings.Join(code, "\n"), lang))

		case strings.HasPrefix(trimmed, "### "):
			flushParagraph()
			blocks = append(blocks, headingBlock(strings.TrimPrefix(trimmed, "### "), 3))

		case strings.HasPrefix(trimmed, "## "):
			flushParagraph()
			blocks = append(blocks, headingBlock(strings.TrimPrefix(trimmed, "## "), 2))

		case strings.HasPrefix(trimmed, "# "):
			flushParagraph()
			blocks = append(blocks, headingBlock(strings.TrimPrefix(trimmed, "# "), 1))

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			blocks = append(blocks, bulletBlock(trimmed[2:]))

		case strings.HasPrefix(trimmed, "> "):
			flushParagraph()
			blocks = append(blocks, quoteBlock(strings.TrimPrefix(trimmed, "> ")))

		default:
			paragraph = append(paragraph, line)
		}
	}
	flushParagraph()

	return blocks
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectType("text"),
		Text: &notionapi.Text{Content: s},
	}}
}

func plainText(rt []notionapi.RichText) string {
	var sb strings.Builder
	for _, t := range rt {
		if t.PlainText != "" {
			sb.WriteString(t.PlainText)
		} else if t.Text != nil {
			sb.WriteString(t.Text.Content)
		}
	}
	return sb.String()
}

func paragraphBlock(text string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph:  notionapi.Paragraph{RichText: richText(text)},
	}
}

func headingBlock(text string, level int) notionapi.Block {
	switch level {
	case 1:
		return &notionapi.Heading1Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading1),
			Heading1:   notionapi.Heading{RichText: richText(text)},
		}
	case 2:
		return &notionapi.Heading2Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
			Heading2:   notionapi.Heading{RichText: richText(text)},
		}
	default:
		return &notionapi.Heading3Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading3),
			Heading3:   notionapi.Heading{RichText: richText(text)},
		}
	}
}

func bulletBlock(text string) notionapi.Block {
	return &notionapi.BulletedListItemBlock{
		BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
		BulletedListItem: notionapi.ListItem{RichText: richText(text)},
	}
}

func quoteBlock(text string) notionapi.Block {
	return &notionapi.QuoteBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeQuote),
		Quote:      notionapi.Quote{RichText: richText(text)},
	}
}

func codeBlock(text, lang string) notionapi.Block {
	if lang == "" {
		lang = "plain text"
	}
	return &notionapi.CodeBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCode),
		Code:       notionapi.Code{RichText: richText(text), Language: lang},
	}
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}
