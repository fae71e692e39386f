package srptd

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var reuseFlagRe = regexp.MustCompile(`(?i)\[x\]\s*(?:Definitely|Likely)\s*reusable|reusable|should.*become.*skill.*\[x\]`)

const reuseContextRadius = 500

// extractCodeBlocks walks the markdown AST and returns every fenced code
// block with its language, the nearest preceding h3 heading, and a
// reusability flag derived from marker text within 500 bytes either side
// of the block.
func extractCodeBlocks(content string) []CodeBlock {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	source := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []CodeBlock
	var currentHeading *string

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 3 {
				if h := strings.TrimSpace(nodeText(node, source)); h != "" {
					currentHeading = strPtr(h)
				}
			}
		case *ast.FencedCodeBlock:
			code := fencedCode(node, source)
			if strings.TrimSpace(code) == "" {
				return ast.WalkContinue, nil
			}

			block := CodeBlock{
				Code:      strings.TrimSpace(code),
				Heading:   currentHeading,
				ReuseFlag: reuseFlagNearby(node, source),
			}
			if lang := string(node.Language(source)); lang != "" {
				block.Language = strPtr(lang)
			}
			blocks = append(blocks, block)
		}
		return ast.WalkContinue, nil
	})

	return blocks
}

// fencedCode joins the line segments of a fenced code block.
func fencedCode(node *ast.FencedCodeBlock, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// reuseFlagNearby checks for reusability markers in the text surrounding
// the code block.
func reuseFlagNearby(node *ast.FencedCodeBlock, source []byte) bool {
	lines := node.Lines()
	if lines.Len() == 0 {
		return false
	}

	start := lines.At(0).Start - reuseContextRadius
	if start < 0 {
		start = 0
	}
	end := lines.At(lines.Len()-1).Stop + reuseContextRadius
	if end > len(source) {
		end = len(source)
	}

	return reuseFlagRe.Match(source[start:end])
}

// nodeText collects the raw text of a node's inline children.
func nodeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			continue
		}
		sb.WriteString(nodeText(c, source))
	}
	return sb.String()
}

// MergeCodeBlocks concatenates block lists and drops duplicates by code
// content hash, keeping first occurrence order.
func MergeCodeBlocks(lists ...[]CodeBlock) []CodeBlock {
	seen := make(map[string]bool)
	merged := []CodeBlock{}
	for _, list := range lists {
		for _, b := range list {
			h := ContentHash(b.Code)
			if !seen[h] {
				seen[h] = true
				merged = append(merged, b)
			}
		}
	}
	return merged
}
