package blocks

import "strings"

const fence = "```"

// Parse converts markdown into a block sequence. It never fails: every input,
// including the empty string, yields at least one block.
//
// Lines are classified one at a time by their literal prefix. A fence line
// becomes an empty code block; the lines it would enclose are classified on
// their own.
func Parse(markdown string) []Block {
	lines := strings.Split(markdown, "\n")
	out := make([]Block, 0, len(lines))
	for _, line := range lines {
		out = append(out, parseLine(line))
	}
	if len(out) == 0 {
		return []Block{New(TypeParagraph, "")}
	}
	return out
}

func parseLine(line string) Block {
	switch {
	case strings.HasPrefix(line, "# "):
		return New(TypeHeading1, line[2:])
	case strings.HasPrefix(line, "## "):
		return New(TypeHeading2, line[3:])
	case strings.HasPrefix(line, "### "):
		return New(TypeHeading3, line[4:])
	case strings.HasPrefix(line, fence):
		return New(TypeCode, "")
	case strings.HasPrefix(line, "> "):
		return New(TypeQuote, line[2:])
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return New(TypeList, line[2:])
	default:
		return New(TypeParagraph, line)
	}
}

// Serialize renders blocks back to markdown, one block per line joined by a
// single newline. Code blocks are always wrapped in a fence.
func Serialize(blocks []Block) string {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = renderBlock(b)
	}
	return strings.Join(lines, "\n")
}

func renderBlock(b Block) string {
	switch b.Type {
	case TypeHeading1:
		return "# " + b.Content
	case TypeHeading2:
		return "## " + b.Content
	case TypeHeading3:
		return "### " + b.Content
	case TypeCode:
		return fence + "\n" + b.Content + "\n" + fence
	case TypeQuote:
		return "> " + b.Content
	case TypeList:
		return "- " + b.Content
	default:
		return b.Content
	}
}
