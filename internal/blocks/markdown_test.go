package blocks_test

import (
	"testing"

	"blocknotes/internal/blocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyDocument(t *testing.T) {
	got := blocks.Parse("")
	require.Len(t, got, 1)
	assert.Equal(t, blocks.TypeParagraph, got[0].Type)
	assert.Equal(t, "", got[0].Content)
	assert.NotEmpty(t, got[0].ID)
	assert.NotNil(t, got[0].Properties)
	assert.Empty(t, got[0].Properties)
}

func TestParse_Heading(t *testing.T) {
	got := blocks.Parse("# Title")
	require.Len(t, got, 1)
	assert.Equal(t, blocks.TypeHeading1, got[0].Type)
	assert.Equal(t, "Title", got[0].Content)
}

func TestParse_ListItemsKeepOrder(t *testing.T) {
	got := blocks.Parse("- a\n- b")
	require.Len(t, got, 2)
	assert.Equal(t, blocks.TypeList, got[0].Type)
	assert.Equal(t, "a", got[0].Content)
	assert.Equal(t, blocks.TypeList, got[1].Type)
	assert.Equal(t, "b", got[1].Content)
}

func TestParse_Classification(t *testing.T) {
	tests := []struct {
		line    string
		typ     blocks.Type
		content string
	}{
		{"# one", blocks.TypeHeading1, "one"},
		{"## two", blocks.TypeHeading2, "two"},
		{"### three", blocks.TypeHeading3, "three"},
		{"#### four", blocks.TypeParagraph, "#### four"},
		{"```go", blocks.TypeCode, ""},
		{"```", blocks.TypeCode, ""},
		{"> quoted", blocks.TypeQuote, "quoted"},
		{"- dash", blocks.TypeList, "dash"},
		{"* star", blocks.TypeList, "star"},
		{"#nospace", blocks.TypeParagraph, "#nospace"},
		{">nospace", blocks.TypeParagraph, ">nospace"},
		{"plain text", blocks.TypeParagraph, "plain text"},
		{"", blocks.TypeParagraph, ""},
		{"# ", blocks.TypeHeading1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := blocks.Parse(tt.line)
			require.Len(t, got, 1)
			assert.Equal(t, tt.typ, got[0].Type)
			assert.Equal(t, tt.content, got[0].Content)
		})
	}
}

func TestParse_IDsAreUniqueAndRegenerated(t *testing.T) {
	md := "# a\nb\n- c"
	first := blocks.Parse(md)
	second := blocks.Parse(md)

	seen := map[string]bool{}
	for _, b := range first {
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
	for i := range first {
		assert.NotEqual(t, first[i].ID, second[i].ID)
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	docs := []string{
		"",
		"# Title",
		"# Title\n\nSome paragraph\n## Sub\n### Deeper\n> quote\n- one\n- two",
		"line one\nline two\n\n\nline five",
		"- \n> \n# ",
	}
	for _, md := range docs {
		assert.Equal(t, md, blocks.Serialize(blocks.Parse(md)))
	}
}

func TestSerialize_StarListNormalisesToDash(t *testing.T) {
	assert.Equal(t, "- a\n- b", blocks.Serialize(blocks.Parse("* a\n- b")))
}

func TestSerialize_CodeFenceLosesBody(t *testing.T) {
	assert.Equal(t, "```\n\n```", blocks.Serialize(blocks.Parse("```")))
	assert.Equal(t, "```\n\n```", blocks.Serialize(blocks.Parse("```python")))

	// Each fence line is its own empty code block; the body line is a paragraph.
	got := blocks.Serialize(blocks.Parse("```\ncode\n```"))
	assert.Equal(t, "```\n\n```\ncode\n```\n\n```", got)
}

func TestSerialize_CodeBlockWithContent(t *testing.T) {
	b := blocks.New(blocks.TypeCode, "fmt.Println()")
	assert.Equal(t, "```\nfmt.Println()\n```", blocks.Serialize([]blocks.Block{b}))
}

func TestSerialize_UnknownTypeRendersAsParagraph(t *testing.T) {
	b := blocks.Block{ID: "x", Type: blocks.Type("image"), Content: "raw"}
	assert.Equal(t, "raw", blocks.Serialize([]blocks.Block{b}))
}

func TestSerialize_NoTrailingNewline(t *testing.T) {
	got := blocks.Serialize([]blocks.Block{
		blocks.New(blocks.TypeParagraph, "a"),
		blocks.New(blocks.TypeParagraph, "b"),
	})
	assert.Equal(t, "a\nb", got)
	assert.Equal(t, "", blocks.Serialize(nil))
}

func TestType_Valid(t *testing.T) {
	assert.True(t, blocks.TypeQuote.Valid())
	assert.False(t, blocks.Type("image").Valid())
	assert.False(t, blocks.Type("").Valid())
}
