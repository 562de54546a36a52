package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"blocknotes/internal/blocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConvertMarkdownToBlocks(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runConvert(nil, strings.NewReader("# Title\n- item"), &out))

	var got []blocks.Block
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, blocks.TypeHeading1, got[0].Type)
	assert.Equal(t, "Title", got[0].Content)
	assert.Equal(t, blocks.TypeList, got[1].Type)
}

func TestRunConvertReverse(t *testing.T) {
	in := `[{"id":"a","type":"quote","content":"wise"},{"id":"b","type":"paragraph","content":"plain"}]`
	var out bytes.Buffer
	require.NoError(t, runConvert([]string{"-reverse"}, strings.NewReader(in), &out))
	assert.Equal(t, "> wise\nplain\n", out.String())
}

func TestRunConvertRejectsBadJSON(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runConvert([]string{"-reverse"}, strings.NewReader("{"), &out))
}
