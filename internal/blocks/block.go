package blocks

import "github.com/google/uuid"

// Type is the closed set of block kinds the editor understands.
type Type string

const (
	TypeParagraph Type = "paragraph"
	TypeHeading1  Type = "heading1"
	TypeHeading2  Type = "heading2"
	TypeHeading3  Type = "heading3"
	TypeCode      Type = "code"
	TypeQuote     Type = "quote"
	TypeList      Type = "list"
)

var knownTypes = map[Type]struct{}{
	TypeParagraph: {},
	TypeHeading1:  {},
	TypeHeading2:  {},
	TypeHeading3:  {},
	TypeCode:      {},
	TypeQuote:     {},
	TypeList:      {},
}

// Valid reports whether t is one of the known block types.
func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Properties holds auxiliary block attributes. The converter never reads them.
type Properties map[string]string

// Block is one unit of structured document content.
type Block struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Content    string     `json:"content"`
	Properties Properties `json:"properties"`
}

// New creates a block with a fresh id and empty properties.
func New(t Type, content string) Block {
	return Block{
		ID:         newID(),
		Type:       t,
		Content:    content,
		Properties: Properties{},
	}
}

func newID() string {
	return "block_" + uuid.NewString()
}
