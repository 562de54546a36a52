package blocks

// Sequence is the block list of one editing session. Every method either
// applies its change completely or leaves the sequence untouched, and the
// sequence never becomes empty.
type Sequence struct {
	blocks []Block
}

// NewSequence parses markdown into a fresh sequence.
func NewSequence(markdown string) *Sequence {
	return &Sequence{blocks: Parse(markdown)}
}

// Blocks returns a copy of the current blocks.
func (s *Sequence) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b
		out[i].Properties = cloneProperties(b.Properties)
	}
	return out
}

// Len returns the number of blocks.
func (s *Sequence) Len() int { return len(s.blocks) }

// Markdown serializes the current blocks.
func (s *Sequence) Markdown() string { return Serialize(s.blocks) }

func (s *Sequence) indexOf(id string) int {
	for i, b := range s.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// UpdateContent replaces the content of the block with the given id.
// It reports whether a block matched.
func (s *Sequence) UpdateContent(id, content string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.blocks[i].Content = content
	return true
}

// InsertAfter splices a new empty block of type t right after the block
// with id afterID and returns it. When afterID is unknown the lookup index
// is -1, so the block is inserted at the start of the sequence.
func (s *Sequence) InsertAfter(afterID string, t Type) Block {
	b := New(t, "")
	at := s.indexOf(afterID) + 1
	next := make([]Block, 0, len(s.blocks)+1)
	next = append(next, s.blocks[:at]...)
	next = append(next, b)
	next = append(next, s.blocks[at:]...)
	s.blocks = next
	return b
}

// Delete removes the block with the given id unless it is the last block
// left. It reports whether a block was removed.
func (s *Sequence) Delete(id string) bool {
	if len(s.blocks) <= 1 {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	next := make([]Block, 0, len(s.blocks)-1)
	next = append(next, s.blocks[:i]...)
	next = append(next, s.blocks[i+1:]...)
	s.blocks = next
	return true
}

// ChangeType retypes the block with the given id in place.
func (s *Sequence) ChangeType(id string, t Type) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.blocks[i].Type = t
	return true
}

// Move relocates the block with the given id to index to, clamped to the
// sequence bounds.
func (s *Sequence) Move(id string, to int) bool {
	from := s.indexOf(id)
	if from < 0 {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to > len(s.blocks)-1 {
		to = len(s.blocks) - 1
	}
	if to == from {
		return true
	}
	b := s.blocks[from]
	rest := make([]Block, 0, len(s.blocks))
	rest = append(rest, s.blocks[:from]...)
	rest = append(rest, s.blocks[from+1:]...)
	next := make([]Block, 0, len(s.blocks))
	next = append(next, rest[:to]...)
	next = append(next, b)
	next = append(next, rest[to:]...)
	s.blocks = next
	return true
}

func cloneProperties(p Properties) Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
