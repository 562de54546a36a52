package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"blocknotes/internal/blocks"
	"blocknotes/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OpKind names a block edit.
type OpKind string

const (
	OpUpdate      OpKind = "update"
	OpInsertAfter OpKind = "insert_after"
	OpDelete      OpKind = "delete"
	OpChangeType  OpKind = "change_type"
	OpMove        OpKind = "move"
)

// Op is one block edit. BlockID is the target block (or the reference block
// for insert_after). Content is used by update, Type by insert_after and
// change_type, Index by move.
type Op struct {
	Kind    OpKind      `json:"op"`
	BlockID string      `json:"block_id"`
	Content string      `json:"content,omitempty"`
	Type    blocks.Type `json:"type,omitempty"`
	Index   int         `json:"index,omitempty"`
}

// EditorSession is the editing state of one open document.
type EditorSession struct {
	ID         string
	UserID     string
	DocumentID string

	mu       sync.Mutex
	mode     domain.EditorMode
	title    string
	markdown string
	seq      *blocks.Sequence

	lastUsed time.Time // guarded by EditorService.mu
}

// SessionView is a snapshot of an editor session for clients.
type SessionView struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Mode       domain.EditorMode `json:"mode"`
	Title      string            `json:"title"`
	Markdown   string            `json:"markdown"`
	Blocks     []blocks.Block    `json:"blocks,omitempty"`
}

func (es *EditorSession) viewLocked() SessionView {
	v := SessionView{
		ID:         es.ID,
		DocumentID: es.DocumentID,
		Mode:       es.mode,
		Title:      es.title,
		Markdown:   es.markdown,
	}
	if es.seq != nil {
		v.Blocks = es.seq.Blocks()
	}
	return v
}

// View returns the session's current state.
func (es *EditorSession) View() SessionView {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.viewLocked()
}

// EditorService holds open editing sessions. Every change is written
// through to the document immediately.
type EditorService struct {
	docs *DocumentService
	log  zerolog.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*EditorSession
}

func NewEditorService(docs *DocumentService, log zerolog.Logger) *EditorService {
	return &EditorService{
		docs:     docs,
		log:      log.With().Str("component", "editor").Logger(),
		now:      time.Now,
		sessions: make(map[string]*EditorSession),
	}
}

// Open starts a session on the user's document. In blocks mode the stored
// markdown is parsed into a new block sequence.
func (s *EditorService) Open(ctx context.Context, userID, docID string, mode domain.EditorMode) (*EditorSession, error) {
	if mode == "" {
		mode = domain.EditorModeBlocks
	}
	if mode != domain.EditorModeBlocks && mode != domain.EditorModeMarkdown {
		return nil, fmt.Errorf("open editor: %w: %q", ErrWrongMode, mode)
	}
	d, err := s.docs.GetDocument(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	es := &EditorSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: d.ID,
		mode:       mode,
		title:      d.Title,
		markdown:   d.MarkdownContent,
	}
	if mode == domain.EditorModeBlocks {
		es.seq = blocks.NewSequence(d.MarkdownContent)
	}

	s.mu.Lock()
	es.lastUsed = s.now()
	s.sessions[es.ID] = es
	s.mu.Unlock()
	s.log.Debug().Str("session_id", es.ID).Str("document_id", d.ID).Str("mode", string(mode)).Msg("editor opened")
	return es, nil
}

// Session returns an open session owned by userID.
func (s *EditorService) Session(userID, sessionID string) (*EditorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.sessions[sessionID]
	if !ok || es.UserID != userID {
		return nil, fmt.Errorf("editor session %s: %w", sessionID, domain.ErrNotFound)
	}
	es.lastUsed = s.now()
	return es, nil
}

// SwitchMode changes the editing mode. Entering blocks mode re-parses the
// current markdown, so block ids from an earlier blocks session are not kept.
func (s *EditorService) SwitchMode(ctx context.Context, userID, sessionID string, mode domain.EditorMode) (SessionView, error) {
	es, err := s.Session(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	switch mode {
	case domain.EditorModeBlocks:
		es.seq = blocks.NewSequence(es.markdown)
	case domain.EditorModeMarkdown:
		es.seq = nil
	default:
		return SessionView{}, fmt.Errorf("switch mode: %w: %q", ErrWrongMode, mode)
	}
	es.mode = mode
	return es.viewLocked(), nil
}

// Apply performs op on the session's block sequence and saves the
// re-serialized markdown. Ops naming an unknown block leave the document
// unchanged, as does deleting the only block. If the document changed
// outside the session, the session is reloaded and domain.ErrConflict is
// returned without applying op.
func (s *EditorService) Apply(ctx context.Context, userID, sessionID string, op Op) (SessionView, error) {
	es, err := s.Session(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.mode != domain.EditorModeBlocks || es.seq == nil {
		return SessionView{}, ErrWrongMode
	}

	switch op.Kind {
	case OpUpdate:
		es.seq.UpdateContent(op.BlockID, op.Content)
	case OpInsertAfter:
		t := op.Type
		if t == "" {
			t = blocks.TypeParagraph
		}
		if !t.Valid() {
			return SessionView{}, fmt.Errorf("%w: %q", ErrInvalidBlockType, op.Type)
		}
		es.seq.InsertAfter(op.BlockID, t)
	case OpDelete:
		es.seq.Delete(op.BlockID)
	case OpChangeType:
		if !op.Type.Valid() {
			return SessionView{}, fmt.Errorf("%w: %q", ErrInvalidBlockType, op.Type)
		}
		es.seq.ChangeType(op.BlockID, op.Type)
	case OpMove:
		es.seq.Move(op.BlockID, op.Index)
	default:
		return SessionView{}, fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
	}

	if err := s.saveLocked(ctx, es, es.seq.Markdown()); err != nil {
		return SessionView{}, err
	}
	return es.viewLocked(), nil
}

// WriteMarkdown replaces the body in markdown mode. A document changed
// outside the session is reloaded and reported as domain.ErrConflict.
func (s *EditorService) WriteMarkdown(ctx context.Context, userID, sessionID, markdown string) (SessionView, error) {
	es, err := s.Session(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.mode != domain.EditorModeMarkdown {
		return SessionView{}, ErrWrongMode
	}
	if err := s.saveLocked(ctx, es, markdown); err != nil {
		return SessionView{}, err
	}
	return es.viewLocked(), nil
}

// SetTitle renames the session's document.
func (s *EditorService) SetTitle(ctx context.Context, userID, sessionID, title string) (SessionView, error) {
	es, err := s.Session(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	d, err := s.docs.UpdateDocument(ctx, es.UserID, es.DocumentID, UpdateDocumentInput{Title: &title})
	if err != nil {
		return SessionView{}, err
	}
	es.title = d.Title
	return es.viewLocked(), nil
}

// Blocks returns the session's current blocks.
func (s *EditorService) Blocks(userID, sessionID string) ([]blocks.Block, error) {
	es, err := s.Session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.seq == nil {
		return nil, ErrWrongMode
	}
	return es.seq.Blocks(), nil
}

// Close forgets the session. Content is already saved.
func (s *EditorService) Close(userID, sessionID string) error {
	if _, err := s.Session(userID, sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// CloseDocument drops every session open on docID, used after deletion.
func (s *EditorService) CloseDocument(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, es := range s.sessions {
		if es.DocumentID == docID {
			delete(s.sessions, id)
		}
	}
}

// CloseUser drops every session owned by userID and reports how many.
func (s *EditorService) CloseUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, es := range s.sessions {
		if es.UserID == userID {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// CloseIdle drops sessions not used for maxIdle and reports how many.
func (s *EditorService) CloseIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, es := range s.sessions {
		if es.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.log.Info().Int("closed", n).Dur("max_idle", maxIdle).Msg("idle editor sessions closed")
	}
	return n
}

// SetClock replaces the time source used for idle tracking.
func (s *EditorService) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *EditorService) saveLocked(ctx context.Context, es *EditorSession, markdown string) error {
	base := es.markdown
	_, err := s.docs.UpdateDocument(ctx, es.UserID, es.DocumentID, UpdateDocumentInput{MarkdownContent: &markdown, BaseMarkdown: &base})
	if errors.Is(err, domain.ErrConflict) {
		if rerr := s.reloadLocked(ctx, es); rerr != nil {
			return fmt.Errorf("reload document: %w", rerr)
		}
		s.log.Info().Str("session_id", es.ID).Str("document_id", es.DocumentID).Msg("editor session was stale, reloaded")
		return fmt.Errorf("editor session %s: %w", es.ID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	es.markdown = markdown
	return nil
}

// reloadLocked replaces the session state with the stored document. Block
// ids are regenerated.
func (s *EditorService) reloadLocked(ctx context.Context, es *EditorSession) error {
	d, err := s.docs.GetDocument(ctx, es.UserID, es.DocumentID)
	if err != nil {
		return err
	}
	es.title = d.Title
	es.markdown = d.MarkdownContent
	if es.mode == domain.EditorModeBlocks {
		es.seq = blocks.NewSequence(d.MarkdownContent)
	}
	return nil
}
