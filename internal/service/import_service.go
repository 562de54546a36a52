package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"blocknotes/internal/domain"
	"blocknotes/internal/render"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const importDebounce = 500 * time.Millisecond

// ImportResult describes one imported file.
type ImportResult struct {
	Path     string           `json:"path"`
	Created  bool             `json:"created"`
	Document *domain.Document `json:"document"`
}

// ImportService turns markdown files into documents owned by one account.
// Files are matched to existing documents by title.
type ImportService struct {
	users   domain.UserStore
	docs    *DocumentService
	emitter EventEmitter
	log     zerolog.Logger
	owner   string
	running runningJobsGuard

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

func NewImportService(users domain.UserStore, docs *DocumentService, emitter EventEmitter, log zerolog.Logger, ownerEmail string) *ImportService {
	return &ImportService{
		users:   users,
		docs:    docs,
		emitter: emitter,
		log:     log.With().Str("component", "import").Logger(),
		owner:   normalizeEmail(ownerEmail),
	}
}

// ImportFile reads a markdown file, applies its front matter and creates or
// updates the owner's document with the same title. The title falls back to
// the file name.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	owner, err := s.users.GetUserByEmail(ctx, s.owner)
	if err != nil {
		return nil, fmt.Errorf("import owner %q: %w", s.owner, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	meta, body, err := render.ParseFrontMatter(src)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	body = strings.TrimLeft(body, "\n")

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	existing, err := s.findByTitle(ctx, owner.ID, title)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Path: path}
	var doc *domain.Document
	if existing == nil {
		doc, err = s.docs.CreateDocument(ctx, owner.ID, CreateDocumentInput{
			Title:           title,
			MarkdownContent: body,
			IconEmoji:       meta.Icon,
		})
		res.Created = true
	} else {
		in := UpdateDocumentInput{MarkdownContent: &body}
		if meta.Icon != "" {
			in.IconEmoji = &meta.Icon
		}
		doc, err = s.docs.UpdateDocument(ctx, owner.ID, existing.ID, in)
	}
	if err != nil {
		return nil, err
	}

	if meta.SEOTitle != "" || meta.SEODescription != "" {
		in := UpdateDocumentInput{}
		if meta.SEOTitle != "" {
			in.SEOTitle = &meta.SEOTitle
		}
		if meta.SEODescription != "" {
			in.SEODescription = &meta.SEODescription
		}
		if doc, err = s.docs.UpdateDocument(ctx, owner.ID, doc.ID, in); err != nil {
			return nil, err
		}
	}
	if meta.Publish && !doc.IsPublished {
		pubTitle := meta.SEOTitle
		if doc, err = s.docs.Publish(ctx, owner.ID, doc.ID, PublishInput{Title: pubTitle, Description: meta.SEODescription}); err != nil {
			return nil, err
		}
	}

	res.Document = doc
	s.log.Info().Str("path", path).Str("document_id", doc.ID).Bool("created", res.Created).Msg("file imported")
	s.emitter.Emit(ctx, EventDocumentImported, res)
	return res, nil
}

func (s *ImportService) findByTitle(ctx context.Context, userID, title string) (*domain.Document, error) {
	docs, err := s.docs.ListDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].Title == title {
			return &docs[i], nil
		}
	}
	return nil, nil
}

// Watch imports every markdown file already in dir, then re-imports files
// as they are written. Bursts of events for one file are debounced.
func (s *ImportService) Watch(ctx context.Context, dir string) error {
	s.Stop()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("import dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create import dir: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(abs, "*.md"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if _, err := s.ImportFile(ctx, path); err != nil {
			s.log.Error().Err(err).Str("path", path).Msg("initial import failed")
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(abs); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", abs, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.watcher = watcher
	s.watchCancel = cancel
	s.watchDone = done
	s.mu.Unlock()

	go s.loop(watchCtx, watcher, done)
	s.log.Info().Str("dir", abs).Int("files", len(matches)).Msg("watching import dir")
	return nil
}

func (s *ImportService) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			path := event.Name
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(importDebounce, func() {
				s.importGuarded(ctx, path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (s *ImportService) importGuarded(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if !s.running.TryLock(path) {
		return
	}
	defer s.running.Unlock(path)
	if _, err := s.ImportFile(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error().Err(err).Str("path", path).Msg("import failed")
	}
}

// Stop ends the watch loop. It is safe to call when not watching.
func (s *ImportService) Stop() {
	s.mu.Lock()
	cancel, watcher, done := s.watchCancel, s.watcher, s.watchDone
	s.watchCancel, s.watcher, s.watchDone = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		watcher.Close()
	}
	if done != nil {
		<-done
	}
}

// WaitRunning blocks until in-flight imports finish or ctx is done.
func (s *ImportService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}
