package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event describes one applied reconciliation, delivered to the OnEvent
// callback after the index has been updated.
type Event struct {
	Op    string `json:"event"` // add, change, unlink
	Scope Scope  `json:"scope"`
}

// WatcherOptions tunes the watcher.
type WatcherOptions struct {
	// Debounce is the settle window: a path's event only fires once writes
	// to it have paused this long, so a half-written save is never read.
	// Defaults to 200ms.
	Debounce time.Duration
	// OnEvent, when set, is invoked after each successfully applied mutation.
	OnEvent func(Event)
}

// Watcher subscribes to filesystem changes under <root>/themes and applies
// targeted mutations to the live index. Validation failures are logged and
// skipped: the node keeps its last-known-good state, because the server is
// already live and must keep serving through a bad edit.
type Watcher struct {
	root     string
	store    *Store
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onEvent  func(Event)

	mu      sync.Mutex
	pending map[string]*pendingChange

	queue chan change
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

type change struct {
	op   string
	path string
}

type pendingChange struct {
	timer *time.Timer
	op    string
}

// StartWatcher begins watching the content tree rooted at root and mutating
// store in response. Close releases the subscription.
func StartWatcher(root string, store *Store, opts WatcherOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w := &Watcher{
		root:     root,
		store:    store,
		fsw:      fsw,
		debounce: debounce,
		onEvent:  opts.OnEvent,
		pending:  make(map[string]*pendingChange),
		queue:    make(chan change, 64),
		done:     make(chan struct{}),
	}

	themesRoot := filepath.Join(root, themesDirName)
	if _, err := os.Stat(themesRoot); err == nil {
		if err := w.watchTree(themesRoot); err != nil {
			fsw.Close()
			return nil, err
		}
	} else {
		// No themes directory yet: watch the content root so its later
		// creation attaches the subtree.
		if err := fsw.Add(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.reconcileLoop()

	slog.Info("content watcher started", "dir", themesRoot, "debounce", debounce)
	return w, nil
}

// Close stops the watcher and releases the OS watch handles. In-flight
// reconciliations finish or are abandoned without touching the index.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.mu.Lock()
		for _, p := range w.pending {
			p.timer.Stop()
		}
		w.mu.Unlock()
	})
	w.wg.Wait()
	return err
}

// watchTree registers dir and every directory below it. fsnotify watches are
// not recursive, so the tree is walked once here and extended as directories
// appear.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("content watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleFsEvent(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.handleDirCreated(ev.Name)
			return
		}
		w.schedule("add", ev.Name)
	case ev.Op.Has(fsnotify.Write):
		w.schedule("change", ev.Name)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.handleRemoved(ev.Name)
	}
}

// handleDirCreated attaches watches to a directory that appeared under the
// tree. Only a subcategory-level directory drives reconciliation directly:
// its content files are enqueued as synthetic add events (a directory moved
// into place produces no per-file notifications). Theme- and category-level
// directories are watch-only; their file-level events arrive on their own.
func (w *Watcher) handleDirCreated(dir string) {
	if err := w.watchTree(dir); err != nil {
		slog.Warn("content watcher: cannot watch new directory", "dir", dir, "error", err)
	}
	if pathToScope(w.root, filepath.Join(dir, metaFileName)).Kind != ScopeSubcategoryMeta {
		return
	}
	for _, name := range []string{metaFileName, questionsFileName, flashcardsFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			w.schedule("add", path)
		}
	}
}

// handleRemoved deals with both file and directory removals. A removed
// directory cannot be stat'ed anymore, so an unclassifiable removed path is
// retried as a subcategory directory: the disappearance of its meta.yaml is
// what deletes the node.
func (w *Watcher) handleRemoved(path string) {
	if pathToScope(w.root, path).Kind != ScopeUnknown {
		w.schedule("unlink", path)
		return
	}
	metaPath := filepath.Join(path, metaFileName)
	if pathToScope(w.root, metaPath).Kind == ScopeSubcategoryMeta {
		w.schedule("unlink", metaPath)
	}
}

// schedule coalesces events per path: the reconciliation only runs once the
// path has been quiet for the debounce window.
func (w *Watcher) schedule(op, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.op = op
		p.timer.Reset(w.debounce)
		return
	}
	p := &pendingChange{op: op}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.flush(path)
	})
	w.pending[path] = p
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if !ok {
		return
	}
	select {
	case w.queue <- change{op: p.op, path: path}:
	case <-w.done:
	}
}

// reconcileLoop is the single consumer of debounced changes. One goroutine
// applying mutations in arrival order is what keeps same-scope updates
// serialized: an older read can never clobber a newer write.
func (w *Watcher) reconcileLoop() {
	defer w.wg.Done()
	for {
		select {
		case c := <-w.queue:
			w.reconcile(c.op, c.path)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reconcile(op, path string) {
	scope := pathToScope(w.root, path)
	if scope.Kind == ScopeUnknown {
		return
	}

	var applied bool
	var err error
	switch scope.Kind {
	case ScopeThemeMeta:
		applied, err = w.reloadThemeMeta(scope.Theme)
	case ScopeCategoryMeta:
		applied, err = w.reloadCategoryMeta(scope.Theme, scope.Category)
	case ScopeSubcategoryMeta:
		applied, err = w.reloadSubcategoryMeta(scope.Theme, scope.Category, scope.Subcategory)
	case ScopeQuestions:
		applied, err = w.reloadQuestions(scope.Theme, scope.Category, scope.Subcategory)
	case ScopeFlashcards:
		applied, err = w.reloadFlashcards(scope.Theme, scope.Category, scope.Subcategory)
	}
	if err != nil {
		// Keep serving the last-known-good node through a bad edit.
		slog.Warn("content reload skipped",
			"event", op,
			"kind", scope.Kind,
			"theme", scope.Theme,
			"category", scope.Category,
			"subcategory", scope.Subcategory,
			"error", err,
		)
		return
	}
	if !applied {
		// A racing parent deletion already removed the node; the index did
		// not change, so nothing is logged or broadcast.
		return
	}

	slog.Info("content reloaded",
		"event", op,
		"kind", scope.Kind,
		"theme", scope.Theme,
		"category", scope.Category,
		"subcategory", scope.Subcategory,
	)
	if w.onEvent != nil {
		w.onEvent(Event{Op: op, Scope: scope})
	}
}

// reloadThemeMeta re-reads a theme's metadata. A missing file deletes the
// theme wholesale, categories included. An update preserves the existing
// categories mapping: a meta edit never reloads children. The bool reports
// whether the index actually changed.
func (w *Watcher) reloadThemeMeta(theme string) (bool, error) {
	metaPath := filepath.Join(w.root, themesDirName, theme, metaFileName)
	raw, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		w.store.DeleteTheme(theme)
		return true, nil
	}
	if err != nil {
		return false, err
	}
	meta, err := ParseThemeMeta(raw)
	if err != nil {
		return false, err
	}

	categories := make(map[string]*CategoryIndex)
	if existing, ok := w.store.Theme(theme); ok {
		categories = existing.Categories
	}
	w.store.SetTheme(&ThemeIndex{Slug: theme, Meta: meta, Categories: categories})
	return true, nil
}

func (w *Watcher) reloadCategoryMeta(theme, category string) (bool, error) {
	metaPath := filepath.Join(w.root, themesDirName, theme, category, metaFileName)
	raw, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return w.store.DeleteCategory(theme, category), nil
	}
	if err != nil {
		return false, err
	}
	meta, err := ParseCategoryMeta(raw)
	if err != nil {
		return false, err
	}

	subs := make(map[string]*SubcategoryIndex)
	if t, ok := w.store.Theme(theme); ok {
		if existing, ok := t.Categories[category]; ok {
			subs = existing.Subcategories
		}
	}
	return w.store.SetCategory(theme, &CategoryIndex{Slug: category, Meta: meta, Subcategories: subs}), nil
}

func (w *Watcher) reloadSubcategoryMeta(theme, category, sub string) (bool, error) {
	metaPath := filepath.Join(w.root, themesDirName, theme, category, sub, metaFileName)
	raw, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return w.store.DeleteSubcategory(theme, category, sub), nil
	}
	if err != nil {
		return false, err
	}
	meta, err := ParseSubcategoryMeta(raw)
	if err != nil {
		return false, err
	}

	questions := []Question{}
	flashcards := []Flashcard{}
	if existing, ok := w.store.Subcategory(theme, category, sub); ok {
		questions = existing.Questions
		flashcards = existing.Flashcards
	}
	return w.store.SetSubcategory(theme, category, &SubcategoryIndex{
		Slug:       sub,
		Meta:       meta,
		Questions:  questions,
		Flashcards: flashcards,
	}), nil
}

// reloadQuestions replaces a subcategory's question sequence wholesale. The
// collection is never diffed; the freshly validated file wins. Reports false
// when the owning node is gone, which happens when a deletion raced this
// event.
func (w *Watcher) reloadQuestions(theme, category, sub string) (bool, error) {
	existing, ok := w.store.Subcategory(theme, category, sub)
	if !ok {
		return false, nil
	}
	questions, err := loadQuestionsFile(
		filepath.Join(w.root, themesDirName, theme, category, sub, questionsFileName))
	if err != nil {
		return false, err
	}
	next := *existing
	next.Questions = questions
	return w.store.SetSubcategory(theme, category, &next), nil
}

func (w *Watcher) reloadFlashcards(theme, category, sub string) (bool, error) {
	existing, ok := w.store.Subcategory(theme, category, sub)
	if !ok {
		return false, nil
	}
	flashcards, err := loadFlashcardsFile(
		filepath.Join(w.root, themesDirName, theme, category, sub, flashcardsFileName))
	if err != nil {
		return false, err
	}
	next := *existing
	next.Flashcards = flashcards
	return w.store.SetSubcategory(theme, category, &next), nil
}
