package school

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/scorebook/core"
)

// LoadState is what callers may observe of the last load.
type LoadState struct {
	Loading  bool      `json:"loading"`
	Loaded   bool      `json:"loaded"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
	err      error
}

// Err returns the error of the last load, if it failed.
func (ls LoadState) Err() error { return ls.err }

// Loader fetches the four collections from a Repository into a Store.
type Loader struct {
	repo   Repository
	store  *Store
	logger core.Logger

	mu      sync.Mutex
	loading bool
	err     error
}

func NewLoader(repo Repository, store *Store, logger core.Logger) *Loader {
	return &Loader{repo: repo, store: store, logger: logger}
}

// Load fetches all four collections concurrently. All requests are started;
// the first failure cancels the others and fails the whole batch, leaving the Store untouched.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	data, err := l.fetchAll(ctx)

	l.mu.Lock()
	l.loading = false
	l.err = err
	l.mu.Unlock()

	if err != nil {
		l.logger.Error("loading collections failed", err)
		return err
	}
	l.store.Replace(data)
	l.logger.Info("collections loaded", map[string]interface{}{
		CollectionStudents:      len(data.Students),
		CollectionSubjects:      len(data.Subjects),
		CollectionStudentScores: len(data.StudentScores),
		CollectionClasses:       len(data.Classes),
	})
	return nil
}

func (l *Loader) fetchAll(ctx context.Context) (Collections, error) {
	var data Collections
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.Students, err = l.repo.ListStudents(gctx)
		return wrapLoadError(CollectionStudents, err)
	})
	g.Go(func() (err error) {
		data.Subjects, err = l.repo.ListSubjects(gctx)
		return wrapLoadError(CollectionSubjects, err)
	})
	g.Go(func() (err error) {
		data.StudentScores, err = l.repo.ListStudentScores(gctx)
		return wrapLoadError(CollectionStudentScores, err)
	})
	g.Go(func() (err error) {
		data.Classes, err = l.repo.ListClasses(gctx)
		return wrapLoadError(CollectionClasses, err)
	})

	if err := g.Wait(); err != nil {
		return Collections{}, err
	}
	return data, nil
}

func wrapLoadError(collection string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{Collection: collection, Status: StatusCode(err), Err: err}
}

// State returns the current load state.
func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()

	loaded, at := l.store.Loaded()
	ls := LoadState{Loading: l.loading, Loaded: loaded, LoadedAt: at, err: l.err}
	if l.err != nil {
		ls.Error = l.err.Error()
	}
	return ls
}
