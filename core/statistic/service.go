package statistic

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

var (
	// errors
	ErrNotLoaded = errors.New("statistics are not loaded yet")
)

// Service is the statistics screen: it loads the collections, projects views
// over them and runs edit sessions.
type Service struct {
	repo   school.Repository
	store  *school.Store
	loader *school.Loader
	editor *Editor
	labels core.Labels
	tag    language.Tag
	logger core.Logger
}

func NewService(repo school.Repository, conf *core.Config, logger core.Logger) *Service {
	store := school.NewStore()
	tag := ParseLocale(conf.Locale)
	return &Service{
		repo:   repo,
		store:  store,
		loader: school.NewLoader(repo, store, logger),
		editor: NewEditor(repo, store, logger, tag),
		labels: conf.Labels,
		tag:    tag,
		logger: logger,
	}
}

// Load (re)fetches every collection from the backend.
func (svc *Service) Load(ctx context.Context) error {
	return svc.loader.Load(ctx)
}

func (svc *Service) State() school.LoadState {
	return svc.loader.State()
}

func (svc *Service) snapshot() (school.Collections, error) {
	if loaded, _ := svc.store.Loaded(); !loaded {
		if err := svc.loader.State().Err(); err != nil {
			return school.Collections{}, err
		}
		return school.Collections{}, ErrNotLoaded
	}
	return svc.store.Snapshot(), nil
}

// Rows returns the aggregated rows of every student.
func (svc *Service) Rows() ([]Row, error) {
	c, err := svc.snapshot()
	if err != nil {
		return nil, err
	}
	return BuildRows(c, BuildIndex(c), svc.labels), nil
}

func (svc *Service) View(q Query) (View, error) {
	rows, err := svc.Rows()
	if err != nil {
		return View{}, err
	}
	return Project(rows, q), nil
}

func (svc *Service) ClassOptions() ([]ClassOption, error) {
	c, err := svc.snapshot()
	if err != nil {
		return nil, err
	}
	return ClassOptions(c.Classes), nil
}

func (svc *Service) Detail(studentID int64) (Detail, error) {
	c, err := svc.snapshot()
	if err != nil {
		return Detail{}, err
	}
	return BuildDetail(c, BuildIndex(c), studentID, svc.labels, svc.tag)
}

func (svc *Service) OpenEdit(studentID int64) (SessionSnapshot, error) {
	if _, err := svc.snapshot(); err != nil {
		return SessionSnapshot{}, err
	}
	sess, err := svc.editor.Open(studentID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (svc *Service) Edit(sessionID string) (SessionSnapshot, error) {
	sess, err := svc.editor.Session(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (svc *Service) StageRates(sessionID string, rates school.Rates) (SessionSnapshot, error) {
	sess, err := svc.editor.Session(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := sess.StageRates(rates); err != nil {
		return SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (svc *Service) StageScore(sessionID string, rowID int64, patch school.ScorePatch) (SessionSnapshot, error) {
	sess, err := svc.editor.Session(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := sess.StageScore(rowID, patch); err != nil {
		return SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (svc *Service) SaveEdit(ctx context.Context, sessionID string) (SaveResult, error) {
	sess, err := svc.editor.Session(sessionID)
	if err != nil {
		return SaveResult{}, err
	}
	return sess.Save(ctx)
}

func (svc *Service) CloseEdit(sessionID string) error {
	return svc.editor.Close(sessionID)
}

// SeedScores creates a zeroed score row for every subject the student has no row for.
// Rows created before a failure are kept in the cache.
func (svc *Service) SeedScores(ctx context.Context, studentID int64) ([]school.StudentScore, error) {
	c, err := svc.snapshot()
	if err != nil {
		return nil, err
	}
	if _, ok := svc.store.Student(studentID); !ok {
		return nil, ErrStudentNotFound
	}

	has := make(map[int64]bool)
	for _, sc := range BuildIndex(c).ScoresByStudent[studentID] {
		has[sc.SubjectID] = true
	}

	var missing []school.Subject
	for _, sub := range c.Subjects {
		if has[sub.ID] {
			continue
		}
		has[sub.ID] = true // duplicate subject ids
		missing = append(missing, sub)
	}

	results := make([]*school.StudentScore, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range missing {
		i, sub := i, sub
		g.Go(func() error {
			sc, err := svc.repo.CreateStudentScore(gctx, school.StudentScore{StudentID: studentID, SubjectID: sub.ID})
			if err != nil {
				return errors.Wrapf(err, "seeding subject %d", sub.ID)
			}
			results[i] = &sc
			return nil
		})
	}
	err = g.Wait()

	created := make([]school.StudentScore, 0, len(missing))
	for _, sc := range results {
		if sc != nil {
			created = append(created, *sc)
		}
	}
	svc.store.AddScores(created...)
	if err != nil {
		svc.logger.Error("seeding scores failed", map[string]interface{}{"student": studentID}, err)
		return created, err
	}
	svc.logger.Info("scores seeded", map[string]interface{}{"student": studentID, "rows": len(created)})
	return created, nil
}
