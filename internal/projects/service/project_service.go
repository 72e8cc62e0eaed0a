package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/logging"
	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
	"github.com/filmschedule/filmschedule-backend/internal/projects/repository"
	"github.com/filmschedule/filmschedule-backend/internal/projects/utils"
)

const (
	projectIDPrefix = "prj"
	copySuffix      = " (Copy)"
	maxCopyAttempts = 50
)

// ProjectService handles project-related business logic
type ProjectService struct {
	store     repository.Store
	layout    domain.Layout
	now       func() time.Time
	entityID  func() string
	projectID func() (string, error)
}

type Option func(*ProjectService)

// WithLayout sets the display defaults filled into saved projects.
func WithLayout(l domain.Layout) Option {
	return func(s *ProjectService) { s.layout = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ProjectService) { s.now = now }
}

// WithIDs replaces the project and nested entity id generators.
func WithIDs(projectID func() (string, error), entityID func() string) Option {
	return func(s *ProjectService) {
		s.projectID = projectID
		s.entityID = entityID
	}
}

// NewProjectService creates a new project service
func NewProjectService(store repository.Store, opts ...Option) *ProjectService {
	s := &ProjectService{
		store:    store,
		layout:   domain.DefaultLayout(),
		now:      time.Now,
		entityID: utils.NewEntityID,
		projectID: func() (string, error) {
			return utils.NewID(projectIDPrefix)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListResult groups project summaries by archive state.
type ListResult struct {
	Active   []domain.Summary `json:"active"`
	Archived []domain.Summary `json:"archived"`
}

// ToggleResult is the outcome of a manual archive toggle.
type ToggleResult struct {
	Archived bool
	Message  string
}

// Ping checks store connectivity
func (s *ProjectService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// List returns project summaries. Projects whose shoot days are all past are
// archived in the store as a side effect. Archived summaries are only
// returned when includeArchived is set.
func (s *ProjectService) List(ctx context.Context, includeArchived bool) (*ListResult, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	res := &ListResult{
		Active:   make([]domain.Summary, 0, len(projects)),
		Archived: make([]domain.Summary, 0),
	}

	now := s.now()
	for i := range projects {
		p := &projects[i]
		if _, err := s.reconcileArchived(ctx, p, now); err != nil {
			return nil, err
		}

		if p.Archived {
			if includeArchived {
				res.Archived = append(res.Archived, p.Summary())
			}
			continue
		}
		res.Active = append(res.Active, p.Summary())
	}

	return res, nil
}

// SweepArchived applies the date-based archive rule to every stored project
// and reports how many were newly archived.
func (s *ProjectService) SweepArchived(ctx context.Context) (int, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	flipped := 0
	for i := range projects {
		changed, err := s.reconcileArchived(ctx, &projects[i], now)
		if err != nil {
			return flipped, err
		}
		if changed {
			flipped++
		}
	}
	return flipped, nil
}

// Save upserts by exact name: an existing project with the same name is
// overwritten in place (id and created_at kept), otherwise a new one is created.
func (s *ProjectService) Save(ctx context.Context, in *domain.Project) (*domain.Project, error) {
	existing, err := s.store.FindByName(ctx, in.Name)
	switch {
	case err == nil:
		return s.overwrite(ctx, existing, in)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	created, err := s.create(ctx, in)
	if errors.Is(err, apperr.ErrConflict) {
		// lost a race with a concurrent save of the same name
		existing, ferr := s.store.FindByName(ctx, in.Name)
		if ferr != nil {
			return nil, ferr
		}
		return s.overwrite(ctx, existing, in)
	}
	return created, err
}

// Get returns the full project
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.store.Get(ctx, id)
}

// Update overwrites the project with the given id.
func (s *ProjectService) Update(ctx context.Context, id string, in *domain.Project) (*domain.Project, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.overwrite(ctx, existing, in)
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).WithField("project_id", id).Info("project deleted")
	return nil
}

// ToggleArchive flips the stored archived flag regardless of shoot dates.
func (s *ProjectService) ToggleArchive(ctx context.Context, id string) (*ToggleResult, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	archived := !p.Archived
	if err := s.store.SetArchived(ctx, id, archived); err != nil {
		return nil, err
	}

	msg := "Project unarchived"
	if archived {
		msg = "Project archived"
	}
	return &ToggleResult{Archived: archived, Message: msg}, nil
}

// Duplicate stores a deep copy of a project under a "(Copy)" name. The copy
// and all of its nested entities get fresh ids.
func (s *ProjectService) Duplicate(ctx context.Context, id string) (*domain.Project, error) {
	src, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cp := src.CloneWithNewIDs(s.entityID)
	cp.ID, err = s.projectID()
	if err != nil {
		return nil, apperr.Internal("failed to generate project id", err)
	}
	now := domain.FormatTimestamp(s.now())
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Archived = false

	for attempt := 1; attempt <= maxCopyAttempts; attempt++ {
		cp.Name = copyName(src.Name, attempt)
		err := s.store.Insert(ctx, cp)
		if err == nil {
			logging.FromContext(ctx).WithFields(map[string]interface{}{
				"project_id": cp.ID,
				"source_id":  src.ID,
			}).Info("project duplicated")
			return cp, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
	}

	return nil, apperr.Conflict(fmt.Sprintf("too many copies of %q", src.Name))
}

func (s *ProjectService) create(ctx context.Context, in *domain.Project) (*domain.Project, error) {
	id, err := s.projectID()
	if err != nil {
		return nil, apperr.Internal("failed to generate project id", err)
	}

	p := *in
	p.ID = id
	s.prepare(&p)
	now := domain.FormatTimestamp(s.now())
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.Insert(ctx, &p); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("project_id", p.ID).Info("project created")
	return &p, nil
}

func (s *ProjectService) overwrite(ctx context.Context, existing, in *domain.Project) (*domain.Project, error) {
	p := *in
	p.ID = existing.ID
	s.prepare(&p)

	now := domain.FormatTimestamp(s.now())
	p.CreatedAt = existing.CreatedAt
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.store.Replace(ctx, &p); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("project_id", p.ID).Info("project updated")
	return &p, nil
}

// prepare fills ids, defaults and the derived archive flag.
func (s *ProjectService) prepare(p *domain.Project) {
	p.Normalize(s.entityID)
	p.ApplyLayout(s.layout)
	p.Archived = domain.ShouldArchive(p.Days, s.now())
}

// reconcileArchived persists archived=true for a project whose days are all
// past. It never un-archives. Concurrent callers may both write; the write
// is idempotent.
func (s *ProjectService) reconcileArchived(ctx context.Context, p *domain.Project, now time.Time) (bool, error) {
	if p.Archived || !domain.ShouldArchive(p.Days, now) {
		return false, nil
	}
	if err := s.store.SetArchived(ctx, p.ID, true); err != nil {
		return false, err
	}
	p.Archived = true
	return true, nil
}

func copyName(name string, attempt int) string {
	if attempt <= 1 {
		return name + copySuffix
	}
	return fmt.Sprintf("%s (Copy %d)", name, attempt)
}
