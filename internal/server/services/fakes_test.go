package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/dbx"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/projects"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/segments"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/users"
	"github.com/google/uuid"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for the three repositories. Error
// fields, when set, are returned by the matching operation.
type memStore struct {
	users    map[string]*models.User
	projects map[string]*models.Project
	segments map[string]*models.Segment
	seq      int

	createUserErr    error
	countErr         error
	createProjectErr error
	createBatchErr   error
	getProjectErr    error
	listProjectsErr  error
	deleteErr        error
	// vanishOnDelete simulates a concurrent delete between lookup and removal.
	vanishOnDelete bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		projects: map[string]*models.Project{},
		segments: map[string]*models.Segment{},
	}
}

func (m *memStore) addProject(owner string) *models.Project {
	m.seq++
	p := &models.Project{ID: uuid.NewString(), Name: fmt.Sprintf("p%d", m.seq), UserID: owner, CreatedAt: time.Unix(int64(m.seq), 0)}
	m.projects[p.ID] = p
	return p
}

func (m *memStore) addSegment(projectID, source string) *models.Segment {
	pos := 0
	for _, s := range m.segments {
		if s.ProjectID == projectID {
			pos++
		}
	}
	s := &models.Segment{ID: uuid.NewString(), ProjectID: projectID, Position: pos, Source: source}
	m.segments[s.ID] = s
	return s
}

func (m *memStore) segmentsOf(projectID string) []*models.Segment {
	var out []*models.Segment
	for _, s := range m.segments {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

type fakeUsersRepo struct{ m *memStore }

func (r fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.m.createUserErr != nil {
		return nil, r.m.createUserErr
	}
	for _, existing := range r.m.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	r.m.users[u.ID] = u
	return u, nil
}

func (r fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	for _, u := range r.m.users {
		if u.UserName == login {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.m.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	if r.m.countErr != nil {
		return 0, r.m.countErr
	}
	return int64(len(r.m.users)), nil
}

type fakeProjectsRepo struct{ m *memStore }

func (r fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if r.m.createProjectErr != nil {
		return nil, r.m.createProjectErr
	}
	r.m.seq++
	p.ID = uuid.NewString()
	p.CreatedAt = time.Unix(int64(r.m.seq), 0)
	r.m.projects[p.ID] = p
	return p, nil
}

func (r fakeProjectsRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if r.m.getProjectErr != nil {
		return nil, r.m.getProjectErr
	}
	if p, ok := r.m.projects[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (r fakeProjectsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	if r.m.listProjectsErr != nil {
		return nil, r.m.listProjectsErr
	}
	out := make([]*models.Project, 0)
	for _, p := range r.m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeProjectsRepo) Delete(ctx context.Context, id string) (int64, error) {
	if r.m.deleteErr != nil {
		return 0, r.m.deleteErr
	}
	if _, ok := r.m.projects[id]; !ok || r.m.vanishOnDelete {
		return 0, nil
	}
	delete(r.m.projects, id)
	return 1, nil
}

type fakeSegmentsRepo struct{ m *memStore }

func (r fakeSegmentsRepo) CreateBatch(ctx context.Context, projectID string, segs []*models.Segment) error {
	if r.m.createBatchErr != nil {
		return r.m.createBatchErr
	}
	for i, s := range segs {
		s.ID = uuid.NewString()
		s.ProjectID = projectID
		s.Position = i
		r.m.segments[s.ID] = s
	}
	return nil
}

func (r fakeSegmentsRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Segment, error) {
	out := r.m.segmentsOf(projectID)
	if out == nil {
		out = make([]*models.Segment, 0)
	}
	return out, nil
}

func (r fakeSegmentsRepo) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	if s, ok := r.m.segments[id]; ok {
		return s, nil
	}
	return nil, common.ErrorNotFound
}

func (r fakeSegmentsRepo) UpdateTranslation(ctx context.Context, id string, translation string) error {
	s, ok := r.m.segments[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.Translation = translation
	return nil
}

func (r fakeSegmentsRepo) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	for id, s := range r.m.segments {
		if s.ProjectID == projectID {
			delete(r.m.segments, id)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct{ m *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return fakeUsersRepo{f.m} }
func (f *fakeRepoManager) Projects(db dbx.DBTX) projects.Repository    { return fakeProjectsRepo{f.m} }
func (f *fakeRepoManager) Segments(db dbx.DBTX) segments.Repository    { return fakeSegmentsRepo{f.m} }

// fakeArchive records archive calls.
type fakeArchive struct {
	puts    map[string][]byte
	deleted []string
	putErr  error
	url     string
}

func (a *fakeArchive) Put(ctx context.Context, key, filename string, body []byte) error {
	if a.putErr != nil {
		return a.putErr
	}
	if a.puts == nil {
		a.puts = map[string][]byte{}
	}
	a.puts[key] = body
	return nil
}

func (a *fakeArchive) PresignGet(ctx context.Context, key string) (string, error) {
	return a.url + key, nil
}

func (a *fakeArchive) Delete(ctx context.Context, key string) error {
	a.deleted = append(a.deleted, key)
	return nil
}
