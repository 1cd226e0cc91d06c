package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/dbx"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/users"
	"github.com/google/uuid"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ---- users ----

type fakeUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User

	// err, when set, is returned by every call
	err error
	// afterGetByID runs after a snapshot was read, outside the lock
	afterGetByID func()
}

var _ users.Repository = (*fakeUsersRepo)(nil)

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		v := *u.RefreshToken
		c.RefreshToken = &v
	}
	if u.ResetToken != nil {
		v := *u.ResetToken
		c.ResetToken = &v
	}
	if u.ResetTokenExpires != nil {
		v := *u.ResetTokenExpires
		c.ResetTokenExpires = &v
	}
	return &c
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.byID[u.ID] = cloneUser(u)
	return u
}

// stored returns a snapshot of the row as it is now.
func (f *fakeUsersRepo) stored(id string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

func (f *fakeUsersRepo) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) update(id string, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.UserName == u.UserName || existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.IsActive = true
	u.CreatedAt = time.Now()
	f.byID[u.ID] = cloneUser(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, err := f.find(func(u *models.User) bool { return u.ID == id })
	if f.afterGetByID != nil {
		f.afterGetByID()
	}
	return u, err
}

func (f *fakeUsersRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.UserName == login || u.Email == login })
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.UserName == username })
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsersRepo) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ResetToken != nil && *u.ResetToken == token })
}

func (f *fakeUsersRepo) UpdateRefreshToken(_ context.Context, id string, token *string) error {
	return f.update(id, func(u *models.User) {
		if token == nil {
			u.RefreshToken = nil
			return
		}
		v := *token
		u.RefreshToken = &v
	})
}

func (f *fakeUsersRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	return f.update(id, func(u *models.User) {
		u.ResetToken = &token
		u.ResetTokenExpires = &expires
	})
}

func (f *fakeUsersRepo) ResetPassword(_ context.Context, id, hashedPassword string) error {
	return f.update(id, func(u *models.User) {
		u.HashedPassword = hashedPassword
		u.ResetToken = nil
		u.ResetTokenExpires = nil
	})
}

func (f *fakeUsersRepo) SetActive(_ context.Context, id string, active bool) error {
	return f.update(id, func(u *models.User) { u.IsActive = active })
}

func (f *fakeUsersRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsersRepo) sorted() []*models.User {
	list := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		list = append(list, cloneUser(u))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UserName < list[j].UserName })
	return list
}

func (f *fakeUsersRepo) List(_ context.Context, offset, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	list := f.sorted()
	if offset >= len(list) {
		return []*models.User{}, nil
	}
	end := min(offset+limit, len(list))
	return list[offset:end], nil
}

func (f *fakeUsersRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.byID), nil
}

// ---- notifications ----

type fakeNotificationsRepo struct {
	mu    sync.Mutex
	items []*models.Notification
	err   error
}

var _ notifications.Repository = (*fakeNotificationsRepo)(nil)

func (f *fakeNotificationsRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	c := *n
	f.items = append(f.items, &c)
	return n, nil
}

func (f *fakeNotificationsRepo) match(userID string, filter models.NotificationFilter) []*models.Notification {
	var out []*models.Notification
	for _, n := range f.items {
		if n.UserID != userID {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	return out
}

func (f *fakeNotificationsRepo) Get(_ context.Context, userID, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			c := *n
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeNotificationsRepo) List(_ context.Context, userID string, filter models.NotificationFilter, offset, limit int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := f.match(userID, filter)
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *fakeNotificationsRepo) Count(_ context.Context, userID string, filter models.NotificationFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.match(userID, filter)), nil
}

func (f *fakeNotificationsRepo) Update(_ context.Context, userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, n := range f.items {
		if n.ID != id || n.UserID != userID {
			continue
		}
		if status != nil {
			n.Status = *status
			if *status == models.NotificationRead && n.ReadAt == nil {
				now := time.Now()
				n.ReadAt = &now
			}
		}
		if data != nil {
			n.Data = data
		}
		c := *n
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeNotificationsRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	now := time.Now()
	for _, item := range f.items {
		if item.UserID == userID && item.Status == models.NotificationUnread {
			item.Status = models.NotificationRead
			item.ReadAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationsRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, n := range f.items {
		if n.ID == id && n.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeNotificationsRepo) forUser(userID string) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(userID, models.NotificationFilter{})
}

// ---- files ----

type fakeFilesRepo struct {
	mu        sync.Mutex
	items     map[string]*models.File
	createErr error
	err       error
}

var _ files.Repository = (*fakeFilesRepo)(nil)

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{items: map[string]*models.File{}}
}

func (f *fakeFilesRepo) Create(_ context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	file.ID = uuid.NewString()
	file.CreatedAt = time.Now()
	c := *file
	f.items[file.ID] = &c
	return file, nil
}

func (f *fakeFilesRepo) Get(_ context.Context, userID, id string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	file, ok := f.items[id]
	if !ok || file.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *file
	return &c, nil
}

func (f *fakeFilesRepo) ListByUser(_ context.Context, userID string) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.File
	for _, file := range f.items {
		if file.UserID == userID {
			c := *file
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeFilesRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	file, ok := f.items[id]
	if !ok || file.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

// ---- manager ----

type fakeRepoManager struct {
	u *fakeUsersRepo
	n *fakeNotificationsRepo
	f *fakeFilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), n: &fakeNotificationsRepo{}, f: newFakeFilesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Notifications(dbx.DBTX) notifications.Repository { return m.n }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository                 { return m.f }
