package http

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/upload"
)

type fakeAccounts struct {
	users    map[domain.UserID]dto.UserProjection
	emails   map[string]bool
	verify   map[string]bool
	reset    map[string]bool
	login    *dto.LoginResult
	err      error
	updated  []domain.UserID
	deleted  []domain.UserID
	resetFor []string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		users:  map[domain.UserID]dto.UserProjection{},
		emails: map[string]bool{},
		verify: map[string]bool{},
		reset:  map[string]bool{},
	}
}

func (f *fakeAccounts) add(id domain.UserID, email string, role domain.Role) {
	f.users[id] = dto.UserProjection{ID: id.String(), Email: email, Name: "Test User", Role: role}
	f.emails[email] = true
}

func (f *fakeAccounts) Register(_ context.Context, r dto.RegisterRequest) (*dto.UserProjection, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.emails[r.Email] {
		return nil, domain.ErrDuplicateEmail
	}
	f.emails[r.Email] = true
	return &dto.UserProjection{ID: "00000000-0000-0000-0000-000000000001", Email: r.Email, Name: r.Name, Role: domain.RoleUser}, nil
}

func (f *fakeAccounts) Authenticate(context.Context, string, string) (*dto.LoginResult, error) {
	return f.login, f.err
}

func (f *fakeAccounts) GetAll(context.Context) ([]dto.UserProjection, error) {
	out := make([]dto.UserProjection, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, f.err
}

func (f *fakeAccounts) GetOne(_ context.Context, id domain.UserID) (*dto.UserProjection, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeAccounts) Update(_ context.Context, id domain.UserID, patch dto.UpdateUserRequest, requesterID domain.UserID, role domain.Role) (*dto.UserProjection, error) {
	if id != requesterID && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	f.users[id] = u
	f.updated = append(f.updated, id)
	return &u, nil
}

func (f *fakeAccounts) Delete(_ context.Context, id domain.UserID, role domain.Role) (*dto.UserProjection, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return &u, nil
}

func (f *fakeAccounts) ResetPassword(_ context.Context, email string) error {
	if !f.emails[email] {
		return domain.ErrUserNotFound
	}
	f.resetFor = append(f.resetFor, email)
	return nil
}

func (f *fakeAccounts) ConfirmPasswordReset(_ context.Context, token, _ string) (bool, error) {
	ok := f.reset[token]
	delete(f.reset, token)
	return ok, f.err
}

func (f *fakeAccounts) VerifyEmail(_ context.Context, token string) (bool, error) {
	return f.verify[token], f.err
}

type fakePosts struct {
	created []domain.Post
	err     error
}

func (f *fakePosts) Create(_ context.Context, authorID domain.UserID, r dto.CreatePostRequest) (*domain.Post, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	p := domain.Post{Title: r.Title, Content: r.Content, Published: r.Published, AuthorID: authorID}
	f.created = append(f.created, p)
	return &p, nil
}

func (f *fakePosts) List(context.Context) ([]domain.Post, error) { return f.created, f.err }

func (f *fakePosts) Get(_ context.Context, id domain.PostID) (*domain.Post, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, f.err
}

type notifyCall struct {
	userID    *domain.UserID
	message   string
	alsoEmail bool
}

type fakeNotifications struct {
	calls     []notifyCall
	page      int
	pageSize  int
	pref      *bool
	missingID domain.NotificationID
}

func (f *fakeNotifications) NotifyUser(_ context.Context, userID domain.UserID, message string, alsoEmail bool) (*domain.Notification, error) {
	f.calls = append(f.calls, notifyCall{userID: &userID, message: message, alsoEmail: alsoEmail})
	return &domain.Notification{UserID: &userID, Message: message}, nil
}

func (f *fakeNotifications) NotifyAll(_ context.Context, message string, alsoEmail bool) (*domain.Notification, error) {
	f.calls = append(f.calls, notifyCall{message: message, alsoEmail: alsoEmail})
	return &domain.Notification{Message: message}, nil
}

func (f *fakeNotifications) ListForUser(_ context.Context, _ domain.UserID, page, pageSize int) ([]domain.Notification, error) {
	f.page, f.pageSize = page, pageSize
	return nil, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id domain.NotificationID) error {
	if id == f.missingID {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (f *fakeNotifications) Delete(_ context.Context, id domain.NotificationID) error {
	if id == f.missingID {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (f *fakeNotifications) SetEmailPreference(_ context.Context, _ domain.UserID, enabled bool) error {
	f.pref = &enabled
	return nil
}

type fakeRelay struct {
	owner string
	res   *upload.Result
	err   error
}

func (f *fakeRelay) Handle(_ context.Context, _ *http.Request, ownerID string) (*upload.Result, error) {
	f.owner = ownerID
	return f.res, f.err
}

func (f *fakeRelay) MaxBytes() int64 { return upload.DefaultMaxBytes }

type fakeRealtime struct {
	joined []domain.UserID
}

func (f *fakeRealtime) ServeWS(w http.ResponseWriter, _ *http.Request, userID domain.UserID) {
	f.joined = append(f.joined, userID)
	w.WriteHeader(http.StatusNoContent)
}

type fakeReporter struct {
	mu       sync.Mutex
	captured []error
}

func (f *fakeReporter) Capture(_ context.Context, err error, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured = append(f.captured, err)
}

var errBoom = errors.New("connection reset by peer: secret-dsn")
