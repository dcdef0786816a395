package public

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	accountdomain "github.com/inspectify/inspectify/api/internal/account/domain"
	"github.com/inspectify/inspectify/api/internal/infrastructure/storage"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	"github.com/inspectify/inspectify/api/internal/realtime"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
	"github.com/inspectify/inspectify/api/internal/report/domain"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	mu            sync.Mutex
	label         string
	result        map[string]any
	err           error
	analyzeCalls  int
	classifyCalls int
	lastPath      string
	lastCoords    domain.Coordinates
}

func (f *fakeAnalyzer) Analyze(_ context.Context, path string, coords domain.Coordinates) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeCalls++
	f.lastPath = path
	f.lastCoords = coords
	return f.result, f.err
}

func (f *fakeAnalyzer) Classify(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classifyCalls++
	f.lastPath = path
	return f.label, f.err
}

type sentEvent struct {
	Target  string
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) record(target, event string, payload any) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{Target: target, Event: event, Payload: payload})
	return 1
}

func (n *recordingNotifier) NotifyUser(userID, event string, payload any) int {
	return n.record(userID, event, payload)
}

func (n *recordingNotifier) NotifyUserWithAck(userID, event string, payload any, _ realtime.AckFunc) int {
	return n.record(userID, event, payload)
}

func (n *recordingNotifier) NotifyAdmins(event string, payload any) int {
	return n.record("admins", event, payload)
}

func (n *recordingNotifier) Broadcast(event string, payload any) int {
	return n.record("all", event, payload)
}

func (n *recordingNotifier) find(target, event string) (sentEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.Target == target && e.Event == event {
			return e, true
		}
	}
	return sentEvent{}, false
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type memoryRoadRepo struct {
	mu      sync.Mutex
	entries []domain.RoadEntry
}

func (m *memoryRoadRepo) Create(_ context.Context, entry *domain.RoadEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = fmt.Sprintf("road-%d", len(m.entries)+1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryRoadRepo) Find(_ context.Context, filter reportapp.ReportFilter) ([]domain.RoadEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.RoadEntry
	for _, e := range m.entries {
		if filter.UserID == "" || e.UserID == filter.UserID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *memoryRoadRepo) FindByID(_ context.Context, id string) (*domain.RoadEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, reportapp.ErrNotFound
}

func (m *memoryRoadRepo) SaveReview(context.Context, string, domain.Review) (*domain.RoadEntry, error) {
	return nil, reportapp.ErrNotFound
}

type memoryImageRepo struct {
	mu     sync.Mutex
	images []domain.FinalImage
}

func (m *memoryImageRepo) Create(_ context.Context, image *domain.FinalImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	image.ID = fmt.Sprintf("img-%d", len(m.images)+1)
	m.images = append(m.images, *image)
	return nil
}

func (m *memoryImageRepo) Find(_ context.Context, filter reportapp.ReportFilter) ([]domain.FinalImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.FinalImage
	for _, img := range m.images {
		if filter.UserID == "" || img.UserID == filter.UserID {
			result = append(result, img)
		}
	}
	return result, nil
}

func (m *memoryImageRepo) FindByID(context.Context, string) (*domain.FinalImage, error) {
	return nil, reportapp.ErrNotFound
}

func (m *memoryImageRepo) SaveReview(context.Context, string, domain.Review) (*domain.FinalImage, error) {
	return nil, reportapp.ErrNotFound
}

type fakeUsers struct {
	signupErr error
	loginErr  error
	login     *accountapp.LoginResult
}

func (f *fakeUsers) Signup(_ context.Context, cmd accountapp.SignupCommand) (*accountdomain.User, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &accountdomain.User{ID: "u1", Name: cmd.Name, Email: accountdomain.Email(cmd.Email)}, nil
}

func (f *fakeUsers) Login(context.Context, string, string) (*accountapp.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.login, nil
}

func (f *fakeUsers) Profile(context.Context, string) (*accountdomain.User, error) {
	return nil, accountapp.ErrNotFound
}

type fakeFeedback struct {
	submitted []accountapp.SubmitFeedbackCommand
}

func (f *fakeFeedback) Submit(_ context.Context, cmd accountapp.SubmitFeedbackCommand) (*accountdomain.Feedback, error) {
	if cmd.Subject == "" {
		return nil, fmt.Errorf("%w: subject", accountapp.ErrValidation)
	}
	f.submitted = append(f.submitted, cmd)
	return &accountdomain.Feedback{ID: "fb1", Name: cmd.Name, Email: accountdomain.Email(cmd.Email), Subject: cmd.Subject, Message: cmd.Message, UserID: cmd.UserID}, nil
}

func (f *fakeFeedback) List(context.Context, accountapp.FeedbackFilter) ([]accountdomain.Feedback, error) {
	return nil, nil
}

func (f *fakeFeedback) SetCompleted(context.Context, string, bool) (*accountdomain.Feedback, error) {
	return nil, accountapp.ErrNotFound
}

func (f *fakeFeedback) Reply(context.Context, string, string) (*accountdomain.Feedback, error) {
	return nil, accountapp.ErrNotFound
}

func (f *fakeFeedback) Delete(context.Context, string) error {
	return accountapp.ErrNotFound
}

type testEnv struct {
	router   chi.Router
	analyzer *fakeAnalyzer
	notifier *recordingNotifier
	store    *storage.Store
	roads    *memoryRoadRepo
	images   *memoryImageRepo
	users    *fakeUsers
	feedback *fakeFeedback
	tempDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		analyzer: &fakeAnalyzer{},
		notifier: &recordingNotifier{},
		roads:    &memoryRoadRepo{},
		images:   &memoryImageRepo{},
		users:    &fakeUsers{},
		feedback: &fakeFeedback{},
		tempDir:  filepath.Join(root, "temp"),
	}
	store, err := storage.New(storage.Config{
		UploadDir: filepath.Join(root, "uploads"),
		FinalDir:  filepath.Join(root, "final"),
		TempDir:   env.tempDir,
	})
	require.NoError(t, err)
	env.store = store

	h := NewHandler(Config{
		Logger:      log.New(io.Discard, "", 0),
		Analyzer:    env.analyzer,
		Images:      store,
		RoadEntries: reportapp.NewRoadEntryService(env.roads),
		FinalImages: reportapp.NewFinalImageService(env.images),
		Feedback:    env.feedback,
		Users:       env.users,
		Notifier:    env.notifier,
	})
	r := chi.NewRouter()
	h.Register(r, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") == "" {
				common.WriteError(nil, w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			user := common.AuthenticatedUser{ID: "u1", UserID: "u1", Role: "user"}
			next.ServeHTTP(w, req.WithContext(common.ContextWithUser(req.Context(), user)))
		})
	})
	env.router = r
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, target string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "road photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func accountlessEntry(id, userID string) domain.RoadEntry {
	return domain.RoadEntry{ID: id, UserID: userID, ImagePath: "uploads/" + id + ".jpg", Status: domain.ReviewPending}
}

func httptestGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
