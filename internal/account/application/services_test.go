package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inspectify/inspectify/api/internal/account/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]domain.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = fmt.Sprintf("u%d", len(m.users)+1)
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

type staticIssuer struct{}

func (staticIssuer) Issue(user domain.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Unix(0, 0), nil
}

type memoryFeedback struct {
	items map[string]domain.Feedback
}

func (m *memoryFeedback) Create(_ context.Context, f *domain.Feedback) error {
	f.ID = fmt.Sprintf("f%d", len(m.items)+1)
	m.items[f.ID] = *f
	return nil
}

func (m *memoryFeedback) Find(_ context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	result := make([]domain.Feedback, 0)
	for _, f := range m.items {
		if filter.UserID == "" || f.UserID == filter.UserID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *memoryFeedback) SetCompleted(_ context.Context, id string, completed bool) (*domain.Feedback, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	f.Completed = completed
	m.items[id] = f
	return &f, nil
}

func (m *memoryFeedback) SaveReply(_ context.Context, id, reply string, at time.Time) (*domain.Feedback, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	f.Reply, f.Replied, f.ReplyDate, f.Completed = reply, true, &at, true
	m.items[id] = f
	return &f, nil
}

func (m *memoryFeedback) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrongpassword", hash))
}

func TestSignupAndLogin(t *testing.T) {
	svc := NewUserService(newMemoryUsers(), staticIssuer{})
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupCommand{Name: "Ravi", Email: "Ravi@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domain.Email("ravi@example.com"), user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	_, err = svc.Signup(ctx, SignupCommand{Name: "Ravi", Email: "ravi@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	result, err := svc.Login(ctx, "ravi@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID, result.Token)

	_, err = svc.Login(ctx, "ravi@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupValidation(t *testing.T) {
	svc := NewUserService(newMemoryUsers(), staticIssuer{})
	_, err := svc.Signup(context.Background(), SignupCommand{Name: "x", Email: "bad", Password: "secret123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Signup(context.Background(), SignupCommand{Name: "x", Email: "a@b.co", Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFeedbackLifecycle(t *testing.T) {
	repo := &memoryFeedback{items: make(map[string]domain.Feedback)}
	svc := NewFeedbackService(repo)
	ctx := context.Background()

	feedback, err := svc.Submit(ctx, SubmitFeedbackCommand{
		Name: "Asha", Email: "asha@example.com", Subject: "Pothole", Message: "Still there", UserID: "user_9",
	})
	require.NoError(t, err)
	assert.False(t, feedback.Completed)

	toggled, err := svc.SetCompleted(ctx, feedback.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	replied, err := svc.Reply(ctx, feedback.ID, " Fixed on Monday ")
	require.NoError(t, err)
	assert.True(t, replied.Replied)
	assert.Equal(t, "Fixed on Monday", replied.Reply)
	require.NotNil(t, replied.ReplyDate)

	_, err = svc.Reply(ctx, feedback.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, feedback.ID))
	assert.ErrorIs(t, svc.Delete(ctx, feedback.ID), ErrNotFound)
}

func TestFeedbackSubmitValidation(t *testing.T) {
	svc := NewFeedbackService(&memoryFeedback{items: make(map[string]domain.Feedback)})
	_, err := svc.Submit(context.Background(), SubmitFeedbackCommand{Name: "A", Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrValidation)
}
