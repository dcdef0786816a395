package application

import (
	"context"
	"errors"
	"time"

	"github.com/inspectify/inspectify/api/internal/account/domain"
)

var (
	// ErrNotFound is returned when a user or feedback does not exist.
	ErrNotFound = errors.New("account record not found")
	// ErrValidation wraps malformed input.
	ErrValidation = errors.New("invalid account input")
	// ErrEmailTaken is returned by signup for a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserRepository は login コレクションへのポート。
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// FeedbackRepository は feedbacks コレクションへのポート。
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	Find(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*domain.Feedback, error)
	SaveReply(ctx context.Context, id, reply string, at time.Time) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user domain.User) (string, time.Time, error)
}

// FeedbackFilter narrows feedback listings.
type FeedbackFilter struct {
	UserID string
}

// SignupCommand captures registration input.
type SignupCommand struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// SubmitFeedbackCommand captures contact form input.
type SubmitFeedbackCommand struct {
	Name    string
	Email   string
	Subject string
	Message string
	UserID  string
}

// UserService handles signup and login.
type UserService interface {
	Signup(ctx context.Context, cmd SignupCommand) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, id string) (*domain.User, error)
}

// FeedbackService handles support tickets.
type FeedbackService interface {
	Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*domain.Feedback, error)
	List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*domain.Feedback, error)
	Reply(ctx context.Context, id, reply string) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
}
