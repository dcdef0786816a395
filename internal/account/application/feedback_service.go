package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/account/domain"
)

// NewFeedbackService wires feedback use-cases to a repository.
func NewFeedbackService(repo FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo, now: time.Now}
}

type feedbackService struct {
	repo FeedbackRepository
	now  func() time.Time
}

func (s *feedbackService) Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*domain.Feedback, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	name := strings.TrimSpace(cmd.Name)
	subject := strings.TrimSpace(cmd.Subject)
	message := strings.TrimSpace(cmd.Message)
	if name == "" || subject == "" || message == "" {
		return nil, fmt.Errorf("%w: name, subject and message are required", ErrValidation)
	}

	feedback := &domain.Feedback{
		Name:          name,
		Email:         email,
		Subject:       subject,
		Message:       message,
		DateSubmitted: s.now().UTC(),
		UserID:        strings.TrimSpace(cmd.UserID),
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *feedbackService) List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	filter.UserID = strings.TrimSpace(filter.UserID)
	return s.repo.Find(ctx, filter)
}

func (s *feedbackService) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Feedback, error) {
	return s.repo.SetCompleted(ctx, strings.TrimSpace(id), completed)
}

func (s *feedbackService) Reply(ctx context.Context, id, reply string) (*domain.Feedback, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: reply is required", ErrValidation)
	}
	return s.repo.SaveReply(ctx, strings.TrimSpace(id), reply, s.now().UTC())
}

func (s *feedbackService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}
