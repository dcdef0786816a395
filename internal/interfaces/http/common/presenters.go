package common

import (
	"time"

	accountdomain "github.com/inspectify/inspectify/api/internal/account/domain"
	"github.com/inspectify/inspectify/api/internal/report/domain"
)

// RoadEntryResponse mirrors the stored document; "_id" is kept for older clients.
type RoadEntryResponse struct {
	MongoID           string     `json:"_id"`
	ID                string     `json:"id"`
	ImagePath         string     `json:"imagePath"`
	Latitude          string     `json:"latitude"`
	Longitude         string     `json:"longitude"`
	Address           string     `json:"address,omitempty"`
	Timestamp         time.Time  `json:"timestamp"`
	Status            string     `json:"status"`
	Reviewed          bool       `json:"reviewed"`
	ReviewNotes       string     `json:"reviewNotes,omitempty"`
	Severity          string     `json:"severity"`
	DamageType        []string   `json:"damageType"`
	RecommendedAction string     `json:"recommendedAction,omitempty"`
	ReviewedAt        *time.Time `json:"reviewedAt,omitempty"`
	UserID            string     `json:"userId"`
	ReviewerID        string     `json:"reviewerId,omitempty"`
}

// NewRoadEntryResponse converts a domain entry.
func NewRoadEntryResponse(entry domain.RoadEntry) RoadEntryResponse {
	return RoadEntryResponse{
		MongoID:           entry.ID,
		ID:                entry.ID,
		ImagePath:         entry.ImagePath,
		Latitude:          entry.Latitude,
		Longitude:         entry.Longitude,
		Address:           entry.Address,
		Timestamp:         entry.Timestamp,
		Status:            string(entry.Status),
		Reviewed:          entry.Reviewed,
		ReviewNotes:       entry.ReviewNotes,
		Severity:          string(entry.Severity),
		DamageType:        entry.DamageType.Strings(),
		RecommendedAction: entry.RecommendedAction,
		ReviewedAt:        entry.ReviewedAt,
		UserID:            entry.UserID,
		ReviewerID:        entry.ReviewerID,
	}
}

// NewRoadEntryResponses converts a list.
func NewRoadEntryResponses(entries []domain.RoadEntry) []RoadEntryResponse {
	result := make([]RoadEntryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, NewRoadEntryResponse(entry))
	}
	return result
}

// FinalImageResponse is the JSON form of a saved analysis.
type FinalImageResponse struct {
	MongoID            string         `json:"_id"`
	ID                 string         `json:"id"`
	ImagePath          string         `json:"imagePath"`
	AnnotatedImagePath string         `json:"annotatedImagePath,omitempty"`
	Latitude           *float64       `json:"latitude,omitempty"`
	Longitude          *float64       `json:"longitude,omitempty"`
	Address            string         `json:"address,omitempty"`
	AnalysisResult     map[string]any `json:"analysisResult"`
	Status             string         `json:"status"`
	Severity           int            `json:"severity"`
	SeverityLevel      string         `json:"severityLevel"`
	DamageType         string         `json:"damageType"`
	DetectionCount     int            `json:"detectionCount"`
	ProcessingTime     float64        `json:"processingTime"`
	UserID             string         `json:"userId"`
	CreatedAt          time.Time      `json:"createdAt"`
	Reviewed           bool           `json:"reviewed"`
	ReviewStatus       string         `json:"reviewStatus,omitempty"`
	ReviewNotes        string         `json:"reviewNotes,omitempty"`
	ReviewSeverity     string         `json:"reviewSeverity,omitempty"`
	ReviewDamageType   []string       `json:"reviewDamageType,omitempty"`
	RecommendedAction  string         `json:"recommendedAction,omitempty"`
	ReviewedAt         *time.Time     `json:"reviewedAt,omitempty"`
	ReviewerID         string         `json:"reviewerId,omitempty"`
}

// NewFinalImageResponse converts a domain image.
func NewFinalImageResponse(image domain.FinalImage) FinalImageResponse {
	resp := FinalImageResponse{
		MongoID:            image.ID,
		ID:                 image.ID,
		ImagePath:          image.ImagePath,
		AnnotatedImagePath: image.AnnotatedImagePath,
		Address:            image.Address,
		AnalysisResult:     image.AnalysisResult,
		Status:             string(image.Status),
		Severity:           image.Severity,
		SeverityLevel:      string(image.SeverityLevel),
		DamageType:         image.DamageType,
		DetectionCount:     image.DetectionCount,
		ProcessingTime:     image.ProcessingTime,
		UserID:             image.UserID,
		CreatedAt:          image.CreatedAt,
		Reviewed:           image.Reviewed,
		ReviewStatus:       string(image.ReviewStatus),
		ReviewNotes:        image.ReviewNotes,
		ReviewSeverity:     string(image.ReviewSeverity),
		ReviewDamageType:   image.ReviewDamageType.Strings(),
		RecommendedAction:  image.RecommendedAction,
		ReviewedAt:         image.ReviewedAt,
		ReviewerID:         image.ReviewerID,
	}
	if image.HasLocation {
		lat, lng := image.Latitude, image.Longitude
		resp.Latitude = &lat
		resp.Longitude = &lng
	}
	if resp.AnalysisResult == nil {
		resp.AnalysisResult = map[string]any{}
	}
	return resp
}

// NewFinalImageResponses converts a list.
func NewFinalImageResponses(images []domain.FinalImage) []FinalImageResponse {
	result := make([]FinalImageResponse, 0, len(images))
	for _, image := range images {
		result = append(result, NewFinalImageResponse(image))
	}
	return result
}

// FeedbackResponse is the JSON form of a support ticket.
type FeedbackResponse struct {
	MongoID       string     `json:"_id"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Completed     bool       `json:"completed"`
	DateSubmitted time.Time  `json:"dateSubmitted"`
	UserID        string     `json:"userId,omitempty"`
	Reply         string     `json:"reply,omitempty"`
	Replied       bool       `json:"replied"`
	ReplyDate     *time.Time `json:"replyDate,omitempty"`
}

// NewFeedbackResponse converts a domain feedback.
func NewFeedbackResponse(f accountdomain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		MongoID:       f.ID,
		ID:            f.ID,
		Name:          f.Name,
		Email:         f.Email.String(),
		Subject:       f.Subject,
		Message:       f.Message,
		Completed:     f.Completed,
		DateSubmitted: f.DateSubmitted,
		UserID:        f.UserID,
		Reply:         f.Reply,
		Replied:       f.Replied,
		ReplyDate:     f.ReplyDate,
	}
}

// UserResponse is the public view of an account; the password hash never leaves.
type UserResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

// NewUserResponse converts a domain user. UserID is the realtime identity.
func NewUserResponse(user accountdomain.User) UserResponse {
	identity := user.Identity()
	return UserResponse{
		ID:      user.ID,
		UserID:  identity.ID,
		Name:    user.Name,
		Email:   user.Email.String(),
		Role:    string(identity.Role),
		IsAdmin: user.IsAdmin,
	}
}
