package public

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
	"github.com/inspectify/inspectify/api/internal/report/domain"
)

// Analyzer runs the external ML scripts. *analysis.Invoker implements it.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath string, coords domain.Coordinates) (map[string]any, error)
	Classify(ctx context.Context, imagePath string) (string, error)
}

// ImageStore persists uploaded and annotated images. *storage.Store implements it.
type ImageStore interface {
	SaveUpload(originalName string, data []byte) (relPath string, fullPath string, err error)
	SaveTemp(data []byte, ext string) (path string, cleanup func(), err error)
	SaveDataURL(dataURL string) (relPath string, err error)
}

// Handler wires citizen-facing HTTP endpoints to application services.
type Handler struct {
	logger         *log.Logger
	analyzer       Analyzer
	images         ImageStore
	roadEntries    reportapp.RoadEntryService
	finalImages    reportapp.FinalImageService
	feedback       accountapp.FeedbackService
	users          accountapp.UserService
	notifier       common.Notifier
	maxUploadBytes int64
	now            func() time.Time
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	Analyzer       Analyzer
	Images         ImageStore
	RoadEntries    reportapp.RoadEntryService
	FinalImages    reportapp.FinalImageService
	Feedback       accountapp.FeedbackService
	Users          accountapp.UserService
	Notifier       common.Notifier
	MaxUploadBytes int64
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = common.MaxUploadBytes
	}
	return &Handler{
		logger:         cfg.Logger,
		analyzer:       cfg.Analyzer,
		images:         cfg.Images,
		roadEntries:    cfg.RoadEntries,
		finalImages:    cfg.FinalImages,
		feedback:       cfg.Feedback,
		users:          cfg.Users,
		notifier:       cfg.Notifier,
		maxUploadBytes: maxUpload,
		now:            time.Now,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/predict", h.predictHandler())
	r.Post("/analyze-damage", h.analyzeDamageHandler())
	r.Post("/save-canvas", h.saveCanvasHandler())
	r.Get("/api/road-entries", h.roadEntryListHandler())
	r.Get("/api/final-images", h.finalImageListHandler())
	r.Post("/api/feedback", h.feedbackCreateHandler())
	r.Post("/api/signup", h.signupHandler())
	r.Post("/api/login", h.loginHandler())
	r.With(authMiddleware).Post("/api/verify-auth", h.authVerifyHandler())
	r.With(authMiddleware).Get("/api/verify-auth", h.authVerifyHandler())
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
