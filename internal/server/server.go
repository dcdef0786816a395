package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/config"
	"github.com/inspectify/inspectify/api/internal/infrastructure/analysis"
	"github.com/inspectify/inspectify/api/internal/infrastructure/auth"
	mongodoc "github.com/inspectify/inspectify/api/internal/infrastructure/mongo"
	"github.com/inspectify/inspectify/api/internal/infrastructure/storage"
	adminhttp "github.com/inspectify/inspectify/api/internal/interfaces/http/admin"
	commonhttp "github.com/inspectify/inspectify/api/internal/interfaces/http/common"
	publichttp "github.com/inspectify/inspectify/api/internal/interfaces/http/public"
	"github.com/inspectify/inspectify/api/internal/metrics"
	"github.com/inspectify/inspectify/api/internal/realtime"
	reportapp "github.com/inspectify/inspectify/api/internal/report/application"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server は HTTP サーバーのライフサイクルを管理し、各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	tokens         *auth.TokenService
	images         *storage.Store
	hub            *realtime.Hub
	publicHandler  *publichttp.Handler
	adminHandler   *adminhttp.Handler
	addr           string
	allowedOrigins []string
}

// Run はHTTPサーバーを起動し、ルーティングとミドルウェアを組み立てる。
func (s *Server) Run() error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/ws", s.hub.ServeWS)
	router.Handle("/"+storage.UploadsPrefix+"/*", staticFiles(storage.UploadsPrefix, s.images.UploadDir()))
	router.Handle("/"+storage.FinalPrefix+"/*", staticFiles(storage.FinalPrefix, s.images.FinalDir()))

	s.publicHandler.Register(router, s.authMiddleware)
	s.adminHandler.Register(router)
	return router
}

func staticFiles(prefix, dir string) http.Handler {
	return http.StripPrefix("/"+prefix+"/", http.FileServer(http.Dir(dir)))
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed, allowAll := originSet(origins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "X-Image-Path")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originSet(origins []string) (map[string]struct{}, bool) {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}
	return allowed, allowAll
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// checkWebSocketOrigin applies the CORS allow-list to websocket upgrades.
func checkWebSocketOrigin(origins []string) func(r *http.Request) bool {
	allowed, allowAll := originSet(origins)
	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		return origin == "" || allowAll || originAllowed(origin, allowed)
	}
}

// healthHandler は MongoDB への疎通確認を行う。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーの JWT を検証し、認証済みユーザーをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return bearerAuth(s.tokens, s.writeJSON)(next)
}

func bearerAuth(tokens *auth.TokenService, writeJSON func(http.ResponseWriter, int, any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, commonhttp.ErrorResponse{Error: "Authorization ヘッダーがありません"})
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				writeJSON(w, http.StatusUnauthorized, commonhttp.ErrorResponse{Error: "Bearer トークンを指定してください"})
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
			if tokenString == "" {
				writeJSON(w, http.StatusUnauthorized, commonhttp.ErrorResponse{Error: "アクセストークンが空です"})
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, commonhttp.ErrorResponse{Error: err.Error()})
				return
			}

			identity := claims.Identity()
			user := commonhttp.AuthenticatedUser{
				ID:      claims.Subject,
				UserID:  identity.ID,
				Name:    claims.Name,
				Email:   claims.Email,
				Role:    string(identity.Role),
				IsAdmin: identity.IsAdmin(),
			}

			ctx := commonhttp.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// New は Config と Mongo クライアントを受け取り、サービスとハンドラを組み立てた Server を返す。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	metrics.Register()

	images, err := storage.New(storage.Config{
		UploadDir: cfg.Storage.UploadDir,
		FinalDir:  cfg.Storage.FinalDir,
		TempDir:   cfg.Storage.TempDir,
	})
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.MongoDatabase)
	roadRepo := mongodoc.NewRoadEntryRepository(db, cfg.Collections.RoadEntries)
	imageRepo := mongodoc.NewFinalImageRepository(db, cfg.Collections.FinalImages)
	statsRepo := mongodoc.NewStatsRepository(db, cfg.Collections.FinalImages)
	userRepo := mongodoc.NewUserRepository(db, cfg.Collections.Users)
	feedbackRepo := mongodoc.NewFeedbackRepository(db, cfg.Collections.Feedbacks)

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)

	roadEntries := reportapp.NewRoadEntryService(roadRepo)
	finalImages := reportapp.NewFinalImageService(imageRepo)
	feedback := accountapp.NewFeedbackService(feedbackRepo)

	registry := realtime.NewMemoryRegistry()
	hub := realtime.NewHub(realtime.HubConfig{
		Registry:    registry,
		Logger:      cfg.ServerLog,
		CheckOrigin: checkWebSocketOrigin(cfg.AllowedOrigins),
	})
	dispatcher := realtime.NewDispatcher(registry, hub, cfg.ServerLog)
	hub.SetAckHandler(dispatcher.HandleAck)

	invoker := analysis.New(analysis.Config{
		Interpreter:    cfg.Analysis.Interpreter,
		PredictScript:  cfg.Analysis.PredictScript,
		DetectScript:   cfg.Analysis.DetectScript,
		Timeout:        cfg.Analysis.Timeout,
		MaxConcurrency: cfg.Analysis.MaxConcurrency,
		QueueTimeout:   cfg.Analysis.QueueTimeout,
		Logger:         cfg.ServerLog,
	})

	srv := &Server{
		logger:         cfg.ServerLog,
		client:         client,
		tokens:         tokens,
		images:         images,
		hub:            hub,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}
	srv.publicHandler = publichttp.NewHandler(publichttp.Config{
		Logger:         cfg.ServerLog,
		Analyzer:       invoker,
		Images:         images,
		RoadEntries:    roadEntries,
		FinalImages:    finalImages,
		Feedback:       feedback,
		Users:          accountapp.NewUserService(userRepo, tokens),
		Notifier:       dispatcher,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	srv.adminHandler = adminhttp.NewHandler(adminhttp.Config{
		Logger:            cfg.ServerLog,
		RoadEntries:       roadEntries,
		Reviews:           reportapp.NewReviewService(roadRepo, imageRepo),
		Stats:             reportapp.NewStatsService(statsRepo, imageRepo),
		Feedback:          feedback,
		Notifier:          dispatcher,
		BroadcastFallback: cfg.BroadcastFallback,
	})

	return srv, nil
}
