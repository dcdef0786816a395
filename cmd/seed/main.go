package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	accountdomain "github.com/inspectify/inspectify/api/internal/account/domain"
	mongodoc "github.com/inspectify/inspectify/api/internal/infrastructure/mongo"
	"github.com/inspectify/inspectify/api/internal/report/domain"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	envFile       string
	adminEmail    string
	adminName     string
	adminPassword string
	demoReports   int
	demoUser      string
	randomSeed    int64
}

var demoLocations = []struct {
	lat, lng float64
	address  string
}{
	{12.9716, 77.5946, "MG Road, Bengaluru"},
	{12.9352, 77.6245, "Koramangala 5th Block, Bengaluru"},
	{13.0358, 77.5970, "Hebbal Flyover, Bengaluru"},
	{12.9141, 77.6101, "Silk Board Junction, Bengaluru"},
	{17.3850, 78.4867, "Abids Road, Hyderabad"},
}

var demoDamage = []string{"pothole", "longitudinal_crack", "transverse_crack", "alligator_crack"}

var demoLevels = []string{"low", "medium", "high", "severe"}

func main() {
	opts := parseFlags()

	if err := godotenv.Load(opts.envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "Safestreet")
	names := mongodoc.Collections{
		RoadEntries: envOrDefault("ROAD_ENTRY_COLLECTION", "roadloc"),
		FinalImages: envOrDefault("FINAL_IMAGE_COLLECTION", "final_images"),
		Feedbacks:   envOrDefault("FEEDBACK_COLLECTION", "feedbacks"),
		Users:       envOrDefault("USER_COLLECTION", "login"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)
	if err := mongodoc.EnsureIndexes(ctx, db, names); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	if err := seedAdmin(ctx, mongodoc.NewUserRepository(db, names.Users), opts); err != nil {
		log.Fatalf("管理者の作成に失敗しました: %v", err)
	}

	if opts.demoReports > 0 {
		rng := rand.New(rand.NewSource(opts.randomSeed))
		roads := mongodoc.NewRoadEntryRepository(db, names.RoadEntries)
		images := mongodoc.NewFinalImageRepository(db, names.FinalImages)
		if err := seedReports(ctx, rng, roads, images, opts); err != nil {
			log.Fatalf("デモレポートの挿入に失敗しました: %v", err)
		}
	}

	log.Printf("Seed 完了: admin=%s demoReports=%d", opts.adminEmail, opts.demoReports)
	log.Printf("Mongo: %s / %s", mongoURI, dbName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env-file", ".env", "読み込む env ファイル")
	flag.StringVar(&opts.adminEmail, "admin-email", "admin123@gmail.com", "管理者メールアドレス")
	flag.StringVar(&opts.adminName, "admin-name", "Admin User", "管理者名")
	flag.StringVar(&opts.adminPassword, "admin-password", "admin123", "管理者パスワード")
	flag.IntVar(&opts.demoReports, "demo", 0, "生成するデモレポート数 (RoadEntry と FinalImage 各)")
	flag.StringVar(&opts.demoUser, "demo-user", "demo_user", "デモレポートの userId")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()
	return opts
}

func seedAdmin(ctx context.Context, users *mongodoc.UserRepository, opts seedOptions) error {
	email, err := accountdomain.NewEmail(opts.adminEmail)
	if err != nil {
		return err
	}
	if len(opts.adminPassword) < 6 {
		return fmt.Errorf("admin password must be at least 6 characters")
	}
	hash, err := accountapp.HashPassword(opts.adminPassword)
	if err != nil {
		return err
	}
	created, err := users.EnsureAdmin(ctx, email, strings.TrimSpace(opts.adminName), hash, time.Now().UTC())
	if err != nil {
		return err
	}
	if created {
		log.Printf("管理者を作成しました: %s", email)
	} else {
		log.Printf("既存の管理者を更新しました: %s", email)
	}
	return nil
}

func seedReports(ctx context.Context, rng *rand.Rand, roads *mongodoc.RoadEntryRepository, images *mongodoc.FinalImageRepository, opts seedOptions) error {
	now := time.Now().UTC()
	for i := 0; i < opts.demoReports; i++ {
		loc := demoLocations[rng.Intn(len(demoLocations))]
		createdAt := now.Add(-time.Duration(rng.Intn(14*24)) * time.Hour)
		imagePath := fmt.Sprintf("uploads/demo_%03d.jpg", i)

		entry := domain.NewRoadEntry(imagePath, domain.Coordinates{
			Latitude:  fmt.Sprintf("%.6f", loc.lat),
			Longitude: fmt.Sprintf("%.6f", loc.lng),
		}, loc.address, opts.demoUser, createdAt)
		if err := roads.Create(ctx, &entry); err != nil {
			return err
		}

		result := demoAnalysis(rng)
		assessment := domain.Assess(result)
		lat, lng := loc.lat, loc.lng
		image := domain.FinalImage{
			ImagePath:      imagePath,
			Latitude:       lat,
			Longitude:      lng,
			HasLocation:    true,
			Address:        loc.address,
			AnalysisResult: result,
			Status:         assessment.Status,
			Severity:       assessment.Severity,
			SeverityLevel:  assessment.SeverityLevel,
			DamageType:     assessment.DamageType,
			DetectionCount: assessment.DetectionCount,
			ProcessingTime: assessment.ProcessingTime,
			UserID:         opts.demoUser,
			CreatedAt:      createdAt,
			ReviewStatus:   domain.ReviewPending,
		}
		if err := images.Create(ctx, &image); err != nil {
			return err
		}
	}
	return nil
}

func demoAnalysis(rng *rand.Rand) map[string]any {
	count := 1 + rng.Intn(4)
	detections := make([]any, 0, count)
	for i := 0; i < count; i++ {
		detections = append(detections, map[string]any{
			"class":      demoDamage[rng.Intn(len(demoDamage))],
			"confidence": 0.5 + rng.Float64()/2,
			"bbox":       []any{rng.Intn(300), rng.Intn(300), 300 + rng.Intn(300), 300 + rng.Intn(300)},
		})
	}
	return map[string]any{
		"detections":             detections,
		"severity":               map[string]any{"level": demoLevels[rng.Intn(len(demoLevels))]},
		"server_processing_time": 800 + rng.Intn(2000),
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
