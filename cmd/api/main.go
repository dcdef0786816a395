package main

import (
	"context"
	"log"

	"github.com/inspectify/inspectify/api/internal/config"
	mongodoc "github.com/inspectify/inspectify/api/internal/infrastructure/mongo"
	"github.com/inspectify/inspectify/api/internal/server"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		cfg.ServerLog.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}

	if err := mongodoc.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase), mongodoc.Collections{
		RoadEntries: cfg.Collections.RoadEntries,
		FinalImages: cfg.Collections.FinalImages,
		Feedbacks:   cfg.Collections.Feedbacks,
		Users:       cfg.Collections.Users,
	}); err != nil {
		cfg.ServerLog.Printf("インデックスの作成に失敗しました: %v", err)
	}

	app, err := server.New(cfg, client)
	if err != nil {
		cfg.ServerLog.Fatalf("サーバー初期化に失敗: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Fatalf("サーバー起動に失敗: %v", err)
	}
}
