package main

import (
	"context"

	"faircrop/agent"
	"faircrop/marketdata"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	cfg          Config
	mongo        *mongo.Client
	db           *mongo.Database
	users        *mongo.Collection
	listings     *mongo.Collection
	offers       *mongo.Collection
	negotiations *mongo.Collection

	source       *marketdata.Source
	orchestrator *agent.Orchestrator
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)

	source, err := marketdata.Load(cfg.MarketDataDir)
	if err != nil {
		return nil, err
	}

	llm := newLLMClient(cfg.LLMServiceURL)

	app := &App{
		cfg:          cfg,
		mongo:        client,
		db:           db,
		users:        db.Collection("users"),
		listings:     db.Collection("listings"),
		offers:       db.Collection("offers"),
		negotiations: db.Collection("negotiations"),
		source:       source,
		orchestrator: &agent.Orchestrator{
			Source:    source,
			Extractor: llm,
			Generator: llm,
		},
	}

	// Indexes
	if _, err := app.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}
	if _, err := app.listings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "farmerId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return nil, err
	}
	if _, err := app.offers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "listingId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return nil, err
	}
	if _, err := app.negotiations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "listingId", Value: 1}, {Key: "buyerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) close(ctx context.Context) { _ = a.mongo.Disconnect(ctx) }
