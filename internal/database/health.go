package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

func CheckHealth(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(ctx, nil)
}
