package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrProductNotFound is returned when a product id resolves to nothing.
var ErrProductNotFound = errors.New("product not found")

// Store persists the product catalog.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	GetMany(ctx context.Context, ids []string) ([]Product, error)
	Insert(ctx context.Context, product Product) (*Product, error)
	Update(ctx context.Context, id string, update ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// ProductUpdate carries replacement fields for a product. An empty Image
// and a nil IsAvailable keep the stored values.
type ProductUpdate struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Image       string
	IsAvailable *bool
}

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore binds the store to the products collection.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection("products")}
}

// List returns every product, newest first.
func (s *mongoStore) List(ctx context.Context) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *mongoStore) GetMany(ctx context.Context, ids []string) ([]Product, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0, len(ids))
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *mongoStore) Insert(ctx context.Context, product Product) (*Product, error) {
	product.ID = uuid.NewString()

	if _, err := s.collection.InsertOne(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return &product, nil
}

func (s *mongoStore) Update(ctx context.Context, id string, update ProductUpdate) (*Product, error) {
	set := bson.M{
		"name":        update.Name,
		"description": update.Description,
		"price_cents": update.PriceCents,
		"category":    update.Category,
	}
	if update.Image != "" {
		set["image"] = update.Image
	}
	if update.IsAvailable != nil {
		set["is_available"] = *update.IsAvailable
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Product
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

func (s *mongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
