package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/orders/ports"
)

// Repository stores orders in a MongoDB collection and runs the stats
// aggregations server-side.
type Repository struct {
	collection *mongo.Collection
}

// NewRepository binds the repository to the orders collection.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection("orders")}
}

func (r *Repository) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	order.ID = uuid.NewString()

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	return &order, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	query := bson.M{}
	if filter.CustomerID != "" {
		query["customer_id"] = filter.CustomerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "placed_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus swaps the status only when the stored value still matches
// the expected one, so concurrent writers cannot clobber each other.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		// Distinguish a vanished order from a lost race.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if count == 0 {
			return ports.ErrNotFound
		}
		return ports.ErrStatusConflict
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// SalesSummary totals revenue and order count over non-cancelled orders.
func (r *Repository) SalesSummary(ctx context.Context) (ports.SalesSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": domain.StatusCancelled}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total_revenue": bson.M{"$sum": "$total_cents"},
			"total_orders":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return ports.SalesSummary{}, fmt.Errorf("failed to aggregate sales summary: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalRevenue int64 `bson:"total_revenue"`
		TotalOrders  int64 `bson:"total_orders"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return ports.SalesSummary{}, fmt.Errorf("failed to decode sales summary: %w", err)
	}

	if len(results) == 0 {
		return ports.SalesSummary{}, nil
	}
	return ports.SalesSummary{
		TotalRevenueCents: results[0].TotalRevenue,
		TotalOrders:       results[0].TotalOrders,
	}, nil
}

// DailySales groups delivered orders since the cutoff by UTC calendar day,
// ascending.
func (r *Repository) DailySales(ctx context.Context, since time.Time) ([]ports.DailySale, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":    domain.StatusDelivered,
			"placed_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$placed_at",
				"timezone": "UTC",
			}},
			"total_cents": bson.M{"$sum": "$total_cents"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Day        string `bson:"_id"`
		TotalCents int64  `bson:"total_cents"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode daily sales: %w", err)
	}

	sales := make([]ports.DailySale, 0, len(results))
	for _, row := range results {
		sales = append(sales, ports.DailySale{Day: row.Day, TotalCents: row.TotalCents})
	}
	return sales, nil
}

// TopProduct finds the product with the highest cumulative delivered
// quantity, or nil when no delivered orders exist.
func (r *Repository) TopProduct(ctx context.Context) (*ports.ProductSales, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.StatusDelivered}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.product_id",
			"quantity": bson.M{"$sum": "$items.quantity"},
		}}},
		{{Key: "$sort", Value: bson.M{"quantity": -1}}},
		{{Key: "$limit", Value: 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top product: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		ProductID string `bson:"_id"`
		Quantity  int64  `bson:"quantity"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode top product: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}
	return &ports.ProductSales{ProductID: results[0].ProductID, Quantity: results[0].Quantity}, nil
}
