package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/raulshma/chromatica/internal/domain/model"
)

const categoriesCollection = "categories"

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepo struct {
	col *mongo.Collection
}

func NewCategoryRepo(db *mongo.Database) *CategoryRepo {
	if db == nil {
		return &CategoryRepo{}
	}
	return &CategoryRepo{col: db.Collection(categoriesCollection)}
}

func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	if r.col == nil {
		return nil, fmt.Errorf("categories collection is not configured")
	}

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []model.Category
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	return docs, nil
}

func (r *CategoryRepo) Upsert(ctx context.Context, category model.Category) error {
	if r.col == nil {
		return fmt.Errorf("categories collection is not configured")
	}
	if category.ID == "" {
		return fmt.Errorf("category id is required")
	}

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": category.ID}, category, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert category %q: %w", category.ID, err)
	}

	return nil
}

// Delete removes the category document only. Wallpaper references held by
// the category are not cleaned up.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if r.col == nil {
		return fmt.Errorf("categories collection is not configured")
	}
	if id == "" {
		return ErrCategoryNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category %q: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
