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

const wallpapersCollection = "wallpapers"

var ErrWallpaperNotFound = errors.New("wallpaper metadata not found")

type WallpaperRepo struct {
	col *mongo.Collection
}

func NewWallpaperRepo(db *mongo.Database) *WallpaperRepo {
	if db == nil {
		return &WallpaperRepo{}
	}
	return &WallpaperRepo{col: db.Collection(wallpapersCollection)}
}

func (r *WallpaperRepo) Get(ctx context.Context, id string) (model.Wallpaper, error) {
	if r.col == nil {
		return model.Wallpaper{}, fmt.Errorf("wallpapers collection is not configured")
	}
	if id == "" {
		return model.Wallpaper{}, ErrWallpaperNotFound
	}

	var doc model.Wallpaper
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Wallpaper{}, ErrWallpaperNotFound
	}
	if err != nil {
		return model.Wallpaper{}, fmt.Errorf("find wallpaper %q: %w", id, err)
	}

	return doc, nil
}

// List returns every metadata document, newest edits first.
func (r *WallpaperRepo) List(ctx context.Context) ([]model.Wallpaper, error) {
	if r.col == nil {
		return nil, fmt.Errorf("wallpapers collection is not configured")
	}

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list wallpapers: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []model.Wallpaper
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode wallpapers: %w", err)
	}

	return docs, nil
}

// Apply writes one metadata mutation: the changed fields, the new
// updatedAt, and exactly one appended history entry. The document is
// created when missing.
func (r *WallpaperRepo) Apply(ctx context.Context, id string, set map[string]any, entry model.HistoryEntry) error {
	if r.col == nil {
		return fmt.Errorf("wallpapers collection is not configured")
	}
	if id == "" {
		return fmt.Errorf("wallpaper id is required")
	}
	if len(set) == 0 {
		return fmt.Errorf("empty update set")
	}

	update := bson.M{
		"$set":         set,
		"$push":        bson.M{"history": entry},
		"$setOnInsert": bson.M{"createdAt": entry.At},
	}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("apply wallpaper update %q: %w", id, err)
	}

	return nil
}
