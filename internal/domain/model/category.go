package model

// Category groups wallpapers by reference. Membership is not ownership:
// deleting a category leaves its wallpapers untouched, and deleting a
// wallpaper does not clean up category references.
type Category struct {
	ID           string   `json:"id" bson:"_id"`
	Name         string   `json:"name" bson:"name"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty"`
	WallpaperIDs []string `json:"wallpaperIds,omitempty" bson:"wallpaperIds,omitempty"`
}
