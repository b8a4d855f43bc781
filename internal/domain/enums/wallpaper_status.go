package enums

type WallpaperStatus string

const (
	WallpaperStatusPending WallpaperStatus = "pending"
	WallpaperStatusSuccess WallpaperStatus = "success"
	WallpaperStatusFailure WallpaperStatus = "failure"
)

func (s WallpaperStatus) Valid() bool {
	switch s {
	case WallpaperStatusPending, WallpaperStatusSuccess, WallpaperStatusFailure:
		return true
	}
	return false
}
