package media

import (
	"path"
	"strconv"
	"strings"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/google/uuid"
)

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

// TypeOf maps a content type to model.MediaTypeImage or model.MediaTypeVideo.
// ok is false for content types that are not accepted for posts.
func TypeOf(contentType string) (mediaType string, ok bool) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if _, known := extensions[contentType]; !known {
		return "", false
	}
	if strings.HasPrefix(contentType, "video/") {
		return model.MediaTypeVideo, true
	}
	return model.MediaTypeImage, true
}

// PostKey returns the object key for a new post upload:
// posts/<communityID>/<uuid><ext>.
func PostKey(communityID int64, contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return path.Join("posts", strconv.FormatInt(communityID, 10), uuid.NewString()+extensions[contentType])
}
