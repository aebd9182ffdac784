package http

import (
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/storage"
	"github.com/peakform/peakform/pkg/httpx"
)

// saveAvatarUpload extracts the "avatar" part from a multipart request and
// stores it for the given owner. Writes the error response itself and returns
// ok=false when the caller should stop.
func saveAvatarUpload(w http.ResponseWriter, r *http.Request, avatars *storage.AvatarStore, kind, ownerID string) (string, bool) {
	// Limit the parse buffer; the storage layer enforces the real cap.
	if err := r.ParseMultipartForm(storage.MaxAvatarSize); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Expected multipart form data")
		return "", false
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "avatar file is required")
		return "", false
	}
	defer file.Close()

	path, err := avatars.Save(kind, ownerID, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedImage):
			httpx.WriteFieldErrors(w, map[string]string{
				"avatar": "Must be a JPEG, PNG, or WebP image",
			})
		case errors.Is(err, storage.ErrImageTooLarge):
			httpx.WriteFieldErrors(w, map[string]string{
				"avatar": "Must be 1 MiB or smaller",
			})
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to save avatar")
		}
		return "", false
	}

	return path, true
}
