package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/petermazzocco/go-profile-images/internal/auth"
	"github.com/petermazzocco/go-profile-images/internal/filename"
	"github.com/petermazzocco/go-profile-images/internal/upload"
)

// multipartOverhead is headroom for form boundaries and headers on top of the
// image itself.
const multipartOverhead = 1 << 20

func UploadProfileImageHandler(w http.ResponseWriter, r *http.Request, uploads *upload.Service, maxBytes int64) {
	owner, ok := auth.Owner(r.Context())
	if !ok {
		http.Error(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := uploads.Upload(r.Context(), upload.Request{
		Owner:       owner,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeUploadError(w, r, err, res)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Profile image uploaded successfully",
		"url":           res.OriginalURL,
		"thumbnail_url": res.ThumbnailURL,
	})
}

func GetProfileImageHandler(w http.ResponseWriter, r *http.Request, uploads *upload.Service) {
	owner, ok := auth.Owner(r.Context())
	if !ok {
		http.Error(w, "User not found in context", http.StatusUnauthorized)
		return
	}
	writeProfileImage(w, r, uploads, owner)
}

// PublicProfileImageHandler serves /users/{nickname}/profile-image. Objects are
// public-read, so their URLs are too.
func PublicProfileImageHandler(w http.ResponseWriter, r *http.Request, uploads *upload.Service) {
	writeProfileImage(w, r, uploads, chi.URLParam(r, "nickname"))
}

func writeProfileImage(w http.ResponseWriter, r *http.Request, uploads *upload.Service, nickname string) {
	p, err := uploads.ProfileImage(r.Context(), nickname)
	if errors.Is(err, upload.ErrOwnerNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "load profile image", slog.String("owner", nickname), slog.String("error", err.Error()))
		http.Error(w, "Error loading profile image", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error, partial *upload.Result) {
	var failed *upload.UploadFailedError
	switch {
	case errors.Is(err, upload.ErrOwnerNotFound), errors.Is(err, filename.ErrInvalidFileName):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, upload.ErrTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case errors.As(err, &failed):
		slog.ErrorContext(r.Context(), "storage upload failed",
			slog.String("phase", string(failed.Phase)),
			slog.String("key", failed.Key),
			slog.String("error", err.Error()),
		)
	default:
		slog.ErrorContext(r.Context(), "profile image upload failed", slog.String("error", err.Error()))
	}

	body := map[string]any{"message": "Failed to upload profile image"}
	if failed != nil {
		body["phase"] = failed.Phase
	}
	if partial != nil && partial.Original != nil {
		body["url"] = partial.OriginalURL
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}
