package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dmchat/internal/config"
	"dmchat/internal/service"
)

const uploadURLPrefix = "/uploads/"

// Extensions for the image types accepted as avatars, keyed by sniffed content type.
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// handleUploadAvatar stores a multipart "profileImage" file and points the
// current user's profile image at it. The previous image, if any, is removed.
func handleUploadAvatar(cfg *config.Config, userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes+1<<10)
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeBadRequest(w, "file too large")
				return
			}
			writeBadRequest(w, "failed to parse multipart form")
			return
		}
		file, header, err := r.FormFile("profileImage")
		if err != nil {
			writeBadRequest(w, "no file uploaded")
			return
		}
		defer file.Close()
		if header.Size > cfg.MaxUploadBytes {
			writeBadRequest(w, "file too large")
			return
		}

		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			writeBadRequest(w, "could not read file")
			return
		}
		ext, ok := avatarTypes[http.DetectContentType(head[:n])]
		if !ok {
			writeBadRequest(w, "invalid file type, only JPEG, PNG and GIF are allowed")
			return
		}

		filename, err := saveUpload(cfg.UploadDir, ext, io.MultiReader(bytes.NewReader(head[:n]), file))
		if err != nil {
			writeError(w, r, err)
			return
		}

		previous := currentUser.ProfileImage
		user, err := userSvc.SetProfileImage(r.Context(), currentUser.ID, uploadURLPrefix+filename)
		if err != nil {
			removeUpload(cfg.UploadDir, filename)
			writeError(w, r, err)
			return
		}
		if previous != nil && strings.HasPrefix(*previous, uploadURLPrefix) {
			removeUpload(cfg.UploadDir, filepath.Base(*previous))
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

// saveUpload writes src to a new uniquely named file in dir and returns its
// name. Nothing is left behind when writing fails.
func saveUpload(dir, ext string, src io.Reader) (string, error) {
	filename := uuid.NewString() + ext
	path := filepath.Join(dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		removeUpload(dir, filename)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return filename, nil
}

func removeUpload(dir, filename string) {
	path := filepath.Join(dir, filename)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("remove upload", "path", path, "err", err)
	}
}

// handleServeUpload serves files from dir as /uploads/{filename}.
func handleServeUpload(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" {
			writeBadRequest(w, "missing filename")
			return
		}
		// Prevent path traversal by not allowing separators.
		if filepath.Base(filename) != filename {
			writeBadRequest(w, "invalid filename")
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, filename))
	}
}
