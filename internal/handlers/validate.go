package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON неизвестные поля считаются ошибкой: так id, user_id
// и created_at нельзя передать в обновлении.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if !checkContentType(r, "application/json") {
		return errUnsupportedMedia
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("неверное тело запроса: %w", err)
	}
	return nil
}

var errUnsupportedMedia = errors.New("Content-Type должен быть application/json")
var errNilID = errors.New("id не может быть пустым")

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("не удалось получить id: %w", err)
	}
	if id == uuid.Nil {
		return uuid.Nil, errNilID
	}
	return id, nil
}
