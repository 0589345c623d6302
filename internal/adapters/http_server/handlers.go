// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"rental_sync/internal/adapters/observability"
	"rental_sync/internal/app"
	"rental_sync/internal/domain"
)

type Importer interface {
	Import(ctx context.Context, req app.ImportRequest) (app.Result, error)
}

type MetaReader interface {
	PostMeta(ctx context.Context, postID int64) ([]domain.Attribute, error)
}

type Handlers struct {
	Imports     Importer
	Q           MetaReader
	DefaultLang string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/imports", h.createImport)
	s.mux.Get("/v1/posts/{id}/meta", h.getPostMeta)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

type importRequest struct {
	Number int64  `json:"number"`
	PostID int64  `json:"post_id"`
	Lang   string `json:"lang"`
}

type stepView struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

type imageView struct {
	URL     string `json:"url"`
	MediaID int64  `json:"media_id"`
	Reused  bool   `json:"reused"`
}

type importResponse struct {
	Number      int64       `json:"number"`
	PostID      int64       `json:"post_id"`
	Lang        string      `json:"lang"`
	Topics      []stepView  `json:"topics"`
	Scripts     []stepView  `json:"scripts"`
	Images      []imageView `json:"images"`
	ImagesFound int         `json:"images_found"`
}

func (h *Handlers) createImport(w http.ResponseWriter, r *http.Request) {
	var in importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if in.Number <= 0 || in.PostID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "number and post_id must be positive integers")
		return
	}
	if in.Lang == "" {
		in.Lang = h.DefaultLang
	}

	start := time.Now()
	res, err := h.Imports.Import(r.Context(), app.ImportRequest{Number: in.Number, PostID: in.PostID, Lang: in.Lang})
	observability.ObserveImport(res, err, time.Since(start))
	if err != nil {
		var ul *domain.UnsupportedLanguageError
		switch {
		case errors.Is(err, domain.ErrPermanentSkip):
			writeProblem(w, http.StatusUnprocessableEntity, "Listing skipped", err.Error())
		case errors.As(err, &ul):
			writeProblem(w, http.StatusBadRequest, "Unsupported language", err.Error())
		default:
			log.Error().Err(err).Int64("number", in.Number).Int64("post_id", in.PostID).Msg("import failed")
			writeProblem(w, http.StatusBadGateway, "Import failed", err.Error())
		}
		return
	}

	out := importResponse{Number: in.Number, PostID: in.PostID, Lang: in.Lang, ImagesFound: res.ImagesFound}
	for _, s := range res.Topics {
		out.Topics = append(out.Topics, stepView(s))
	}
	for _, s := range res.Scripts {
		out.Scripts = append(out.Scripts, stepView(s))
	}
	for _, im := range res.Images {
		out.Images = append(out.Images, imageView{URL: im.URL, MediaID: im.MediaID, Reused: im.Reused})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getPostMeta(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	attrs, err := h.Q.PostMeta(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "post has no attributes")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("post_id", id).Msg("post meta read failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	etag, body := calcETagAndBody(attrs)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getPostMeta body")
	}
}
