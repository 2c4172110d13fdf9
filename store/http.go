package store

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/gridlock-gg/gridlock/mapdef"
	"github.com/gridlock-gg/gridlock/preview"
	"github.com/gridlock-gg/gridlock/worker"
)

// Handler returns the map API router: list, fetch, upload, delete, preview
// rendering and the interchange schema.
func (s *Store) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/maps", s.handleList)
	r.Post("/maps", s.handleUpload)
	r.Get("/maps/{id}", s.handleFetch)
	r.Delete("/maps/{id}", s.handleDelete)
	r.Get("/maps/{id}/preview.png", s.handlePreview)
	r.Get("/schema.json", s.handleSchema)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Store) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Store) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	m, err := mapdef.Load(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.Save(m); err != nil {
		var verr *mapdef.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": m.ID})
}

func (s *Store) handleFetch(w http.ResponseWriter, r *http.Request) {
	m, err := s.Get(chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	data, err := m.Export()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Store) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Delete(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) handlePreview(w http.ResponseWriter, r *http.Request) {
	m, err := s.Get(chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	// Rendering is CPU heavy, so it runs on the worker pool.
	var (
		png       []byte
		renderErr error
	)
	worker.SubmitWait(func() {
		png, renderErr = preview.Render(m, 512)
	})
	if renderErr != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: renderErr.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Store) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := mapdef.Schema()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(schema)
}
