package api

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/storage"
)

// ListResponse is the body of GET /v1/documents.
type ListResponse struct {
	Records []*storage.Record `json:"records"`
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "this server has no archive configured"))
		return false
	}
	return true
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := storage.NewRecord(doc, res, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "archive run"))
		return
	}
	w.Header().Set("Location", "/v1/documents/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	q := r.URL.Query()
	f := storage.Filter{Doc: q.Get("doc"), DocHash: q.Get("hash")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, badRequest("limit must be a non-negative integer, got %q", v))
			return
		}
		f.Limit = n
	}
	recs, err := s.store.List(r.Context(), f)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "list runs"))
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Records: nonNil(recs)})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, storageError(err, "get run"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, storageError(err, "delete run"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// storageError leaves ErrNotFound for writeError to map to 404 and marks
// everything else as a backend failure.
func storageError(err error, op string) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return err
	}
	return errors.Wrap(errors.ErrCodeStorage, err, "%s", op)
}
