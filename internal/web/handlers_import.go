package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sgq/internal/core"
	"github.com/go-chi/chi/v5"
)

// ImportResponse is the body returned by import and preview.
type ImportResponse struct {
	*core.Report
	Summary  string         `json:"summary"`
	Outcomes []core.Outcome `json:"outcomes,omitempty"`
}

type runFunc func(ctx context.Context, entity, fileName string, data []byte) (*core.Report, error)

// handleImport writes an uploaded spreadsheet.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.runUpload(w, r, s.service.Import)
}

// handlePreview runs an uploaded spreadsheet without writing.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.runUpload(w, r, s.service.Preview)
}

func (s *Server) runUpload(w http.ResponseWriter, r *http.Request, run runFunc) {
	entity := chi.URLParam(r, "entity")
	if _, ok := core.Get(entity); !ok {
		s.respondError(w, r, core.ErrUnknownEntity)
		return
	}

	fileName, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := run(r.Context(), entity, fileName, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := ImportResponse{Report: report, Summary: report.Summary()}
	if withOutcomes, _ := strconv.ParseBool(r.URL.Query().Get("outcomes")); withOutcomes {
		resp.Outcomes = report.Outcomes
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload returns the name and bytes of the "file" form field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}
