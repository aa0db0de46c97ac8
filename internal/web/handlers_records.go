package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/sgq/internal/core"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport downloads one entity as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	data, err := s.service.Export(r.Context(), entity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeWorkbook(w, entity+".xlsx", data)
}

// handleExportAll downloads every entity, one sheet each.
func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportAll(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeWorkbook(w, "sgq.xlsx", data)
}

func writeWorkbook(w http.ResponseWriter, fileName string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleListRecords returns an entity's records as JSON.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.List(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if recs == nil {
		recs = []core.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleUpdateRecord applies a JSON patch of field values to one record.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	def, ok := core.Get(entity)
	if !ok {
		s.respondError(w, r, core.ErrUnknownEntity)
		return
	}

	patch, err := decodePatch(def, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rec, err := s.service.UpdateRecord(r.Context(), entity, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord removes one record and its dependents.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteRecord(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodePatch reads a JSON object of field values. Nested collections are
// decoded as lists of {"title", "value"} items.
func decodePatch(def core.EntityDefinition, r *http.Request) (core.Record, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no fields", errBadBody)
	}

	nested := make(map[string]bool, len(def.Nested))
	for _, n := range def.Nested {
		nested[n.Key] = true
	}

	patch := make(core.Record, len(raw))
	for key, msg := range raw {
		if nested[key] {
			var items []core.LineItem
			if err := json.Unmarshal(msg, &items); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", errBadBody, key, err)
			}
			patch[key] = items
			continue
		}

		var value any
		if err := json.Unmarshal(msg, &value); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errBadBody, key, err)
		}
		patch[key] = value
	}
	return patch, nil
}
