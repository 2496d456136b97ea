package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	rerr "github.com/recall-oss/recall/internal/errors"
	"github.com/recall-oss/recall/internal/memory"
)

// --- Requests ---

type createMemoryRequest struct {
	UserID   string          `json:"user_id"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type updateMemoryRequest struct {
	Content  *string         `json:"content,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// parseMetadata decodes an optional metadata field. Absent and JSON
// null both mean "not supplied"; anything but an object is rejected.
func parseMetadata(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, rerr.New(rerr.CodeValidation, "invalid metadata")
	}
	return metadata, nil
}

// parseLimit reads an optional positive limit query parameter.
// Absent means "use the operation default" (signalled as 0).
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, rerr.New(rerr.CodeValidation, "limit must be a positive integer")
	}
	return limit, nil
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.lc.State()
	body := map[string]interface{}{
		"name":     s.cfg.Name,
		"version":  s.cfg.Version,
		"state":    state.String(),
		"backends": s.lc.Backends(),
	}
	if !s.lc.Ready() {
		body["status"] = "unavailable"
		jsonResponse(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "healthy"
	jsonResponse(w, http.StatusOK, body)
}

// --- Memory records ---

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req createMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	metadata, err := parseMetadata(req.Metadata)
	if err != nil {
		respondError(w, err)
		return
	}

	id, err := s.svc.Create(r.Context(), req.UserID, req.Content, metadata)
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{
		"id":      id,
		"message": "Memory added successfully",
	})
}

func (s *Server) handleSearchMemories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	userID := r.URL.Query().Get("user_id")
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, err)
		return
	}

	results, err := s.svc.Search(r.Context(), query, userID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleGetUserMemories(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	records, err := s.svc.ListByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"memories": records,
		"count":    len(records),
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("memory_id")

	rec, err := s.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"memory": rec})
}

func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("memory_id")
	var req updateMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	metadata, err := parseMetadata(req.Metadata)
	if err != nil {
		respondError(w, err)
		return
	}

	rec, err := s.svc.Update(r.Context(), id, memory.UpdateFields{
		Content:  req.Content,
		Metadata: metadata,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Memory updated successfully",
		"memory":  rec,
	})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("memory_id")

	deleted, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Memory deleted successfully",
		"deleted": deleted,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := s.svc.History(r.Context(), userID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	})
}
