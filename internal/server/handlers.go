package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/audit"
	"github.com/AutmateStudio/Anonimiser/internal/requestctx"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	}
	if r.URL.Query().Get("detail") == "true" {
		components := map[string]string{
			"regex_detector": "ok",
		}
		if s.nerEnabled {
			components["ner_detector"] = "ok"
		} else {
			components["ner_detector"] = "disabled"
		}
		if s.auditStore == nil {
			components["audit_store"] = "disabled"
		} else {
			components["audit_store"] = "ok"
		}
		resp["components"] = components
	}
	writeJSON(w, http.StatusOK, resp)
}

type redactRequest struct {
	Text string `json:"text"`
}

type redactResponse struct {
	RedactedText   string            `json:"redacted_text"`
	Mapping        anonymize.Mapping `json:"mapping"`
	ProcessingTime float64           `json:"processing_time"`
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	if s.maxTextKB > 0 && len(req.Text) > s.maxTextKB*1024 {
		writeError(w, http.StatusRequestEntityTooLarge, "text_too_large",
			"text exceeds "+strconv.Itoa(s.maxTextKB)+" KB")
		return
	}

	res := s.anonymizer.Redact(r.Context(), req.Text)

	if s.auditGen != nil {
		caller := requestctx.Caller(r.Context())
		_, err := s.auditGen.Generate(r.Context(), audit.GenerateParams{
			Caller:     caller,
			Operation:  "redact",
			InputText:  req.Text,
			OutputText: res.RedactedText,
			Counts:     res.Counts,
			SpanCount:  res.SpanCount,
			DurationMS: int64(res.ProcessingTime * 1000),
		})
		if err != nil {
			// The redaction itself succeeded; losing one audit record is
			// logged, not surfaced to the caller.
			log.Error().Err(err).Str("caller", caller).Msg("audit_record_failed")
		}
	}

	writeJSON(w, http.StatusOK, redactResponse{
		RedactedText:   res.RedactedText,
		Mapping:        res.Mapping,
		ProcessingTime: res.ProcessingTime,
	})
}

type restoreRequest struct {
	Text    string            `json:"text"`
	Mapping map[string]string `json:"mapping"`
}

type restoreResponse struct {
	RestoredText string `json:"restored_text"`
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	writeJSON(w, http.StatusOK, restoreResponse{
		RestoredText: anonymize.Restore(req.Text, req.Mapping),
	})
}

func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		writeError(w, http.StatusNotFound, "not_found", "audit store is disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	caller := r.URL.Query().Get("caller")

	records, err := s.auditStore.List(r.Context(), caller, time.Time{}, time.Time{}, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleAuditGet(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		writeError(w, http.StatusNotFound, "not_found", "audit store is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.auditStore.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAuditVerify(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		writeError(w, http.StatusNotFound, "not_found", "audit store is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	valid, err := s.auditStore.Verify(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    id,
		"valid": valid,
	})
}
