package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"

	"github.com/leomayn/planner/internal/pdf"
	"github.com/leomayn/planner/internal/planner"
	"github.com/leomayn/planner/internal/report"
	"github.com/leomayn/planner/internal/store"
)

// uuidV4Pattern matches a version 4 UUID. Identifiers are checked before any
// store lookup so malformed input never reaches the backend.
var uuidV4Pattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// QualifyResponse reports whether a lead proceeds to the diagnostic.
type QualifyResponse struct {
	Qualified bool `json:"qualified"`
}

func (s *Server) handleQualify(w http.ResponseWriter, r *http.Request) {
	var q planner.QualificationData
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	qualified, err := s.assembler.Qualify(r.Context(), &q)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, QualifyResponse{Qualified: qualified})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var d planner.DiagnosticData
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := s.assembler.Score(&d)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req report.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp, err := s.assembler.Generate(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// handlePDF renders the stored report to PDF on every request. Rendering is
// cheap relative to storing binaries, and the Cache-Control header lets the
// client keep its copy for an hour.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !uuidV4Pattern.MatchString(id) {
		errorResponse(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "Report not found or has expired")
			return
		}
		log.Printf("report lookup failed for %s: %v", id, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load report")
		return
	}

	data, err := s.renderer.Render(r.Context(), rec)
	if err != nil {
		log.Printf("pdf render failed for %s: %v", id, err)
		errorResponse(w, http.StatusInternalServerError, "PDF generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+pdf.Filename(rec.Company)+`"`)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("pdf write failed for %s: %v", id, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps validation failures to 400 responses with per-field detail
// and everything else to a 500.
func writeError(w http.ResponseWriter, err error) {
	var fields planner.FieldErrors
	if errors.As(err, &fields) {
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid input",
			"details": fields,
		})
		return
	}
	log.Printf("request failed: %v", err)
	errorResponse(w, http.StatusInternalServerError, "Internal server error")
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
