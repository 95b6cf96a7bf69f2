package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rgoodwin/lexchunk/internal/docmodel"
	"github.com/rgoodwin/lexchunk/internal/pipeline"
)

// handleListDocuments lists known documents with summary counts.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.orchestrator.Docs()
	ids := docs.List()
	sort.Strings(ids)

	summaries := make([]pipeline.DocumentSummary, 0, len(ids))
	for _, id := range ids {
		if d := docs.Get(id); d != nil {
			summaries = append(summaries, d.Summary())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": summaries})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state.Summary())
}

func (s *Server) handleGetBlocks(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	doc := state.Document()
	if doc == nil {
		jsonError(w, "document has not been parsed", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleGetChunks(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	set := state.Chunks()
	if set == nil {
		jsonError(w, "document has not been chunked", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(set)
}

func (s *Server) handleGetDefinitions(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	res := state.Definitions()
	if res == nil {
		jsonError(w, "definitions have not been extracted", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleGetEntitlements(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	res := state.Entitlements()
	if res == nil {
		jsonError(w, "entitlements have not been extracted", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// handleGetExport serves rendered artifacts by name.
func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}

	switch chi.URLParam(r, "name") {
	case "definitions.csv":
		body := state.DefinitionsCSV()
		if body == nil {
			jsonError(w, "export not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write(body)
	case "entitlements.csv":
		body := state.EntitlementsCSV()
		if body == nil {
			jsonError(w, "export not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write(body)
	case "review.md":
		body := state.ReviewPack()
		if body == "" {
			jsonError(w, "export not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/markdown")
		w.Write([]byte(body))
	default:
		jsonError(w, "unknown export", http.StatusNotFound)
	}
}

// handlePutBlocks accepts a pre-parsed block stream from an external
// layout parser and stores it as the document's parsed form. Processing
// starts on a subsequent process call.
func (s *Server) handlePutBlocks(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var doc docmodel.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		jsonError(w, "invalid block stream: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(doc.Blocks) == 0 {
		jsonError(w, "block stream has no blocks", http.StatusBadRequest)
		return
	}
	doc.DocID = docID

	filename := ""
	if doc.Source != nil {
		filename = doc.Source.Filename
	}
	state := s.orchestrator.Docs().GetOrCreate(docID)
	state.SetMeta(filename, pipeline.ContentHashHex(body))
	state.SetDocument(&doc)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id": docID,
		"blocks": len(doc.Blocks),
	})
}

// handleProcess runs chunking, extraction, rendering and indexing for a
// parsed document, optionally with new chunking parameters. Serves both
// the process and rechunk routes; a re-run recomputes chunk ids and the
// index diff cleans up ids that disappeared.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	if state.Document() == nil {
		jsonError(w, "document has not been parsed", http.StatusConflict)
		return
	}

	var body struct {
		MaxChars  int `json:"max_chars"`
		PageStart int `json:"page_start"`
		PageEnd   int `json:"page_end"`
	}
	if r.Body != nil {
		// An empty body means "defaults".
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	job := newJob(state.DocID, "", pipeline.ModeRechunk)
	job.MaxChars = body.MaxChars
	job.PageStart = body.PageStart
	job.PageEnd = body.PageEnd

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeAccepted(w, job)
}

// handleReindex re-upserts the existing chunk set to the index.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	state := s.docState(w, r)
	if state == nil {
		return
	}
	if state.Chunks() == nil {
		jsonError(w, "document has not been chunked", http.StatusConflict)
		return
	}

	job := newJob(state.DocID, "", pipeline.ModeReindex)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeAccepted(w, job)
}

// handleDeleteDocument removes a document's artifacts and its indexed
// chunks.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	state := s.orchestrator.Docs().Get(docID)
	if state == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	indexDeleted := false
	if client := s.orchestrator.IndexClient(); client != nil {
		if err := client.DeleteDocument(r.Context(), docID); err != nil {
			s.log.Warn("index delete failed", "doc_id", docID, "error", err)
		} else {
			indexDeleted = true
		}
	}
	s.orchestrator.Docs().Delete(docID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":        docID,
		"deleted":       true,
		"index_deleted": indexDeleted,
	})
}

// docState resolves the docID URL param, writing a 404 when unknown.
func (s *Server) docState(w http.ResponseWriter, r *http.Request) *pipeline.DocumentState {
	docID := chi.URLParam(r, "docID")
	state := s.orchestrator.Docs().Get(docID)
	if state == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil
	}
	return state
}
