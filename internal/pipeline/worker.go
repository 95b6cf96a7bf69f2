package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rgoodwin/lexchunk/internal/chunker"
	"github.com/rgoodwin/lexchunk/internal/docmodel"
	"github.com/rgoodwin/lexchunk/internal/extract"
	"github.com/rgoodwin/lexchunk/internal/indexstore"
	"github.com/rgoodwin/lexchunk/internal/parser"
	"github.com/rgoodwin/lexchunk/internal/render"
)

// Worker runs the pipeline phases for a single job.
type Worker struct {
	docs     *DocumentStore
	index    *indexstore.Client
	stats    *extract.StageStats
	log      *slog.Logger
	chunkCfg chunker.Config

	pdfFallback bool
	indexing    bool
}

func NewWorker(docs *DocumentStore, index *indexstore.Client, stats *extract.StageStats, log *slog.Logger, chunkCfg chunker.Config, pdfFallback, indexing bool) *Worker {
	return &Worker{
		docs:        docs,
		index:       index,
		stats:       stats,
		log:         log,
		chunkCfg:    chunkCfg,
		pdfFallback: pdfFallback,
		indexing:    indexing,
	}
}

// Process runs the pipeline for a job. Runs over the same document are
// serialized so concurrent re-chunk/re-index requests cannot interleave.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "mode", job.Mode)

	state := w.docs.GetOrCreate(job.DocID)
	state.LockRun()
	defer state.UnlockRun()

	switch job.Mode {
	case ModeReindex:
		set := state.Chunks()
		if set == nil {
			job.AddError("document has no chunk set; run chunking first")
			job.SetStatus(StatusFailed, "indexing")
			return
		}
		job.SetTotalChunks(len(set.Chunks))
		// A reindex after a restart has no local record of what is
		// already indexed; seed it from the index so the stale diff
		// still cleans up.
		if w.indexing && w.index != nil && len(state.IndexedChunkIDs()) == 0 {
			if ids, err := w.index.ListChunkIDs(ctx, job.DocID); err == nil {
				state.SwapIndexedChunkIDs(ids)
			}
		}
		if !w.indexChunks(ctx, job, state, set, log) {
			return
		}
		job.SetStatus(StatusCompleted, "done")
		return

	case ModeRechunk:
		doc := state.Document()
		if doc == nil {
			job.AddError("document has not been parsed; upload it first")
			job.SetStatus(StatusFailed, "chunking")
			return
		}
		w.runFromChunking(ctx, job, state, doc, log)
		return
	}

	// Full run: parse the raw upload first.
	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.parse(job)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	state.SetDocument(doc)
	state.SetMeta(job.Filename, doc.Source.SHA256)
	log.Info("parsed document", "blocks", len(doc.Blocks), "pages", doc.PageCount)

	w.runFromChunking(ctx, job, state, doc, log)
}

// parse picks a parser by extension and builds the block stream.
func (w *Worker) parse(job *Job) (*docmodel.Document, error) {
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		return nil, err
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	start := time.Now()
	data := job.FileData()
	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	w.stats.Record("parse", time.Since(start).Milliseconds())

	doc.DocID = job.DocID
	doc.Source = &docmodel.Source{
		Filename: job.Filename,
		SHA256:   ContentHashHex(data),
	}
	return doc, nil
}

// runFromChunking executes chunk, extract, render and index phases.
func (w *Worker) runFromChunking(ctx context.Context, job *Job, state *DocumentState, doc *docmodel.Document, log *slog.Logger) {
	// Phase: chunk.
	job.SetStatus(StatusChunking, "chunking")
	cfg := w.chunkCfg
	if job.MaxChars > 0 {
		cfg.MaxChars = job.MaxChars
	}
	cfg.PageStart = job.PageStart
	cfg.PageEnd = job.PageEnd

	start := time.Now()
	set, err := chunker.ChunkDocument(doc, cfg)
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(fmt.Sprintf("chunk: %s", err))
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	w.stats.Record("chunk", time.Since(start).Milliseconds())
	state.SetChunks(set)
	job.SetTotalChunks(len(set.Chunks))
	log.Info("chunked document", "chunks", len(set.Chunks))

	// Phase: extract definitions and entitlements.
	job.SetStatus(StatusExtracting, "extracting")

	start = time.Now()
	defs, err := extract.ExtractDefinitions(set)
	if err != nil {
		log.Error("definitions extraction failed", "error", err)
		job.AddError(fmt.Sprintf("definitions: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	defs.Definitions = filterDefinitions(defs.Definitions)
	w.stats.Record("definitions", time.Since(start).Milliseconds())
	state.SetDefinitions(defs)

	start = time.Now()
	ents, err := extract.ExtractEntitlements(set)
	if err != nil {
		log.Error("entitlements extraction failed", "error", err)
		job.AddError(fmt.Sprintf("entitlements: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	ents.Entitlements.Products = filterProducts(ents.Entitlements.Products)
	ents.Entitlements.References = filterReferences(ents.Entitlements.References)
	w.stats.Record("entitlements", time.Since(start).Milliseconds())
	state.SetEntitlements(ents)

	job.SetExtractCounts(len(defs.Definitions), len(ents.Entitlements.Products), len(ents.Entitlements.References))
	log.Info("extraction complete",
		"definitions", len(defs.Definitions),
		"products", len(ents.Entitlements.Products),
		"references", len(ents.Entitlements.References),
		"status", ents.Entitlements.Status)

	// Phase: render artifacts.
	job.SetStatus(StatusRendering, "rendering")
	start = time.Now()
	if err := w.renderArtifacts(state, defs, ents); err != nil {
		log.Error("rendering failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	w.stats.Record("render", time.Since(start).Milliseconds())

	// Phase: index.
	if !w.indexChunks(ctx, job, state, set, log) {
		return
	}

	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) renderArtifacts(state *DocumentState, defs *extract.DefinitionsResult, ents *extract.EntitlementsResult) error {
	var defsCSV bytes.Buffer
	if err := render.WriteDefinitionsCSV(&defsCSV, state.DocID, defs.Definitions); err != nil {
		return err
	}
	var entsCSV bytes.Buffer
	if err := render.WriteEntitlementsCSV(&entsCSV, state.DocID, ents.Entitlements.Products); err != nil {
		return err
	}
	pack := render.BuildReviewPack(state.ReviewPack(), defs.Definitions, ents.Entitlements)
	state.SetArtifacts(pack, defsCSV.Bytes(), entsCSV.Bytes())
	return nil
}

// indexChunks upserts the chunk set and deletes entries whose ids no
// longer appear after a re-chunk. Returns false if the job failed.
func (w *Worker) indexChunks(ctx context.Context, job *Job, state *DocumentState, set *docmodel.ChunkSet, log *slog.Logger) bool {
	if !w.indexing || w.index == nil {
		return true
	}
	job.SetStatus(StatusIndexing, "indexing")

	start := time.Now()
	if err := withRetry(ctx, func() error {
		return w.index.UpsertChunks(ctx, state.DocID, set)
	}); err != nil {
		log.Error("index upsert failed", "error", err)
		job.AddError(fmt.Sprintf("index: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return false
	}

	newIDs := make([]string, 0, len(set.Chunks))
	for _, ch := range set.Chunks {
		newIDs = append(newIDs, ch.ChunkID)
	}
	prevIDs := state.SwapIndexedChunkIDs(newIDs)

	stale := staleIDs(prevIDs, newIDs)
	if len(stale) > 0 {
		if err := withRetry(ctx, func() error {
			return w.index.DeleteChunks(ctx, state.DocID, stale)
		}); err != nil {
			// Upsert succeeded, so the run is usable; stale entries
			// just linger until the next successful cleanup.
			log.Warn("stale chunk cleanup failed", "stale", len(stale), "error", err)
			job.AddError(fmt.Sprintf("index cleanup: %s", err))
			job.SetStatus(StatusPartial, "indexing")
		}
	}
	w.stats.Record("index", time.Since(start).Milliseconds())
	job.SetIndexedChunks(len(newIDs))
	log.Info("indexed chunks", "upserted", len(newIDs), "stale_deleted", len(stale))
	return true
}

// staleIDs returns members of prev not present in current.
func staleIDs(prev, current []string) []string {
	if len(prev) == 0 {
		return nil
	}
	keep := make(map[string]bool, len(current))
	for _, id := range current {
		keep[id] = true
	}
	var stale []string
	for _, id := range prev {
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	return stale
}

// withRetry retries retryable errors with exponential backoff.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func filterDefinitions(defs []extract.Definition) []extract.Definition {
	out := defs[:0]
	for i := range defs {
		if extract.ValidateDefinition(&defs[i]) {
			out = append(out, defs[i])
		}
	}
	return out
}

func filterProducts(products []extract.EntitlementProduct) []extract.EntitlementProduct {
	out := products[:0]
	for i := range products {
		if extract.ValidateProduct(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func filterReferences(refs []extract.EntitlementReference) []extract.EntitlementReference {
	out := refs[:0]
	for i := range refs {
		if extract.ValidateReference(&refs[i]) {
			out = append(out, refs[i])
		}
	}
	return out
}
