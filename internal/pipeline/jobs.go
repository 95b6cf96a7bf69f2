package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
	"github.com/rgoodwin/lexchunk/internal/extract"
)

// JobStatus represents the state of a processing job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusChunking   JobStatus = "chunking"
	StatusExtracting JobStatus = "extracting"
	StatusRendering  JobStatus = "rendering"
	StatusIndexing   JobStatus = "indexing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// JobMode selects which pipeline phases a job runs.
type JobMode string

const (
	// ModeProcess runs the full pipeline from the raw upload.
	ModeProcess JobMode = "process"
	// ModeRechunk reuses the parsed document and re-runs chunking onward.
	ModeRechunk JobMode = "rechunk"
	// ModeReindex reuses the existing chunk set and only re-indexes it.
	ModeReindex JobMode = "reindex"
)

// Job tracks the state of a single document run.
type Job struct {
	mu sync.Mutex

	ID    string  `json:"job_id"`
	DocID string  `json:"doc_id"`
	Mode  JobMode `json:"mode"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	// Per-run chunking overrides; zero values mean "use defaults".
	MaxChars  int `json:"max_chars,omitempty"`
	PageStart int `json:"page_start,omitempty"`
	PageEnd   int `json:"page_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks per-phase output counts.
type Progress struct {
	TotalChunks   int      `json:"total_chunks"`
	Definitions   int      `json:"definitions"`
	Products      int      `json:"products"`
	References    int      `json:"references"`
	IndexedChunks int      `json:"indexed_chunks"`
	Errors        []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalChunks records total chunk count.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// SetExtractCounts records extraction output counts.
func (j *Job) SetExtractCounts(definitions, products, references int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Definitions = definitions
	j.Progress.Products = products
	j.Progress.References = references
	j.UpdatedAt = time.Now()
}

// SetIndexedChunks records how many chunks were upserted to the index.
func (j *Job) SetIndexedChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.IndexedChunks = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	DocID    string    `json:"doc_id"`
	Mode     JobMode   `json:"mode"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		DocID:    j.DocID,
		Mode:     j.Mode,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			TotalChunks:   j.Progress.TotalChunks,
			Definitions:   j.Progress.Definitions,
			Products:      j.Progress.Products,
			References:    j.Progress.References,
			IndexedChunks: j.Progress.IndexedChunks,
			Errors:        errs,
		},
	}
}

// DocumentState holds every artifact produced for one document. The
// run mutex serializes pipeline runs per document so a re-chunk never
// races a re-index over the same state.
type DocumentState struct {
	run sync.Mutex
	mu  sync.Mutex

	DocID       string
	Filename    string
	ContentHash string
	UploadedAt  time.Time

	document     *docmodel.Document
	chunks       *docmodel.ChunkSet
	definitions  *extract.DefinitionsResult
	entitlements *extract.EntitlementsResult

	reviewPack      string
	definitionsCSV  []byte
	entitlementsCSV []byte

	indexedChunkIDs []string
}

// LockRun blocks until no other pipeline run holds this document.
func (d *DocumentState) LockRun()   { d.run.Lock() }
func (d *DocumentState) UnlockRun() { d.run.Unlock() }

// SetMeta records upload metadata after a successful parse.
func (d *DocumentState) SetMeta(filename, contentHash string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Filename = filename
	d.ContentHash = contentHash
}

// DocumentSummary is a JSON-safe snapshot of a document's state.
type DocumentSummary struct {
	DocID         string    `json:"doc_id"`
	Filename      string    `json:"filename,omitempty"`
	ContentHash   string    `json:"content_hash,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Blocks        int       `json:"blocks"`
	Chunks        int       `json:"chunks"`
	Definitions   int       `json:"definitions"`
	Products      int       `json:"products"`
	References    int       `json:"references"`
	IndexedChunks int       `json:"indexed_chunks"`
}

// Summary returns counts without copying the underlying artifacts.
func (d *DocumentState) Summary() DocumentSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := DocumentSummary{
		DocID:         d.DocID,
		Filename:      d.Filename,
		ContentHash:   d.ContentHash,
		UploadedAt:    d.UploadedAt,
		IndexedChunks: len(d.indexedChunkIDs),
	}
	if d.document != nil {
		s.Blocks = len(d.document.Blocks)
	}
	if d.chunks != nil {
		s.Chunks = len(d.chunks.Chunks)
	}
	if d.definitions != nil {
		s.Definitions = len(d.definitions.Definitions)
	}
	if d.entitlements != nil {
		s.Products = len(d.entitlements.Entitlements.Products)
		s.References = len(d.entitlements.Entitlements.References)
	}
	return s
}

func (d *DocumentState) SetDocument(doc *docmodel.Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.document = doc
}

func (d *DocumentState) Document() *docmodel.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.document
}

func (d *DocumentState) SetChunks(set *docmodel.ChunkSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chunks = set
}

func (d *DocumentState) Chunks() *docmodel.ChunkSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chunks
}

func (d *DocumentState) SetDefinitions(res *extract.DefinitionsResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.definitions = res
}

func (d *DocumentState) Definitions() *extract.DefinitionsResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.definitions
}

func (d *DocumentState) SetEntitlements(res *extract.EntitlementsResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entitlements = res
}

func (d *DocumentState) Entitlements() *extract.EntitlementsResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entitlements
}

func (d *DocumentState) SetArtifacts(reviewPack string, definitionsCSV, entitlementsCSV []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reviewPack = reviewPack
	d.definitionsCSV = definitionsCSV
	d.entitlementsCSV = entitlementsCSV
}

func (d *DocumentState) ReviewPack() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reviewPack
}

func (d *DocumentState) DefinitionsCSV() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.definitionsCSV
}

func (d *DocumentState) EntitlementsCSV() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entitlementsCSV
}

// SwapIndexedChunkIDs records the ids now present in the index and
// returns the previous set, so callers can compute stale entries.
func (d *DocumentState) SwapIndexedChunkIDs(ids []string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.indexedChunkIDs
	d.indexedChunkIDs = ids
	return prev
}

func (d *DocumentState) IndexedChunkIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.indexedChunkIDs
}

// DocumentStore is a thread-safe in-memory document registry.
type DocumentStore struct {
	mu   sync.Mutex
	docs map[string]*DocumentState
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*DocumentState)}
}

// GetOrCreate returns the state for a document, creating it on first use.
func (s *DocumentStore) GetOrCreate(docID string) *DocumentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[docID]; ok {
		return d
	}
	d := &DocumentState{DocID: docID, UploadedAt: time.Now()}
	s.docs[docID] = d
	return d
}

func (s *DocumentStore) Get(docID string) *DocumentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[docID]
}

func (s *DocumentStore) Delete(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
}

// List returns doc ids in no particular order.
func (s *DocumentStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	return ids
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
