package pipeline

import (
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusChunking, "chunking"},
		{StatusExtracting, "extracting"},
		{StatusRendering, "rendering"},
		{StatusIndexing, "indexing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("chunk 3 failed")
	job.AddError("chunk 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "chunk 3 failed" {
		t.Errorf("expected first error %q, got %q", "chunk 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_SetExtractCounts(t *testing.T) {
	job := &Job{ID: "counts-test", UpdatedAt: time.Now()}
	job.SetExtractCounts(12, 3, 1)

	snap := job.Snapshot()
	if snap.Progress.Definitions != 12 {
		t.Errorf("expected 12 definitions, got %d", snap.Progress.Definitions)
	}
	if snap.Progress.Products != 3 {
		t.Errorf("expected 3 products, got %d", snap.Progress.Products)
	}
	if snap.Progress.References != 1 {
		t.Errorf("expected 1 reference, got %d", snap.Progress.References)
	}
}

func TestJob_SetTotalChunks(t *testing.T) {
	job := &Job{ID: "total-test", UpdatedAt: time.Now()}
	job.SetTotalChunks(42)

	snap := job.Snapshot()
	if snap.Progress.TotalChunks != 42 {
		t.Errorf("expected 42 total chunks, got %d", snap.Progress.TotalChunks)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestDocumentStore_GetOrCreate(t *testing.T) {
	store := NewDocumentStore()
	d1 := store.GetOrCreate("doc-1")
	d2 := store.GetOrCreate("doc-1")
	if d1 != d2 {
		t.Error("expected GetOrCreate to return the same state for the same id")
	}
	if store.Get("doc-1") != d1 {
		t.Error("expected Get to return the created state")
	}
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	store.GetOrCreate("doc-1")
	store.Delete("doc-1")
	if store.Get("doc-1") != nil {
		t.Error("expected deleted document to be gone")
	}
}

func TestDocumentState_SwapIndexedChunkIDs(t *testing.T) {
	d := &DocumentState{DocID: "doc-1"}

	prev := d.SwapIndexedChunkIDs([]string{"a", "b"})
	if prev != nil {
		t.Errorf("expected nil previous ids, got %v", prev)
	}

	prev = d.SwapIndexedChunkIDs([]string{"b", "c"})
	if len(prev) != 2 || prev[0] != "a" || prev[1] != "b" {
		t.Errorf("expected previous ids [a b], got %v", prev)
	}
}

func TestStaleIDs(t *testing.T) {
	stale := staleIDs([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	if len(stale) != 1 || stale[0] != "a" {
		t.Errorf("expected stale [a], got %v", stale)
	}

	if got := staleIDs(nil, []string{"x"}); got != nil {
		t.Errorf("expected nil for empty previous set, got %v", got)
	}
}

func TestNewID_UniqueAndSortable(t *testing.T) {
	seen := make(map[string]bool)
	var last string
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ULID, got %d chars: %q", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if last != "" && id < last {
			t.Fatalf("expected ids to be non-decreasing, got %q after %q", id, last)
		}
		last = id
	}
}
