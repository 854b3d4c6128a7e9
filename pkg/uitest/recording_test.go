package uitest

import (
	"context"
	"errors"
	"testing"
)

func TestRecordingEnforcesTransactionDiscipline(t *testing.T) {
	b := NewRecordingBridge()

	if err := b.StartBatchUpdate(); err == nil {
		t.Error("StartBatchUpdate before Initialize succeeded")
	}
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := b.CreateView("v1", "View", nil); err == nil {
		t.Error("CreateView outside batch succeeded")
	}
	if err := b.StartBatchUpdate(); err != nil {
		t.Fatalf("StartBatchUpdate: %v", err)
	}
	if err := b.StartBatchUpdate(); err == nil {
		t.Error("nested StartBatchUpdate succeeded")
	}
	if err := b.CreateView("v1", "View", nil); err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if err := b.CommitBatchUpdate(context.Background()); err != nil {
		t.Fatalf("CommitBatchUpdate: %v", err)
	}
	if got := b.Commits(); got != 1 {
		t.Errorf("Commits() = %d, want 1", got)
	}
}

func TestScriptedCommitErrorClosesBatch(t *testing.T) {
	b := NewRecordingBridge()
	b.Initialize(context.Background())

	hostErr := errors.New("rejected")
	b.ScriptCommitError(hostErr)

	b.StartBatchUpdate()
	if err := b.CommitBatchUpdate(context.Background()); !errors.Is(err, hostErr) {
		t.Fatalf("CommitBatchUpdate = %v, want scripted error", err)
	}
	if got := b.Commits(); got != 0 {
		t.Errorf("Commits() = %d after rejection, want 0", got)
	}
	// The batch is closed; the next one starts cleanly and succeeds.
	if err := b.StartBatchUpdate(); err != nil {
		t.Fatalf("StartBatchUpdate after rejection: %v", err)
	}
	if err := b.CommitBatchUpdate(context.Background()); err != nil {
		t.Fatalf("CommitBatchUpdate: %v", err)
	}
}

func TestLastBatchExcludesControlCalls(t *testing.T) {
	b := NewRecordingBridge()
	b.Initialize(context.Background())
	b.StartBatchUpdate()
	b.CreateView("v1", "View", nil)
	b.AttachView("v1", "root", 0)
	b.CommitBatchUpdate(context.Background())

	batch := b.LastBatch()
	if len(batch) != 2 || batch[0].Method != "CreateView" || batch[1].Method != "AttachView" {
		t.Errorf("LastBatch = %+v, want the two view commands", batch)
	}
}
