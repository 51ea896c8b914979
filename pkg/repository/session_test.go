package repository_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/repository"
	"github.com/m-mizutani/gt"
)

func TestCreateIsIdempotent(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())

	session := store.Create("s1", map[string]any{"team": "platform"})
	_, err := store.Append("s1", model.Record{Kind: model.KindMessage, Text: "hello"}, false)
	gt.NoError(t, err)

	again := store.Create("s1", map[string]any{"team": "other"})
	gt.Equal(t, again, session)
	gt.V(t, len(store.History("s1", 0))).Equal(1)
	gt.V(t, again.Metadata["team"]).Equal("platform")
}

func TestAppendCreatesSessionImplicitly(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())

	event, err := store.Append("implicit", model.Record{Kind: model.KindMessage, Role: "user", Text: "hi"}, false)
	gt.NoError(t, err)
	gt.V(t, event.TS.IsZero()).Equal(false)

	history := store.History("implicit", 0)
	gt.V(t, len(history)).Equal(1)
	gt.V(t, history[0].Record.Text).Equal("hi")
}

func TestHistoryOrderAndLastN(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())

	for i := 0; i < 5; i++ {
		_, err := store.Append("s1", model.Record{Kind: model.KindMessage, Text: fmt.Sprintf("msg-%d", i)}, false)
		gt.NoError(t, err)
	}

	all := store.History("s1", 0)
	gt.V(t, len(all)).Equal(5)
	for i, event := range all {
		gt.V(t, event.Record.Text).Equal(fmt.Sprintf("msg-%d", i))
	}

	last2 := store.History("s1", 2)
	gt.V(t, len(last2)).Equal(2)
	gt.V(t, last2[0].Record.Text).Equal("msg-3")
	gt.V(t, last2[1].Record.Text).Equal("msg-4")

	// lastN larger than the history returns everything
	gt.V(t, len(store.History("s1", 100))).Equal(5)
}

func TestHistoryUnknownSession(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())
	gt.V(t, len(store.History("nope", 0))).Equal(0)
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewSessionStore(dir)

	store.Create("s1", map[string]any{"topic": "refunds"})
	_, err := store.Append("s1", model.Record{Kind: model.KindMessage, Role: "user", Text: "hello"}, false)
	gt.NoError(t, err)
	_, err = store.Append("s1", model.Record{Kind: model.KindToolCall, Text: "search refund"}, false)
	gt.NoError(t, err)

	ok, err := store.Checkpoint("s1")
	gt.NoError(t, err)
	gt.V(t, ok).Equal(true)

	// Fresh store simulates a restarted process
	fresh := repository.NewSessionStore(dir)
	restored, err := fresh.Restore("s1")
	gt.NoError(t, err)
	gt.V(t, restored).NotNil()
	gt.V(t, restored.ID).Equal(model.SessionID("s1"))
	gt.V(t, restored.Metadata["topic"]).Equal("refunds")
	gt.V(t, len(restored.History)).Equal(2)
	gt.V(t, restored.History[1].Record.Kind).Equal(model.KindToolCall)
}

func TestCheckpointUnknownSession(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())

	ok, err := store.Checkpoint("unknown")
	gt.NoError(t, err)
	gt.V(t, ok).Equal(false)
}

func TestAppendWithCheckpoint(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewSessionStore(dir)

	_, err := store.Append("s1", model.Record{Kind: model.KindMessage, Text: "saved"}, true)
	gt.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "s1.json"))
	gt.NoError(t, err)
}

func TestRestoreWithoutCheckpoint(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())

	session, err := store.Restore("never-saved")
	gt.NoError(t, err)
	gt.V(t, session == nil).Equal(true)
}

func TestRestoreOverwritesInMemoryState(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewSessionStore(dir)

	_, err := store.Append("s1", model.Record{Kind: model.KindMessage, Text: "before"}, true)
	gt.NoError(t, err)

	// Diverge in memory after the checkpoint
	_, err = store.Append("s1", model.Record{Kind: model.KindMessage, Text: "after"}, false)
	gt.NoError(t, err)
	gt.V(t, len(store.History("s1", 0))).Equal(2)

	restored, err := store.Restore("s1")
	gt.NoError(t, err)
	gt.V(t, len(restored.History)).Equal(1)
	gt.V(t, len(store.History("s1", 0))).Equal(1)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewSessionStore(dir)

	_, err := store.Append("s1", model.Record{Kind: model.KindMessage, Text: "x"}, true)
	gt.NoError(t, err)

	gt.NoError(t, store.Clear("s1"))
	gt.V(t, len(store.History("s1", 0))).Equal(0)

	_, statErr := os.Stat(filepath.Join(dir, "s1.json"))
	gt.V(t, os.IsNotExist(statErr)).Equal(true)

	// Clearing again (or clearing something unknown) is fine
	gt.NoError(t, store.Clear("s1"))
	gt.NoError(t, store.Clear("never-existed"))
}

func TestConcurrentAppends(t *testing.T) {
	store := repository.NewSessionStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Append("shared", model.Record{Kind: model.KindMessage, Text: fmt.Sprintf("m%d", n)}, false)
			gt.NoError(t, err)
		}(i)
	}
	wg.Wait()

	gt.V(t, len(store.History("shared", 0))).Equal(20)
}
