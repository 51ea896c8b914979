package memory_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/repository"
	"github.com/entagent/entagent/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func newService(t *testing.T) *memory.Service {
	t.Helper()
	dir := t.TempDir()
	bank, err := repository.OpenBank(context.Background(), filepath.Join(dir, "bank.json"))
	gt.NoError(t, err)
	return memory.New(repository.NewSessionStore(filepath.Join(dir, "sessions")), bank)
}

func TestStartSession(t *testing.T) {
	svc := newService(t)

	session := svc.StartSession("named", map[string]any{"k": "v"})
	gt.V(t, session.ID).Equal(model.SessionID("named"))

	// Empty id gets a generated one
	generated := svc.StartSession("", nil)
	gt.V(t, generated.ID != "").Equal(true)
	gt.V(t, generated.ID != session.ID).Equal(true)
}

func TestAddMessageAndHistory(t *testing.T) {
	svc := newService(t)
	svc.StartSession("chat", nil)

	_, err := svc.AddMessage("chat", "user", "hello there")
	gt.NoError(t, err)
	_, err = svc.AddMessage("chat", "agent", "hi")
	gt.NoError(t, err)

	history := svc.GetSessionHistory("chat", 0)
	gt.V(t, len(history)).Equal(2)
	gt.V(t, history[0].Record.Kind).Equal(model.KindMessage)
	gt.V(t, history[0].Record.Role).Equal("user")
	gt.V(t, history[0].Record.Text).Equal("hello there")

	gt.V(t, len(svc.GetSessionHistory("chat", 1))).Equal(1)
}

func TestRememberRecallForget(t *testing.T) {
	svc := newService(t)

	mem, err := svc.Remember("Refund policy: takes 7 days", []string{"refund", "policy"}, nil)
	gt.NoError(t, err)
	_, err = svc.Remember("Troubleshooting guide for network issues", []string{"tech"}, nil)
	gt.NoError(t, err)

	recalled := svc.Recall("refund", 5, false)
	gt.V(t, len(recalled)).Equal(1)
	gt.V(t, recalled[0].ID).Equal(mem.ID)

	byTags := svc.Recall("refund policy", 5, true)
	gt.V(t, len(byTags)).Equal(1)

	removed, err := svc.Forget(mem.ID)
	gt.NoError(t, err)
	gt.V(t, removed).Equal(true)
	gt.V(t, len(svc.Recall("refund", 5, false))).Equal(0)

	removed, err = svc.Forget("mem_does_not_exist")
	gt.NoError(t, err)
	gt.V(t, removed).Equal(false)
}

func TestServiceExport(t *testing.T) {
	svc := newService(t)
	_, err := svc.Remember("exported fact", nil, nil)
	gt.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.json")
	gt.NoError(t, svc.Export(path))
}
