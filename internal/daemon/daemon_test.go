package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/suziewongzie/UniChat/internal/bus"
	"github.com/suziewongzie/UniChat/internal/connection"
	"github.com/suziewongzie/UniChat/internal/convo"
	"github.com/suziewongzie/UniChat/internal/creds"
	"github.com/suziewongzie/UniChat/internal/lock"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/platform"
	"github.com/suziewongzie/UniChat/internal/platform/linkedin"
	"github.com/suziewongzie/UniChat/internal/replygen"
	"github.com/suziewongzie/UniChat/internal/search"
	"github.com/suziewongzie/UniChat/internal/simulator"
	"go.uber.org/zap"
)

// Wires the real components together the way the fx module does and walks
// one full conversation round trip: connect, load, send, simulated reply.
func TestDaemonRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	lk, err := lock.Acquire(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	db, err := creds.Open(filepath.Join(tmpDir, "creds.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	logger := zap.NewNop()
	b := bus.New()
	credsStore := creds.NewStore(db, nil, logger)

	adapters := []platform.Adapter{linkedin.New(logger)}
	manager := connection.NewManager(credsStore, b, time.Millisecond, logger)
	defer manager.Close()
	store := convo.NewStore(adapters, manager, b, time.Millisecond, logger)
	sim := simulator.New(store, replygen.Canned{}, time.Millisecond, 2*time.Millisecond, logger)
	defer sim.Stop()
	store.SetSendHook(sim.Schedule)

	connCh, unsub := b.Subscribe(bus.KindConnectionChanged, 10)
	defer unsub()
	recvCh, unsubRecv := b.Subscribe(bus.KindMessageReceived, 10)
	defer unsubRecv()

	// Connect the fixture platform.
	if _, err := manager.Toggle(model.LinkedIn); err != nil {
		t.Fatal(err)
	}
	select {
	case <-connCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connect confirmation")
	}

	contacts, err := store.LoadContacts(context.Background(), model.LinkedIn)
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) == 0 {
		t.Fatal("no contacts after connect")
	}

	target := contacts[0]
	if _, err := store.LoadMessages(context.Background(), target.ID); err != nil {
		t.Fatal(err)
	}

	sent, err := store.Send(context.Background(), target.ID, "ping", "")
	if err != nil {
		t.Fatal(err)
	}

	// The simulator must come back with a peer reply.
	select {
	case evt := <-recvCh:
		payload, ok := evt.Payload.(bus.MessageReceived)
		if !ok {
			t.Fatalf("payload = %T, want MessageReceived", evt.Payload)
		}
		if payload.ContactID != target.ID || payload.Message.Sender != model.SenderPeer {
			t.Errorf("reply = %+v, want peer reply for %s", payload, target.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for simulated reply")
	}

	history := store.Messages(target.ID)
	var sawSent, sawReply bool
	for _, m := range history {
		if m.ID == sent.ID {
			sawSent = true
		}
		if m.Sender == model.SenderPeer && m.Text != "" && m.ID != sent.ID {
			sawReply = true
		}
	}
	if !sawSent || !sawReply {
		t.Errorf("history = %+v, want both the sent message and the reply", history)
	}

	// Search sees the round trip through connected platforms only.
	results := search.Search(store, manager.IsConnected, "ping", nil)
	found := false
	for _, r := range results {
		if r.Type == model.ResultMessage && r.Message != nil && r.Message.ID == sent.ID {
			found = true
		}
	}
	if !found {
		t.Error("search did not surface the sent message")
	}
}

// The manager refuses to bring up a platform with no stored credentials.
func TestDaemonAutoConnectSkipsUnconfigured(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := creds.Open(filepath.Join(tmpDir, "creds.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	logger := zap.NewNop()
	credsStore := creds.NewStore(db, nil, logger)
	manager := connection.NewManager(credsStore, nil, time.Millisecond, logger)
	defer manager.Close()

	if credsStore.IsConfigured(model.WhatsApp) {
		t.Fatal("empty store reports whatsapp configured")
	}
	if _, err := manager.Toggle(model.WhatsApp); err == nil {
		t.Fatal("Toggle(whatsapp) without credentials should fail")
	}

	// LinkedIn needs no credentials and connects immediately.
	if !credsStore.IsConfigured(model.LinkedIn) {
		t.Fatal("linkedin should always count as configured")
	}
	if _, err := manager.Toggle(model.LinkedIn); err != nil {
		t.Fatalf("Toggle(linkedin) error = %v", err)
	}
}
