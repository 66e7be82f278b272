package linkedin

import (
	"context"
	"testing"

	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

func TestFixtureContacts(t *testing.T) {
	a := New(zap.NewNop())
	if !a.IsConfigured() {
		t.Fatal("IsConfigured() = false, want always true")
	}

	contacts, err := a.FetchContacts(context.Background())
	if err != nil {
		t.Fatalf("FetchContacts() error = %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	for _, c := range contacts {
		if c.Platform != model.LinkedIn {
			t.Errorf("contact %s platform = %q", c.ID, c.Platform)
		}
		if c.Role == "" {
			t.Errorf("contact %s has no role", c.ID)
		}
	}
}

func TestFetchReturnsCopies(t *testing.T) {
	a := New(zap.NewNop())

	contacts, _ := a.FetchContacts(context.Background())
	contacts[0].Name = "mutated"
	again, _ := a.FetchContacts(context.Background())
	if again[0].Name == "mutated" {
		t.Error("contact mutation leaked into adapter state")
	}

	msgs, err := a.FetchMessages(context.Background(), "li-1")
	if err != nil {
		t.Fatalf("FetchMessages() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	msgs[0].Text = "mutated"
	again2, _ := a.FetchMessages(context.Background(), "li-1")
	if again2[0].Text == "mutated" {
		t.Error("message mutation leaked into adapter state")
	}
}

func TestFetchMessagesUnknownContact(t *testing.T) {
	a := New(zap.NewNop())
	msgs, err := a.FetchMessages(context.Background(), "no-such")
	if err != nil {
		t.Fatalf("FetchMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages for unknown contact, want 0", len(msgs))
	}
}

func TestDocumentFixtureCarriesFileName(t *testing.T) {
	a := New(zap.NewNop())
	msgs, _ := a.FetchMessages(context.Background(), "li-1")

	var doc *model.Message
	for i := range msgs {
		if msgs[i].Kind == model.KindDocument {
			doc = &msgs[i]
		}
	}
	if doc == nil {
		t.Fatal("no document message in fixture history")
	}
	if doc.FileName != "Resume_2024.pdf" {
		t.Errorf("file name = %q, want Resume_2024.pdf", doc.FileName)
	}
}

func TestSendIsAccepted(t *testing.T) {
	a := New(zap.NewNop())
	if err := a.Send(context.Background(), "li-2", "hello", ""); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}
