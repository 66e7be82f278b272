package search

import (
	"testing"

	"github.com/suziewongzie/UniChat/internal/model"
)

type fakeSnapshot struct {
	contacts []model.Contact
	messages map[string][]model.Message
}

func (f fakeSnapshot) Contacts() []model.Contact          { return f.contacts }
func (f fakeSnapshot) Messages(id string) []model.Message { return f.messages[id] }

func allConnected(model.Platform) bool { return true }

func testSnapshot() fakeSnapshot {
	return fakeSnapshot{
		contacts: []model.Contact{
			{ID: "c1", Name: "Jane Doe", Platform: model.WhatsApp},
			{ID: "c2", Name: "Sarah Connor", Platform: model.Instagram},
			{ID: "c3", Name: "Rachel Green", Platform: model.LinkedIn},
		},
		messages: map[string][]model.Message{
			"c1": {
				{ID: "m1", Text: "see you tomorrow", Kind: model.KindText},
				{ID: "m2", Text: "", Kind: model.KindImage, MediaURL: "https://cdn/a.jpg"},
			},
			"c2": {
				{ID: "m3", Text: "loved your story", Kind: model.KindText},
			},
			"c3": {
				{ID: "m4", Text: "Resume.pdf", Kind: model.KindDocument, FileName: "Resume_2024.pdf"},
			},
		},
	}
}

func TestSearchContactNamePass(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "jane", nil)

	if len(results) == 0 {
		t.Fatal("no results")
	}
	first := results[0]
	if first.Type != model.ResultContact || first.Contact.ID != "c1" || first.Match != model.MatchName {
		t.Errorf("first result = %+v, want contact c1 matched by name", first)
	}
}

func TestSearchMessagesAfterContacts(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "s", nil)

	var sawMessage bool
	for _, r := range results {
		switch r.Type {
		case model.ResultContact:
			if sawMessage {
				t.Fatal("contact result after message result, passes must not interleave")
			}
		case model.ResultMessage:
			sawMessage = true
		}
	}
	if !sawMessage {
		t.Fatal("no message results for query s")
	}
}

func TestSearchKindFilterWithEmptyQuery(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "", []model.Kind{model.KindImage})

	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly the one image", len(results))
	}
	r := results[0]
	if r.Type != model.ResultMessage || r.Message == nil || r.Message.ID != "m2" {
		t.Errorf("result = %+v, want message m2", r)
	}
	if r.Match != string(model.KindImage) {
		t.Errorf("match = %q, want image", r.Match)
	}
}

func TestSearchEmptyQueryNoFiltersListsEverything(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "", nil)

	var contactResults, messageResults int
	for _, r := range results {
		if r.Type == model.ResultContact {
			contactResults++
		} else {
			messageResults++
		}
	}
	if contactResults != 3 {
		t.Errorf("contact results = %d, want all 3", contactResults)
	}
	if messageResults != 4 {
		t.Errorf("message results = %d, want all 4", messageResults)
	}
}

func TestSearchDocumentFileName(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "2024", []model.Kind{model.KindDocument})

	if len(results) != 1 || results[0].Message == nil || results[0].Message.ID != "m4" {
		t.Fatalf("results = %+v, want the document matched by file name", results)
	}
}

func TestSearchSkipsDisconnectedPlatforms(t *testing.T) {
	connected := func(p model.Platform) bool { return p != model.Instagram }
	results := Search(testSnapshot(), connected, "", nil)

	for _, r := range results {
		if r.Contact.Platform == model.Instagram {
			t.Fatalf("result from disconnected platform: %+v", r)
		}
	}
}

func TestSearchMediaFilterSkipsContactPass(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "jane", []model.Kind{model.KindImage})

	for _, r := range results {
		if r.Type == model.ResultContact {
			t.Fatalf("contact result under media-only filter: %+v", r)
		}
	}
}

func TestSearchTextFilterKeepsContactPass(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "rachel", []model.Kind{model.KindText})

	if len(results) == 0 || results[0].Type != model.ResultContact {
		t.Fatalf("results = %+v, want contact pass under text filter", results)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	results := Search(testSnapshot(), allConnected, "LOVED", nil)

	found := false
	for _, r := range results {
		if r.Type == model.ResultMessage && r.Message.ID == "m3" {
			found = true
		}
	}
	if !found {
		t.Error("upper-case query missed lower-case message text")
	}
}
