// Package search runs cross-conversation queries over the conversation
// store's cached state.
package search

import (
	"strings"

	"github.com/suziewongzie/UniChat/internal/model"
)

// Snapshot is the read surface the engine queries. The conversation store
// satisfies it; fakes stand in for tests.
type Snapshot interface {
	Contacts() []model.Contact
	Messages(contactID string) []model.Message
}

// Search matches contacts by name and messages by kind and text across
// every connected platform. Results come back in two fixed passes, each
// in insertion order: contact-name matches first, then message matches in
// contact-list order. No relevance ranking.
//
// The contact pass only runs when kinds is empty or includes text. An
// empty query matches everything, so kind filters alone enumerate all
// media of that kind. Document matches also consider the file name.
func Search(snap Snapshot, connected func(model.Platform) bool, query string, kinds []model.Kind) []model.SearchResult {
	lower := strings.ToLower(query)
	contacts := snap.Contacts()
	results := []model.SearchResult{}

	if len(kinds) == 0 || containsKind(kinds, model.KindText) {
		for i := range contacts {
			c := contacts[i]
			if !connected(c.Platform) {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), lower) {
				results = append(results, model.SearchResult{
					Type:    model.ResultContact,
					Contact: c,
					Match:   model.MatchName,
				})
			}
		}
	}

	for i := range contacts {
		c := contacts[i]
		if !connected(c.Platform) {
			continue
		}
		for _, msg := range snap.Messages(c.ID) {
			if len(kinds) > 0 && !containsKind(kinds, msg.Kind) {
				continue
			}
			if !matchesQuery(msg, lower) {
				continue
			}
			m := msg
			results = append(results, model.SearchResult{
				Type:    model.ResultMessage,
				Contact: c,
				Message: &m,
				Match:   string(msg.Kind),
			})
		}
	}

	return results
}

func matchesQuery(msg model.Message, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	if strings.Contains(strings.ToLower(msg.Text), lowerQuery) {
		return true
	}
	return msg.FileName != "" && strings.Contains(strings.ToLower(msg.FileName), lowerQuery)
}

func containsKind(kinds []model.Kind, k model.Kind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
