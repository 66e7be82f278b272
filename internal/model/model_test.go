package model

import "testing"

func TestPlatformValid(t *testing.T) {
	for _, p := range Platforms {
		if !p.Valid() {
			t.Errorf("Valid(%s) = false", p)
		}
	}
	if Platform("telegram").Valid() {
		t.Error("Valid(telegram) = true")
	}
	if Platform("").Valid() {
		t.Error("Valid(empty) = true")
	}
}

func TestStatusOrdering(t *testing.T) {
	tests := []struct {
		s, other Status
		want     bool
	}{
		{Status(""), StatusSent, true},
		{StatusSent, StatusDelivered, true},
		{StatusDelivered, StatusRead, true},
		{StatusRead, StatusDelivered, false},
		{StatusDelivered, StatusDelivered, false},
		{StatusRead, StatusSent, false},
	}
	for _, tt := range tests {
		if got := tt.s.Before(tt.other); got != tt.want {
			t.Errorf("(%q).Before(%q) = %v, want %v", tt.s, tt.other, got, tt.want)
		}
	}
}

func TestMessageCloneIsDeep(t *testing.T) {
	orig := Message{
		ID:        "m1",
		Text:      "hi",
		Sender:    SenderPeer,
		Kind:      KindText,
		Reactions: []Reaction{{Emoji: "👍", Count: 1, Reacted: true}},
		ReplyTo:   &ReplyRef{ID: "m0", Text: "earlier", Sender: SenderSelf, Kind: KindText},
	}

	clone := orig.Clone()
	clone.Reactions[0].Count = 99
	clone.ReplyTo.Text = "mutated"

	if orig.Reactions[0].Count != 1 {
		t.Error("reaction mutation leaked into original")
	}
	if orig.ReplyTo.Text != "earlier" {
		t.Error("reply ref mutation leaked into original")
	}
}

func TestMessageCloneNilFields(t *testing.T) {
	clone := Message{ID: "m1", Kind: KindText}.Clone()
	if clone.Reactions != nil || clone.ReplyTo != nil {
		t.Errorf("clone = %+v, want nil optional fields preserved", clone)
	}
}
