package delivery

import (
	"errors"
	"testing"
)

func TestOptionsKeyboardTwoPerRow(t *testing.T) {
	buttons := []Button{
		{Label: "360p", Token: "18 video"},
		{Label: "720p", Token: "22 video"},
		{Label: "1080p", Token: "137 video"},
		{Label: "128kbps", Token: "140 audio"},
		{Label: "256kbps", Token: "251 audio"},
	}

	kb := optionsKeyboard(buttons)

	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 || len(kb.InlineKeyboard[1]) != 2 {
		t.Error("full rows must carry two buttons")
	}
	if len(kb.InlineKeyboard[2]) != 1 {
		t.Errorf("last row must carry the leftover button, got %d", len(kb.InlineKeyboard[2]))
	}
	if *kb.InlineKeyboard[2][0].CallbackData != "251 audio" {
		t.Errorf("last button token = %q", *kb.InlineKeyboard[2][0].CallbackData)
	}
}

func TestClassifyMalformed(t *testing.T) {
	err := classify(errors.New("Bad Request: can't parse entities: Character '_' is reserved"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}

	other := classify(errors.New("Request Entity Too Large"))
	if errors.Is(other, ErrMalformed) {
		t.Error("unrelated errors must not classify as malformed")
	}

	if classify(nil) != nil {
		t.Error("nil must stay nil")
	}
}
