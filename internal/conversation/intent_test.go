package conversation

import "testing"

func TestClassifyIntentReset(t *testing.T) {
	for _, input := range []string{"reset", "RESET", "Reset", "  reset  ", "\treset\n"} {
		intent := ClassifyIntent(input)
		if intent.Kind != IntentReset {
			t.Fatalf("ClassifyIntent(%q) = %v, want reset", input, intent.Kind)
		}
	}
}

func TestClassifyIntentImage(t *testing.T) {
	cases := []struct {
		input   string
		keyword string
	}{
		{"image: cats", "cats"},
		{"image:cats", "cats"},
		{"IMAGE: sunset over water", "sunset over water"},
		{"show me dogs", "dogs"},
		{"Show Me golden retrievers ", "golden retrievers"},
		{"  image:   ", ""},
		{"show me", ""},
	}
	for _, tc := range cases {
		intent := ClassifyIntent(tc.input)
		if intent.Kind != IntentImage {
			t.Fatalf("ClassifyIntent(%q) = %v, want image", tc.input, intent.Kind)
		}
		if intent.Keyword != tc.keyword {
			t.Fatalf("ClassifyIntent(%q) keyword = %q, want %q", tc.input, intent.Keyword, tc.keyword)
		}
	}
}

func TestClassifyIntentChat(t *testing.T) {
	for _, input := range []string{"Hello", "resetting my password", "imagery question", "can you show me around?"} {
		intent := ClassifyIntent(input)
		if input == "can you show me around?" {
			// "show me" only matches as a leading marker.
			if intent.Kind != IntentChat {
				t.Fatalf("ClassifyIntent(%q) = %v, want chat", input, intent.Kind)
			}
			continue
		}
		if intent.Kind != IntentChat {
			t.Fatalf("ClassifyIntent(%q) = %v, want chat", input, intent.Kind)
		}
		if intent.Text != input {
			t.Fatalf("ClassifyIntent(%q) text = %q, want verbatim", input, intent.Text)
		}
	}
}

func TestClassifyIntentKindString(t *testing.T) {
	if IntentReset.String() != "reset" || IntentImage.String() != "image" || IntentChat.String() != "chat" {
		t.Fatal("unexpected intent kind labels")
	}
}
