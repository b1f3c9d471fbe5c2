package sanitize

import "testing"

func TestText_StripsTagsAndEncodedTags(t *testing.T) {
	got := Text("Call  me <b>tomorrow</b> &lt;script&gt;x&lt;/script&gt;")
	if got != "Call me tomorrow x" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}

func TestTextPtr_Nil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil")
	}
}

func TestEmail_Normalizes(t *testing.T) {
	if got := Email("  Ali@Example.SA "); got != "ali@example.sa" {
		t.Fatalf("unexpected email: %q", got)
	}
}
