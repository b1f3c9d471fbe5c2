package storage

import "testing"

func TestContentDisposition_StripsHeaderBreakingCharacters(t *testing.T) {
	got := contentDisposition("sample\"report\r\n.pdf")
	want := `attachment; filename="samplereport.pdf"`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
