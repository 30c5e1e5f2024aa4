package submission

import "testing"

func TestValidNHSNumber(t *testing.T) {
	valid := []string{"4010232137", "9434765919"}
	for _, n := range valid {
		if !ValidNHSNumber(n) {
			t.Fatalf("expected %s to be valid", n)
		}
	}

	invalid := []string{"", "123", "12345678901", "4010232138", "401023213a"}
	for _, n := range invalid {
		if ValidNHSNumber(n) {
			t.Fatalf("expected %s to be invalid", n)
		}
	}
}

func TestFormatNHSNumber(t *testing.T) {
	if got := FormatNHSNumber("4010232137"); got != "401 023 2137" {
		t.Fatalf("unexpected formatting: %q", got)
	}
	if got := FormatNHSNumber("123"); got != "" {
		t.Fatalf("short input should format to empty, got %q", got)
	}
}
