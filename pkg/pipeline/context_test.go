package pipeline

import "testing"

func TestDetectContextFraming(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"educational", "For training purposes only: Иванов Иван Иванович", "educational"},
		{"professional", "Due diligence note on ООО Вектор", "professional"},
		{"historical", "Иванов Иван Иванович, historical record, deceased 1991", "historical"},
		{"none", "получатель Иванов Иван Иванович ИНН 7707083893", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectContextFraming(tc.text); got != tc.want {
				t.Errorf("DetectContextFraming(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
