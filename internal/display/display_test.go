package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExpandTemplate(t *testing.T) {
	tests := map[string]struct {
		tmpl   string
		data   any
		exp    string
		expErr string
	}{
		"plain text": {
			tmpl: "a quiet field",
			exp:  "a quiet field",
		},
		"field access": {
			tmpl: "mood is {{ .Mood }}",
			data: struct{ Mood string }{Mood: "upper"},
			exp:  "mood is upper",
		},
		"sprig function": {
			tmpl: "{{ .Name | upper }}",
			data: struct{ Name string }{Name: "pink rat"},
			exp:  "PINK RAT",
		},
		"parse error": {
			tmpl:   "{{ .Broken ",
			expErr: "parsing template",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ExpandTemplate(tt.tmpl, tt.data)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", got, tt.exp)
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	if err := ValidateTemplate("{{ .X | default \"y\" }}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertErrorContains(t, ValidateTemplate("{{ if }}"), "parsing template")
}

func TestWrapTo(t *testing.T) {
	text := strings.Repeat("dream ", 30)
	for _, line := range strings.Split(WrapTo(text, 20), "\n") {
		if len(strings.TrimRight(line, " ")) > 20 {
			t.Errorf("line %q longer than 20", line)
		}
	}
	testutil.AssertEqual(t, "capitalize", Capitalize("phetta"), "Phetta")
}
