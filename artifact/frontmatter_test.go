package artifact

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantKeys []string
		wantBody string
		wantNil  bool
	}{
		{name: "none", in: "# Title\n", wantBody: "# Title\n", wantNil: true},
		{name: "mapping", in: "---\nlayout: post\ntags: [a, b]\n---\n\n# Title\n", wantKeys: []string{"layout", "tags"}, wantBody: "# Title\n"},
		{name: "empty block", in: "---\n---\nbody\n", wantBody: "body\n"},
		{name: "closing at eof", in: "---\nx: 1\n---", wantKeys: []string{"x"}},
		{name: "unclosed", in: "---\nx: 1\n", wantBody: "---\nx: 1\n", wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := ParseFrontMatter(tt.in)
			if err != nil {
				t.Fatalf("ParseFrontMatter() error = %v", err)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if tt.wantNil {
				if fm != nil {
					t.Errorf("fm = %v, want nil", fm.Keys())
				}
				return
			}
			if !reflect.DeepEqual(fm.Keys(), tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", fm.Keys(), tt.wantKeys)
			}
		})
	}
}

func TestParseFrontMatter_Malformed(t *testing.T) {
	for _, in := range []string{"---\n[unclosed\n---\n", "---\n- list\n---\n"} {
		if _, _, err := ParseFrontMatter(in); !errors.Is(err, ErrMalformedFrontMatter) {
			t.Errorf("ParseFrontMatter(%q) error = %v", in, err)
		}
	}
}

func TestFrontMatter_SetAndWrite(t *testing.T) {
	fm := NewFrontMatter()
	fm.SetString("title", "Release v1 - Highlights", true)
	fm.SetString("date", "2024-05-08", false)
	if err := fm.Set("tags", []string{"release", "api"}); err != nil {
		t.Fatal(err)
	}
	fm.SetString("title", "Replaced", true)

	out, err := WriteFrontMatter(fm, "# Body\n")
	if err != nil {
		t.Fatalf("WriteFrontMatter() error = %v", err)
	}
	want := "---\ntitle: \"Replaced\"\ndate: 2024-05-08\ntags:\n  - release\n  - api\n---\n\n# Body\n"
	if out != want {
		t.Errorf("WriteFrontMatter() =\n%s\nwant\n%s", out, want)
	}

	parsed, body, err := ParseFrontMatter(out)
	if err != nil || body != "# Body\n" {
		t.Fatalf("round trip body = %q, %v", body, err)
	}
	if v, ok := parsed.Get("date"); !ok || v != "2024-05-08" {
		t.Errorf("Get(date) = %q, %v", v, ok)
	}
	if _, ok := parsed.Get("tags"); ok {
		t.Error("Get on a sequence should report false")
	}

	if out, _ := WriteFrontMatter(nil, "body"); out != "body" {
		t.Errorf("nil front matter = %q", out)
	}
}
