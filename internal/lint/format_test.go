package lint

import (
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unchanged", "def main [] {\n    print hi\n}\n", "def main [] {\n    print hi\n}\n"},
		{"trailing whitespace", "let x = 1  \t\n", "let x = 1\n"},
		{"leading tabs", "\tprint a\n\t\tprint b\n", "    print a\n        print b\n"},
		{"inner tabs kept", "\tlet x =\t1\n", "    let x =\t1\n"},
		{"tabs then spaces", "\t  print a\n", "      print a\n"},
		{"whitespace only line", "\t \n", "\n"},
		{"crlf preserved", "\tprint a \r\n", "    print a\r\n"},
		{"no final newline", "print a ", "print a"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Format([]byte(tt.in))); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	src := []byte("\t\tdef x [] { \n\t}\t\r\n")
	once := Format(src)
	if twice := Format(once); string(twice) != string(once) {
		t.Errorf("Format is not idempotent: %q then %q", once, twice)
	}
}

func TestNeedsFormat(t *testing.T) {
	if NeedsFormat([]byte("print a\n")) {
		t.Error("NeedsFormat(clean) = true")
	}
	if !NeedsFormat([]byte("\tprint a\n")) {
		t.Error("NeedsFormat(tabbed) = false")
	}
}
