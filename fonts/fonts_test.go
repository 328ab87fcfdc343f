package fonts

import (
	"bytes"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"go-regular", "builtin:go-bold", "built-in:GO-MONO"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if !bytes.HasPrefix(data, []byte{0x00, 0x01, 0x00, 0x00}) {
			t.Fatalf("Load(%q) did not return TrueType data", name)
		}
	}
	if _, err := Load("inter"); err == nil {
		t.Fatalf("expected error for unknown builtin font")
	}
}

func TestBuiltinSorted(t *testing.T) {
	names := Builtin()
	if len(names) != 6 {
		t.Fatalf("expected 6 builtin fonts, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestFindMissing(t *testing.T) {
	if _, _, err := Find("system:definitely-not-a-font-4711.ttf| "); err == nil {
		t.Fatalf("expected error for missing system font")
	}
	if _, _, err := Find(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
}
