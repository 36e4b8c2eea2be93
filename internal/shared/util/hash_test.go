package util

import "testing"

func TestHashJSONIsHexAndStable(t *testing.T) {
	got, err := HashJSON(map[string]any{"company_name": "Acme"})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	again, err := HashJSON(map[string]any{"company_name": "Acme"})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	if got != again {
		t.Fatalf("expected stable hash, got %s and %s", got, again)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestHashJSONKeyOrderIndependent(t *testing.T) {
	a := map[string]any{"x": 1.0, "y": map[string]any{"b": 2.0, "a": 3.0}}
	b := map[string]any{"y": map[string]any{"a": 3.0, "b": 2.0}, "x": 1.0}
	ha, err := HashJSON(a)
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	hb, err := HashJSON(b)
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	if ha != hb {
		t.Fatalf("expected equal hashes for equal maps: %s != %s", ha, hb)
	}
	hc, err := HashJSON(map[string]any{"x": 2.0})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	if hc == ha {
		t.Fatal("different inputs must hash differently")
	}
}
