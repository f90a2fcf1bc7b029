package safety

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Codeína", "codeina"},
		{"hipertensión", "hipertension"},
		{"úlcera péptica", "ulcera peptica"},
		{"ASPIRINA", "aspirina"},
		{"paracetamol", "paracetamol"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.expected {
			t.Errorf("Fold(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNameMatches(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{"exact", "aspirina", "aspirina", true},
		{"case insensitive", "Aspirina", "ASPIRINA", true},
		{"entry contains rule name", "amoxicilina 500mg", "amoxicilina", true},
		{"rule name contains entry", "amoxicilina", "amoxicilina clavulanato", true},
		{"accented input", "codeína", "codeina", true},
		{"no relation", "aspirina", "paracetamol", false},
		{"empty a", "", "aspirina", false},
		{"empty b", "aspirina", "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nameMatches(tt.a, tt.b); got != tt.expected {
				t.Errorf("nameMatches(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}

	// Matching is symmetric
	if nameMatches("ibuprofeno 400", "ibuprofeno") != nameMatches("ibuprofeno", "ibuprofeno 400") {
		t.Error("Expected nameMatches to be symmetric")
	}
}

func TestFoldConcurrent(t *testing.T) {
	// The transform chain is built per call, so concurrent folding is safe.
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				if Fold("Metoclopramida García") != "metoclopramida garcia" {
					t.Error("Unexpected fold result under concurrency")
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
