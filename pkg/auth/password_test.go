package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() = %v", err)
	}
	if hash == "pw1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := ComparePassword(hash, "pw1"); err != nil {
		t.Errorf("ComparePassword(correct) = %v, want nil", err)
	}
	if err := ComparePassword(hash, "pw2"); err == nil {
		t.Error("ComparePassword(wrong) = nil, want error")
	}
}

func TestHashPassword_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"too long for bcrypt", strings.Repeat("a", MaxPasswordLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := HashPassword(tt.password, bcrypt.MinCost); err == nil {
				t.Error("HashPassword() = nil, want error")
			}
		})
	}
}

func TestHashPassword_UsesCost(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost+1)
	if err != nil {
		t.Fatalf("HashPassword() = %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() = %v", err)
	}
	if cost != bcrypt.MinCost+1 {
		t.Errorf("cost = %d, want %d", cost, bcrypt.MinCost+1)
	}
}

func TestCompareCode(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		given    string
		want     bool
	}{
		{"match", "789456", "789456", true},
		{"wrong digit", "789456", "789457", false},
		{"prefix", "789456", "7894", false},
		{"empty", "789456", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareCode(tt.expected, tt.given); got != tt.want {
				t.Errorf("CompareCode(%q, %q) = %v, want %v", tt.expected, tt.given, got, tt.want)
			}
		})
	}
}
