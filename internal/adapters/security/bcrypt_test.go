package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	cases := []struct {
		name     string
		password string
	}{
		{name: "typical password", password: "Sup3rSecret!"},
		{name: "unicode password", password: "pässwörd-Åland-1!"},
		{name: "long password", password: strings.Repeat("Aa1!", 17)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			hash, err := hasher.Hash(tc.password)
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if hash == tc.password {
				t.Fatal("hash must not equal the plaintext")
			}
			if err := hasher.Compare(hash, tc.password); err != nil {
				t.Fatalf("compare with correct password: %v", err)
			}
			if err := hasher.Compare(hash, tc.password+"x"); err == nil {
				t.Fatal("compare with wrong password must fail")
			}
			if err := hasher.Compare(hash, ""); err == nil {
				t.Fatal("compare with empty password must fail")
			}
		})
	}
}

func TestBcryptHashesAreSalted(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)
	first, err := hasher.Hash("Sup3rSecret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("Sup3rSecret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestBcryptCostFallback(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(0)
	if hasher.cost != DefaultBcryptCost {
		t.Fatalf("cost = %d, want %d", hasher.cost, DefaultBcryptCost)
	}

	hash, err := NewBcryptHasher(bcrypt.MinCost).Hash("Sup3rSecret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("read cost: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Fatalf("cost = %d, want %d", cost, bcrypt.MinCost)
	}
}
