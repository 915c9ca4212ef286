package cloudapi

import "testing"

func TestAppSecretProof(t *testing.T) {
	t.Parallel()

	a := AppSecretProof("token", "secret")
	if len(a) != 64 {
		t.Errorf("proof length = %d, want 64 hex chars", len(a))
	}
	if a != AppSecretProof("token", "secret") {
		t.Error("proof is not deterministic")
	}
	if a == AppSecretProof("token", "other") {
		t.Error("different secrets produced the same proof")
	}
	if a == AppSecretProof("other", "secret") {
		t.Error("different tokens produced the same proof")
	}
}

func TestVerifyAppSecretProof(t *testing.T) {
	t.Parallel()

	proof := AppSecretProof("token", "secret")
	if !VerifyAppSecretProof("token", "secret", proof) {
		t.Error("valid proof rejected")
	}
	tampered := []byte(proof)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	if VerifyAppSecretProof("token", "secret", string(tampered)) {
		t.Error("tampered proof accepted")
	}
	if VerifyAppSecretProof("token", "wrong", proof) {
		t.Error("proof accepted for wrong secret")
	}
}
