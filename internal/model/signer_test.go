package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSigner(t *testing.T) {
	tests := []struct {
		name          string
		designation   string
		signatureFrom Signer
		fallback      Signer
		want          Signer
	}{
		{"intern", "Intern", "", SignerFounder, SignerHareesh},
		{"intern any case", "Backend INTERN", SignerAdmin, SignerAdmin, SignerHareesh},
		{"assigned to hareesh", "Manager", SignerHareesh, SignerFounder, SignerHareesh},
		{"falls back to founder", "Employee", SignerFounder, SignerFounder, SignerFounder},
		{"falls back to admin", "Employee", SignerFounder, SignerAdmin, SignerAdmin},
		{"empty designation", "", "", SignerAdmin, SignerAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSigner(tt.designation, tt.signatureFrom, tt.fallback))
		})
	}
}

func TestRequiredSigner(t *testing.T) {
	assert.Equal(t, SignerHareesh, RequiredSigner("intern"))
	assert.Equal(t, SignerFounder, RequiredSigner("Freelancer"))
	assert.Equal(t, SignerFounder, RequiredSigner("Full-time Employee"))
	assert.Equal(t, SignerAdmin, RequiredSigner("HR Lead"))
}

func TestTargetFor(t *testing.T) {
	assert.Equal(t, TargetFounder, TargetFor(SignerFounder))
	assert.Equal(t, TargetAdmin, TargetFor(SignerHareesh))
	assert.Equal(t, TargetAdmin, TargetFor(SignerAdmin))
}
