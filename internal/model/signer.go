package model

import "strings"

// Signer is the named authority whose sign-off a request requires.
type Signer string

const (
	SignerHareesh Signer = "Hareesh"
	SignerFounder Signer = "Founder"
	SignerAdmin   Signer = "Admin"
)

// ResolveSigner routes interns, and anything already assigned to Hareesh, to Hareesh.
// Everyone else goes to fallback. Submission and the action processor both route through here.
func ResolveSigner(designation string, signatureFrom Signer, fallback Signer) Signer {
	if signatureFrom == SignerHareesh || designationHas(designation, "intern") {
		return SignerHareesh
	}
	return fallback
}

// RequiredSigner computes signatureFrom for a new request from the creator's designation.
func RequiredSigner(designation string) Signer {
	fallback := SignerAdmin
	if designationHas(designation, "freelancer") || designationHas(designation, "employee") {
		fallback = SignerFounder
	}
	return ResolveSigner(designation, "", fallback)
}

// TargetFor maps a signer to the role whose queue the request lands in.
func TargetFor(s Signer) Target {
	if s == SignerFounder {
		return TargetFounder
	}
	return TargetAdmin
}

func designationHas(designation, word string) bool {
	return strings.Contains(strings.ToLower(designation), word)
}
