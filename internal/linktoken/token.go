// Package linktoken issues and verifies the signed tokens embedded in
// emailed invoice links. Tokens are stateless: validity is determined
// entirely by the HMAC signature and the embedded expiry, so links keep
// working without a session or a database lookup.
package linktoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// DefaultTTL is how long an invoice link stays valid when the caller
// does not specify a lifetime.
const DefaultTTL = 7 * 24 * time.Hour

type payload struct {
	InvoiceNo string `json:"invoiceNo"`
	Exp       int64  `json:"exp"`
}

// Authorizer mints and checks invoice access tokens with a process-wide
// secret. The secret is fixed at construction; all issuing and verifying
// instances of a deployment must share it.
type Authorizer struct {
	secret []byte
	now    func() time.Time
}

// New returns an Authorizer signing with the given secret.
func New(secret string) *Authorizer {
	return &Authorizer{secret: []byte(secret), now: time.Now}
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock(secret string, now func() time.Time) *Authorizer {
	return &Authorizer{secret: []byte(secret), now: now}
}

// Issue returns a token authorizing access to one invoice until ttl from
// now. The ttl is taken literally: zero or negative values produce a
// token that is already at or past expiry. Callers wanting the standard
// lifetime pass DefaultTTL.
func (a *Authorizer) Issue(invoiceNo string, ttl time.Duration) (string, error) {
	raw, err := json.Marshal(payload{
		InvoiceNo: invoiceNo,
		Exp:       a.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + a.sign(encoded), nil
}

// Verify reports whether token grants access to invoiceNo. Every failure
// mode collapses to false so callers cannot distinguish a forged token
// from an expired one.
func (a *Authorizer) Verify(token, invoiceNo string) bool {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return false
	}
	expected := a.sign(encoded)
	if len(expected) != len(sig) {
		return false
	}
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return false
	}
	if p.InvoiceNo != invoiceNo {
		return false
	}
	return a.now().Unix() <= p.Exp
}

func (a *Authorizer) sign(encoded string) string {
	mac := hmac.New(sha256.New, a.secret)
	_, _ = mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
