package types

// Password holds the keystore password for the lifetime of one store
// instance. It is never persisted and must never appear in logs or error
// messages; the backing memory is overwritten once the store is closed.
type Password struct {
	b []byte
}

func NewPassword(s string) *Password {
	return &Password{b: []byte(s)}
}

// Reveal returns the raw password bytes for key derivation. The slice must
// not be retained, copied into long-lived state, or logged.
func (p *Password) Reveal() []byte {
	if p == nil {
		return nil
	}
	return p.b
}

// Zeroize overwrites the backing memory. The password is unusable
// afterwards.
func (p *Password) Zeroize() {
	if p == nil {
		return
	}
	for i := range p.b {
		p.b[i] = 0
	}
	p.b = p.b[:0]
}

// String keeps the password out of formatted output.
func (p *Password) String() string {
	return "<secret>"
}
