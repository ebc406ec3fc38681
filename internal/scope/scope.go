// Package scope models tenant scoping as an explicit value passed into
// every query, instead of being read from ambient request state. A scope is
// either bound to one firma or explicitly unscoped for privileged
// cross-tenant operators.
package scope

import "github.com/bwmarrin/snowflake"

type Scope struct {
	firmaID  snowflake.ID
	unscoped bool
}

// ForFirma returns a scope bound to a single tenant.
func ForFirma(firmaID snowflake.ID) Scope {
	return Scope{firmaID: firmaID}
}

// Unscoped returns the privileged cross-tenant scope. Callers must obtain
// it deliberately; the zero Scope matches no tenant at all.
func Unscoped() Scope {
	return Scope{unscoped: true}
}

func (s Scope) IsUnscoped() bool { return s.unscoped }

// FirmaID returns the bound tenant id and whether the scope is bound.
func (s Scope) FirmaID() (snowflake.ID, bool) {
	if s.unscoped || s.firmaID == 0 {
		return 0, false
	}
	return s.firmaID, true
}

// Valid reports whether the scope is usable: either bound to a concrete
// firma or explicitly unscoped.
func (s Scope) Valid() bool {
	return s.unscoped || s.firmaID != 0
}
