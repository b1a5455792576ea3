// Package entity contains the core business objects of the project.
package entity

// TokenKind represents the intended use of an issued token.
type TokenKind string

const (
	// TokenKindAccess indicates a short-lived token used for identity resolution.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh indicates a long-lived token used to obtain a new pair.
	TokenKindRefresh TokenKind = "refresh"
)

// String returns the string representation of the TokenKind.
func (k TokenKind) String() string {
	return string(k)
}

// IsValid checks if the TokenKind is a valid value.
func (k TokenKind) IsValid() bool {
	switch k {
	case TokenKindAccess, TokenKindRefresh:
		return true
	default:
		return false
	}
}
