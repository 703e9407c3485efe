package venue

// OperatorToken is a capability value granting access to the
// operator-only surface of the venue. The authentication layer that
// fronts the venue decides who gets one; the core never inspects
// sessions or credentials to establish operator authority.
//
// The zero value carries no authority.
type OperatorToken struct {
	granted bool
}

// GrantOperator mints a valid operator token. Callers are trusted:
// this is a capability handed out by the (external) auth layer after
// it has verified the operator, not an authentication mechanism.
func GrantOperator() OperatorToken {
	return OperatorToken{granted: true}
}

// Valid reports whether the token carries operator authority.
func (t OperatorToken) Valid() bool {
	return t.granted
}
