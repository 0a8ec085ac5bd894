package domain

// Member represents a connection's participation meta.
// No transport or lifecycle logic here.
type Member struct {
	Principal Principal
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(p Principal) *Member {
	return &Member{Principal: p}
}
