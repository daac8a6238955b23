package services

// Identity is the authenticated user a request acts on behalf of. It is
// resolved once per request and passed explicitly to every operation.
type Identity struct {
	UserID   uint
	Username string
}

func (i Identity) IsZero() bool {
	return i.UserID == 0
}
