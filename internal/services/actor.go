package services

// Actor is the authorization context every engine operation runs under: the
// caller identity plus the two capability facts resolved by the membership
// middleware. The engine never looks up roles itself.
type Actor struct {
	UserID    uint64
	IsManager bool
	IsMember  bool
}
