package domain

import "github.com/google/uuid"

// CanAccess reports whether actorID may act on a resource owned by ownerID.
func CanAccess(actorID, ownerID uuid.UUID) bool {
	return actorID != uuid.Nil && actorID == ownerID
}

// canAccessTransaction reports whether actorID owns either side of a
// transaction. A nil owner means that side is not set.
func canAccessTransaction(actorID uuid.UUID, fromOwner, toOwner *uuid.UUID) bool {
	return (fromOwner != nil && CanAccess(actorID, *fromOwner)) ||
		(toOwner != nil && CanAccess(actorID, *toOwner))
}
