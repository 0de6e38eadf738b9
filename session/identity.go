package session

import (
	"github.com/daehan00/omechoo/token"
	"sync"
	"time"
)

// Identity is what the client knows about itself in one room, read from the stored token.
// The payload is not verified; the server stays authoritative for every mutation.
type Identity struct {
	RoomID        string
	ParticipantID string
	Nickname      string
	IsHost        bool
	ExpiresAt     time.Time
	Authenticated bool
}

// IdentityView decodes stored tokens and caches the claims until the store version moves.
// Authenticated is recomputed against the clock on every read, so a token that passes its exp
// reads as signed out without anyone removing it.
type IdentityView struct {
	store Store
	now   func() time.Time

	mu      sync.Mutex
	version uint64
	claims  map[string]*token.Claims
}

func NewIdentityView(store Store) *IdentityView {
	return &IdentityView{store: store, now: time.Now, claims: make(map[string]*token.Claims)}
}

func (v *IdentityView) WithClock(now func() time.Time) *IdentityView {
	v.now = now
	return v
}

func (v *IdentityView) Identity(roomID string) Identity {
	claims := v.lookup(roomID)
	if claims == nil {
		return Identity{RoomID: roomID}
	}

	id := Identity{
		RoomID:        roomID,
		ParticipantID: claims.ParticipantID,
		Nickname:      claims.Nickname,
		IsHost:        claims.IsHost,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	id.Authenticated = !claims.Expired(v.now())
	if !id.Authenticated {
		id.IsHost = false
	}
	return id
}

func (v *IdentityView) Authenticated(roomID string) bool {
	return v.Identity(roomID).Authenticated
}

func (v *IdentityView) lookup(roomID string) *token.Claims {
	v.mu.Lock()
	defer v.mu.Unlock()

	if current := v.store.Version(); current != v.version {
		v.version = current
		v.claims = make(map[string]*token.Claims)
	}
	if claims, ok := v.claims[roomID]; ok {
		return claims
	}

	var claims *token.Claims
	if raw, ok := v.store.Get(roomID); ok {
		if decoded, err := token.Decode(raw); err == nil && decoded.RoomID == roomID {
			claims = decoded
		}
	}
	v.claims[roomID] = claims
	return claims
}
