package model

import "github.com/google/uuid"

// Property is a signed name/value property attached to a GameProfile, such
// as the "textures" property carrying a player's skin URL.
type Property struct {
	Name      string
	Value     string
	Signature string // empty when the property is unsigned
}

// GameProfile is the authenticated identity produced by the auth
// collaborator (internal/auth.Authenticator). Immutable once installed on a
// Connection.
type GameProfile struct {
	UUID       uuid.UUID
	Name       string
	Properties []Property
}
