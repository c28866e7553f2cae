package auth

import (
	"fmt"
	"strings"
)

// Permissions granted by the identity provider.
const (
	PermGetActors    = "get:actors"
	PermGetMovies    = "get:movies"
	PermPostActors   = "post:actors"
	PermPostMovies   = "post:movies"
	PermPatchActors  = "patch:actors"
	PermPatchMovies  = "patch:movies"
	PermDeleteActors = "delete:actors"
	PermDeleteMovies = "delete:movies"
)

// Role is a bundle of permissions configured at the identity provider.
type Role string

const (
	RoleCastingAssistant  Role = "casting-assistant"
	RoleCastingDirector   Role = "casting-director"
	RoleExecutiveProducer Role = "executive-producer"
)

var (
	assistantPermissions = []string{PermGetActors, PermGetMovies}
	directorPermissions  = append(append([]string{}, assistantPermissions...),
		PermPostActors, PermDeleteActors, PermPatchActors, PermPatchMovies)
	producerPermissions = append(append([]string{}, directorPermissions...),
		PermPostMovies, PermDeleteMovies)
)

// Roles lists every known role, least privileged first.
func Roles() []Role {
	return []Role{RoleCastingAssistant, RoleCastingDirector, RoleExecutiveProducer}
}

// Permissions returns a copy of the role's permission set.
func (r Role) Permissions() []string {
	var perms []string
	switch r {
	case RoleCastingAssistant:
		perms = assistantPermissions
	case RoleCastingDirector:
		perms = directorPermissions
	case RoleExecutiveProducer:
		perms = producerPermissions
	}
	return append([]string{}, perms...)
}

// ParseRole accepts the role slug or its display name ("Casting Director").
func ParseRole(value string) (Role, error) {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "-")
	for _, role := range Roles() {
		if string(role) == slug {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", value)
}
