package royalty

import "strings"

// Role is the credited function of a participant on a song.
type Role string

const (
	RoleVocalist        Role = "vocalist"
	RoleProducer        Role = "producer"
	RoleLyricist        Role = "lyricist"
	RoleComposer        Role = "composer"
	RoleInstrumentalist Role = "instrumentalist"
	RoleFeaturedArtist  Role = "featured_artist"
	RoleMixer           Role = "mixer"
	RoleSoundEngineer   Role = "sound_engineer"
)

// DefaultRoles lists the collaborator roles accepted out of the box.
var DefaultRoles = []Role{
	RoleVocalist,
	RoleProducer,
	RoleLyricist,
	RoleComposer,
	RoleInstrumentalist,
	RoleFeaturedArtist,
	RoleMixer,
	RoleSoundEngineer,
}

// NormalizeRole lowercases and trims a role label.
func NormalizeRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// RoleSet is a lookup of accepted roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		r = NormalizeRole(string(r))
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	if len(s) == 0 {
		return r != ""
	}
	_, ok := s[NormalizeRole(string(r))]
	return ok
}
