package analyzer

import (
	"slices"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// AssembleUsers joins sessions to users by user id.
//
// Sessions are grouped in a single pass, keeping their relative order, and each
// user record then picks up its group (or an empty list). Sessions whose user id
// matches no user are left out of every User. When several user records share an
// id, each gets its own copy of the group so no slice is shared between Users.
func AssembleUsers(users []parser.UserRecord, sessions []parser.SessionRecord) []User {
	byUser := make(map[string][]parser.SessionRecord)
	for _, s := range sessions {
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}

	claimed := make(map[string]bool, len(users))
	result := make([]User, 0, len(users))
	for _, u := range users {
		owned := byUser[u.ID]
		switch {
		case owned == nil:
			owned = []parser.SessionRecord{}
		case claimed[u.ID]:
			owned = slices.Clone(owned)
		}
		claimed[u.ID] = true
		result = append(result, User{Attributes: u, Sessions: owned})
	}
	return result
}
