package analyzer

import (
	"errors"
	"fmt"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// MergePolicy decides what happens when two users share a display name.
type MergePolicy string

const (
	// MergeOverwrite lets the later user replace the earlier entry (default).
	MergeOverwrite MergePolicy = "overwrite"
	// MergeError fails the report on the first collision.
	MergeError MergePolicy = "error"
	// MergeDisambiguate keys the later user as "First Last (id)", adding a
	// counter when that key is also taken.
	MergeDisambiguate MergePolicy = "disambiguate"
)

var (
	// ErrDuplicateDisplayName is returned by MergeError on a name collision.
	ErrDuplicateDisplayName = errors.New("duplicate display name")

	// ErrUnknownMergePolicy is returned by ParseMergePolicy.
	ErrUnknownMergePolicy = errors.New("unknown merge policy")
)

// ParseMergePolicy converts a config value to a MergePolicy.
// The empty string selects MergeOverwrite.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case "", MergeOverwrite:
		return MergeOverwrite, nil
	case MergeError, MergeDisambiguate:
		return MergePolicy(s), nil
	default:
		return "", fmt.Errorf("%w %q (must be overwrite, error, or disambiguate)", ErrUnknownMergePolicy, s)
	}
}

// Merge stores stats for user in dst according to the policy.
func (p MergePolicy) Merge(dst *UsersStats, user parser.UserRecord, stats UserStats) error {
	key := user.DisplayName()
	if !dst.Has(key) {
		dst.Set(key, stats)
		return nil
	}

	switch p {
	case MergeError:
		return fmt.Errorf("%w: %q (user id %s)", ErrDuplicateDisplayName, key, user.ID)
	case MergeDisambiguate:
		dst.Set(disambiguatedKey(dst, key, user.ID), stats)
	default:
		dst.Set(key, stats)
	}
	return nil
}

// disambiguatedKey returns "name (id)", or "name (id, n)" with the smallest
// n >= 2 that is not already taken.
func disambiguatedKey(dst *UsersStats, name, id string) string {
	key := fmt.Sprintf("%s (%s)", name, id)
	for n := 2; dst.Has(key); n++ {
		key = fmt.Sprintf("%s (%s, %d)", name, id, n)
	}
	return key
}
