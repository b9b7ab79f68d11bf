package quest

import (
	"errors"
	"fmt"
	"strings"
)

// Item effect types follow a "<prefix>:<specific>" grammar. Scanner,
// identity and network effects are hard-coded engine behaviors persisted as
// discrete status rows; multiplier and protection effects are computed from
// configuration metadata at the moment they are consulted.
type EffectPrefix string

const (
	PrefixScanner    EffectPrefix = "scanner"
	PrefixIdentity   EffectPrefix = "identity"
	PrefixNetwork    EffectPrefix = "network"
	PrefixMultiplier EffectPrefix = "multiplier"
	PrefixProtection EffectPrefix = "protection"
)

var ErrInvalidEffectType = errors.New("invalid item effect type")

type EffectTypeID struct {
	Prefix   EffectPrefix
	Specific string
}

func ParseEffectType(s string) (EffectTypeID, error) {
	prefix, specific, ok := strings.Cut(s, ":")
	if !ok || prefix == "" || specific == "" {
		return EffectTypeID{}, fmt.Errorf("%w: %q", ErrInvalidEffectType, s)
	}
	switch EffectPrefix(prefix) {
	case PrefixScanner, PrefixIdentity, PrefixNetwork, PrefixMultiplier, PrefixProtection:
		return EffectTypeID{Prefix: EffectPrefix(prefix), Specific: specific}, nil
	}
	return EffectTypeID{}, fmt.Errorf("%w: unknown prefix %q", ErrInvalidEffectType, prefix)
}

func (e EffectTypeID) String() string {
	return string(e.Prefix) + ":" + e.Specific
}

// Dynamic reports whether the effect's value is computed from metadata at
// the point of use rather than stored as a discrete state flag.
func (e EffectTypeID) Dynamic() bool {
	return e.Prefix == PrefixMultiplier || e.Prefix == PrefixProtection
}
