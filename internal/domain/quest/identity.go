package quest

import (
	"errors"
	"strings"
)

const identityCodePrefix = "player:"

var ErrInvalidIdentityCode = errors.New("invalid identity code")

// IdentityCode renders the payload of a player's identity QR.
func IdentityCode(playerID string) string {
	return identityCodePrefix + playerID
}

// ParseIdentityCode extracts the player id from a scanned identity code.
func ParseIdentityCode(code string) (string, error) {
	id, ok := strings.CutPrefix(code, identityCodePrefix)
	if !ok || id == "" {
		return "", ErrInvalidIdentityCode
	}
	return id, nil
}
