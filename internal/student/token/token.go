// Package token decodes SGA access tokens without verifying them. The gateway
// never validates upstream signatures; it only needs the payload to discover
// which academic profiles the identity carries.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"unemigw/internal/student/models"
)

// Profile is one academic enrollment context carried by the token.
type Profile struct {
	ID   string
	Type string
}

// ErrNoPayload is returned when the credential has no middle segment.
var ErrNoPayload = errors.New("invalid token: missing payload segment")

var segmentDecoder = jwt.NewParser()

// DecodePayload base64url-decodes the token's payload segment and parses it
// as JSON. The signature is deliberately not checked.
func DecodePayload(accessToken string) (map[string]any, error) {
	parts := strings.Split(accessToken, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, ErrNoPayload
	}

	raw, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse token payload: %w", err)
	}
	return payload, nil
}

// ExtractProfiles locates the profile list inside a decoded payload. The list
// has moved around across SGA releases, so several nesting paths are probed;
// the first one holding a non-empty list wins. Profiles classified "Grado"
// sort before all others, stable otherwise.
func ExtractProfiles(payload map[string]any) []Profile {
	candidates := [][]any{
		{"perfiles"},
		{"persona", "perfiles"},
		{"personalData", 0, "perfiles"},
	}

	var raw []any
	for _, path := range candidates {
		if list, ok := models.Dig(payload, path...).([]any); ok && len(list) > 0 {
			raw = list
			break
		}
	}
	if len(raw) == 0 {
		return nil
	}

	profiles := make([]Profile, 0, len(raw))
	for _, item := range raw {
		profiles = append(profiles, Profile{
			ID:   models.DigStr(item, "id"),
			Type: models.DigStr(item, "display_clasificacion"),
		})
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return rank(profiles[i]) < rank(profiles[j])
	})
	return profiles
}

func rank(p Profile) int {
	if p.Type == "Grado" {
		return 0
	}
	return 1
}
