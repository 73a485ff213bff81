package analysis

import (
	"errors"
	"regexp"
	"strings"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

	ErrEmptyUsername   = errors.New("username is empty")
	ErrInvalidUsername = errors.New("username does not match reddit username rules")
)

// NormalizeUsername trims the input, strips an optional "u/" or "/u/" prefix and a
// trailing slash, then checks the rest against reddit's username syntax.
func NormalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	for _, prefix := range []string{"/u/", "u/", "/user/", "user/"} {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = name[len(prefix):]
			break
		}
	}
	name = strings.TrimSuffix(name, "/")

	if name == "" {
		return "", ErrEmptyUsername
	}
	if !usernamePattern.MatchString(name) {
		return "", ErrInvalidUsername
	}

	return name, nil
}
