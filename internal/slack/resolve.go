package slack

import "strings"

// Resolve finds the user id for a display name. Rules are tried in order
// across the whole directory: exact real name, exact lowercase handle,
// exact profile display name, then the name contained in the real name
// (case-insensitive). Deleted users and bots are ignored.
//
// When several users satisfy the winning rule the first in directory order
// is returned; ambiguity is not reported.
func Resolve(name string, users []User) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	lower := strings.ToLower(name)

	rules := []func(User) bool{
		func(u User) bool { return strings.TrimSpace(u.RealName) == name },
		func(u User) bool { return strings.TrimSpace(u.Name) == lower },
		func(u User) bool { return strings.TrimSpace(u.Profile.DisplayName) == name },
		func(u User) bool { return strings.Contains(strings.ToLower(u.RealName), lower) },
	}

	for _, match := range rules {
		for _, u := range users {
			if u.Deleted || u.IsBot {
				continue
			}
			if match(u) {
				return u.ID, true
			}
		}
	}
	return "", false
}
