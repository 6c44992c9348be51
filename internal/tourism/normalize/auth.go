package normalize

import (
	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Auth normalizes /register and /login responses. Profile data may sit at
// the top level or under "user".
func Auth(raw []byte) view.AuthResult {
	r := root(raw)
	user := field(r, "user", "profile")
	if !user.IsObject() {
		user = r
	}
	return view.AuthResult{
		Token:    text(field(r, "token", "access_token")),
		Username: text(field(user, "username")),
		Message:  text(field(r, "message")),
		Profile: view.Profile{
			Interests:      stringList(field(user, "interests")),
			PreferredMonth: text(field(user, "preferred_month")),
		},
	}
}

// UserInterests normalizes GET/POST /user/{username}/interests.
func UserInterests(raw []byte) []string {
	r := root(raw)
	if r.IsArray() {
		return stringList(r)
	}
	return stringList(field(r, "interests"))
}
