package bot

import "strings"

// Component custom ids are "<scope>:<key>:<action>[:<arg>]". The key is a
// recruitment id, wizard session id or staged knowledge change id.
const (
	scopeRecruit   = "rc"
	scopeWizard    = "wz"
	scopeKnowledge = "kb"
)

// customID is a parsed component or modal id.
type customID struct {
	Scope  string
	Key    string
	Action string
	Arg    string
}

func (c customID) String() string {
	s := c.Scope + ":" + c.Key + ":" + c.Action
	if c.Arg != "" {
		s += ":" + c.Arg
	}
	return s
}

func encodeID(scope, key, action string, arg ...string) string {
	c := customID{Scope: scope, Key: key, Action: action}
	if len(arg) > 0 {
		c.Arg = arg[0]
	}
	return c.String()
}

func parseID(s string) (customID, bool) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return customID{}, false
	}
	c := customID{Scope: parts[0], Key: parts[1], Action: parts[2]}
	if len(parts) == 4 {
		c.Arg = parts[3]
	}
	switch c.Scope {
	case scopeRecruit, scopeWizard, scopeKnowledge:
	default:
		return customID{}, false
	}
	if c.Key == "" || c.Action == "" {
		return customID{}, false
	}
	return c, true
}
