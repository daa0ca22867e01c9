// Package featureflags gates user-facing surfaces behind a comma-separated
// key=value config string, e.g. "trending_page=on,comment_reactions=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flag names consulted by live surfaces.
const (
	// TrendingPage gates the public trending endpoint.
	TrendingPage = "trending_page"
	// CommentReactions gates toggling reaction tags on comments.
	CommentReactions = "comment_reactions"
)

// setting is a parsed flag value. Unparseable values evaluate as off but keep
// their raw text so the admin surface can show what was configured.
type setting struct {
	raw     string
	on      bool
	partial bool
	pct     int
}

// Manager evaluates feature flags for a given user.
type Manager struct {
	flags map[string]setting
}

// NewManager parses a comma-separated config string. Malformed pairs are
// skipped; malformed values are kept but evaluate as off.
func NewManager(raw string) *Manager {
	out := make(map[string]setting)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = parseSetting(value)
	}

	return &Manager{flags: out}
}

// parseSetting accepts on/true/1, off/false/0, and N% rollouts.
func parseSetting(value string) setting {
	s := setting{raw: value}
	switch value {
	case "on", "true", "1":
		s.on = true
		return s
	case "off", "false", "0":
		return s
	}
	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err == nil {
			s.partial = true
			s.pct = pct
		}
	}
	return s
}

// Enabled reports whether a configured flag is on for the user. Unknown flags
// are off; percentage rollouts bucket deterministically per (flag, user) and
// never admit anonymous callers.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	s, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	return s.enabledFor(name, userID)
}

// Allows treats flags as kill switches for shipped surfaces: a flag that was
// never configured is allowed, a configured one evaluates normally. Handlers
// gate on this so a fresh deploy with no flag config serves everything.
func (m *Manager) Allows(name string, userID uint) bool {
	if m == nil {
		return true
	}

	s, ok := m.flags[normalize(name)]
	if !ok {
		return true
	}
	return s.enabledFor(name, userID)
}

func (s setting) enabledFor(name string, userID uint) bool {
	if s.on {
		return true
	}
	if !s.partial {
		return false
	}
	if s.pct <= 0 {
		return false
	}
	if s.pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < s.pct
}

// Raw returns the configured flag values as written.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, s := range m.flags {
		out[k] = s.raw
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
