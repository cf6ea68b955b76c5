package jobs

import (
	"fmt"
	"strings"
)

// Level is the seniority of a posting. The zero value means the level is unknown.
type Level int

const (
	LevelUnset Level = iota
	LevelEntry
	LevelJunior
	LevelMid
	LevelSenior
	LevelLead
	LevelExecutive
)

var levelNames = [...]string{
	LevelUnset:     "",
	LevelEntry:     "entry",
	LevelJunior:    "junior",
	LevelMid:       "mid",
	LevelSenior:    "senior",
	LevelLead:      "lead",
	LevelExecutive: "executive",
}

var levelByName = func() map[string]Level {
	m := make(map[string]Level, len(levelNames))
	for idx, name := range levelNames {
		if name != "" {
			m[name] = Level(idx)
		}
	}
	return m
}()

// Levels returns all known levels in ascending order.
func Levels() []Level {
	return []Level{LevelEntry, LevelJunior, LevelMid, LevelSenior, LevelLead, LevelExecutive}
}

// ParseLevel resolves a level name. Unknown names report false.
func ParseLevel(s string) (Level, bool) {
	l, ok := levelByName[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// Valid reports whether the level is one of the known levels.
func (l Level) Valid() bool {
	return l > LevelUnset && l <= LevelExecutive
}

// Index returns the position of the level in the ordered scale, or -1 when unset.
func (l Level) Index() int {
	if !l.Valid() {
		return -1
	}
	return int(l) - 1
}

func (l Level) String() string {
	if !l.Valid() {
		return ""
	}
	return levelNames[l]
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts any known level name. Unrecognized values decode to
// LevelUnset so that postings with exotic levels are still usable.
func (l *Level) UnmarshalText(text []byte) error {
	if l == nil {
		return fmt.Errorf("unmarshal level into nil pointer")
	}
	parsed, _ := ParseLevel(string(text))
	*l = parsed
	return nil
}

// Distance returns the number of steps between two levels. Both levels must be valid.
func Distance(a, b Level) int {
	d := a.Index() - b.Index()
	if d < 0 {
		return -d
	}
	return d
}
