// Package monitor watches one member's presence and nags them, at most once
// a day, when they start a watched game during weekday working hours.
package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultGames are matched as substrings of the activity name.
var DefaultGames = []string{"FINAL FANTASY", "Monster Hunter", "Steam"}

// Config controls the monitor.
type Config struct {
	UserID    string
	Games     []string
	StartHour int // inclusive
	EndHour   int // exclusive
	Location  *time.Location
}

// Alert is a nag to send.
type Alert struct {
	UserID string
	Game   string
	At     time.Time
}

// Monitor holds the once-per-day latch and the last activity seen for the
// watched user.
type Monitor struct {
	cfg Config

	mu        sync.Mutex
	last      string
	lastAlert string // date of the last alert, 2006-01-02 in cfg.Location
}

// New creates a Monitor. Zero hours fall back to 10:00–18:00.
func New(cfg Config) *Monitor {
	if len(cfg.Games) == 0 {
		cfg.Games = DefaultGames
	}
	if cfg.StartHour == 0 && cfg.EndHour == 0 {
		cfg.StartHour, cfg.EndHour = 10, 18
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Monitor{cfg: cfg}
}

// Enabled reports whether a user is being watched.
func (m *Monitor) Enabled() bool { return m.cfg.UserID != "" }

// Observe records the user's current activity name ("" when none). It
// returns an alert when the activity changed to a watched game inside the
// weekday window and no alert was delivered yet that day. The day is only
// consumed by MarkSent.
func (m *Monitor) Observe(userID, activity string, now time.Time) (Alert, bool) {
	if !m.Enabled() || userID != m.cfg.UserID {
		return Alert{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.last
	m.last = activity
	if activity == "" || activity == before {
		return Alert{}, false
	}
	if !m.watched(activity) {
		return Alert{}, false
	}

	local := now.In(m.cfg.Location)
	if !m.inWindow(local) {
		return Alert{}, false
	}
	day := local.Format(time.DateOnly)
	if m.lastAlert == day {
		return Alert{}, false
	}
	return Alert{UserID: userID, Game: activity, At: local}, true
}

// MarkSent records that a was delivered, silencing the rest of its day.
func (m *Monitor) MarkSent(a Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAlert = a.At.In(m.cfg.Location).Format(time.DateOnly)
}

func (m *Monitor) watched(activity string) bool {
	for _, g := range m.cfg.Games {
		if g != "" && strings.Contains(activity, g) {
			return true
		}
	}
	return false
}

func (m *Monitor) inWindow(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= m.cfg.StartHour && t.Hour() < m.cfg.EndHour
}

// FormatAlert renders the nag message.
func FormatAlert(a Alert) string {
	return fmt.Sprintf("<@%s> **ちょっと！平日のお昼だよ！？** 😡\n『%s』やってる場合じゃないでしょ！研究進んだの！？", a.UserID, a.Game)
}
