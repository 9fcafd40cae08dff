package model

import "strings"

// InRoster reports whether the member has an adjustable-roster entry.
func (in *Instance) InRoster(memberID string) bool {
	return in.rosterIndex(memberID) >= 0
}

// AddAdjustable records the member on the adjustable roster with a note.
//
// Re-submitting replaces the member's existing note in place, keeping
// their position. A member coming from a seat is moved without a capacity
// check; a new member needs free capacity.
func (in *Instance) AddAdjustable(m Member, note string) error {
	if in.Cancelled() {
		return ErrCancelled
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrNoteRequired
	}
	if idx := in.rosterIndex(m.ID); idx >= 0 {
		in.Roster[idx] = RosterEntry{Member: m, Note: note}
		return nil
	}
	if !in.Holds(m.ID) && in.IsFull() {
		return ErrFull
	}

	in.ClearSeat(m.ID)
	in.Roster = append(in.Roster, RosterEntry{Member: m, Note: note})
	return nil
}

// RemoveAdjustable drops the member's roster entry. It is idempotent and
// reports whether an entry was removed.
func (in *Instance) RemoveAdjustable(memberID string) bool {
	idx := in.rosterIndex(memberID)
	if idx < 0 {
		return false
	}
	in.Roster = append(in.Roster[:idx], in.Roster[idx+1:]...)
	return true
}

func (in *Instance) rosterIndex(memberID string) int {
	for i, e := range in.Roster {
		if e.Member.ID == memberID {
			return i
		}
	}
	return -1
}
