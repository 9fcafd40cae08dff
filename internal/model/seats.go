package model

// HasRole reports whether role is one of the instance's seat labels.
func (in *Instance) HasRole(role string) bool {
	return in.seatIndex(role) >= 0
}

// SeatOf returns the role held by the member, if any.
func (in *Instance) SeatOf(memberID string) (string, bool) {
	for _, s := range in.Seats {
		if s.Occupant != nil && s.Occupant.ID == memberID {
			return s.Role, true
		}
	}
	return "", false
}

// OccupySeat puts the member in role.
//
// A member who already holds a position is relocated without a capacity
// check; any previous seat or roster entry is cleared first. A new member
// is rejected with ErrFull when the party is at capacity. The role must be
// open: a seat held by someone else is never overwritten.
func (in *Instance) OccupySeat(role string, m Member) error {
	if in.Cancelled() {
		return ErrCancelled
	}
	idx := in.seatIndex(role)
	if idx < 0 {
		return ErrUnknownRole
	}
	if occ := in.Seats[idx].Occupant; occ != nil {
		if occ.ID == m.ID {
			return nil
		}
		return ErrRoleTaken
	}
	if !in.Holds(m.ID) && in.IsFull() {
		return ErrFull
	}

	in.release(m.ID)
	member := m
	in.Seats[idx].Occupant = &member
	return nil
}

// ClearSeat removes the member from all role slots. It is idempotent and
// reports whether a seat was cleared.
func (in *Instance) ClearSeat(memberID string) bool {
	cleared := false
	for i := range in.Seats {
		if occ := in.Seats[i].Occupant; occ != nil && occ.ID == memberID {
			in.Seats[i].Occupant = nil
			cleared = true
		}
	}
	return cleared
}

// FilledSeats counts seats with an occupant.
func (in *Instance) FilledSeats() int {
	n := 0
	for _, s := range in.Seats {
		if !s.Open() {
			n++
		}
	}
	return n
}

func (in *Instance) seatIndex(role string) int {
	for i, s := range in.Seats {
		if s.Role == role {
			return i
		}
	}
	return -1
}
