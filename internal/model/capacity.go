package model

// MaxCapacity returns the party size for the instance's type.
func (in *Instance) MaxCapacity() int {
	return in.Descriptor.Type.MaxCapacity()
}

// Occupancy is the number of filled seats plus the roster length.
func (in *Instance) Occupancy() int {
	return in.FilledSeats() + len(in.Roster)
}

// Remaining returns the number of free places.
func (in *Instance) Remaining() int {
	return in.MaxCapacity() - in.Occupancy()
}

// IsFull returns true when no places remain.
func (in *Instance) IsFull() bool {
	return in.Occupancy() >= in.MaxCapacity()
}

// CheckAndNotify latches the party-full notification. It returns true
// exactly once per fill episode: the first time occupancy reaches capacity
// after having been below it.
func (in *Instance) CheckAndNotify() bool {
	if !in.IsFull() || in.FullyNotified {
		return false
	}
	in.FullyNotified = true
	return true
}

// releaseLatch re-arms the notification once occupancy drops below capacity.
func (in *Instance) releaseLatch() {
	if in.FullyNotified && !in.IsFull() {
		in.FullyNotified = false
	}
}
