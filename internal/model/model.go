// Package model defines the core domain types for party recruitment:
// recruitment descriptors, seats, the adjustable roster and the instance
// record that the lifecycle controller mutates.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ─── Validation errors ────────────────────────────────────────────────────────

// ErrFull is returned when a new member tries to join a party at capacity.
var ErrFull = errors.New("recruitment is full")

// ErrUnknownRole is returned when a role label does not belong to the
// recruitment type.
var ErrUnknownRole = errors.New("unknown role for this recruitment type")

// ErrRoleTaken is returned when a role is already held by another member.
var ErrRoleTaken = errors.New("role is already taken")

// ErrNotJoined is returned when a member leaves a party they never joined.
var ErrNotJoined = errors.New("member has not joined this recruitment")

// ErrNotOrganizer is returned when someone other than the organizer cancels.
var ErrNotOrganizer = errors.New("only the organizer can cancel this recruitment")

// ErrCancelled is returned for any action on a cancelled recruitment.
var ErrCancelled = errors.New("recruitment has been cancelled")

// ErrNoteRequired is returned when an adjustable join has no note.
var ErrNoteRequired = errors.New("a note is required to join the adjustable roster")

// ErrInvalidType is returned when a recruitment type string cannot be parsed.
var ErrInvalidType = errors.New("invalid recruitment type")

// ─── Recruitment types ────────────────────────────────────────────────────────

// RecruitmentType selects the seat layout and capacity of a recruitment.
type RecruitmentType string

const (
	TypeFull  RecruitmentType = "FULL"
	TypeLight RecruitmentType = "LIGHT"
	TypeFree8 RecruitmentType = "FREE8"
	TypeFree4 RecruitmentType = "FREE4"
)

// RoleAdjustable is the organizer role value that places the organizer on
// the adjustable roster instead of a fixed seat.
const RoleAdjustable = "ADJUSTABLE"

var (
	fullRoles  = []string{"MT", "ST", "H1", "H2", "D1", "D2", "D3", "D4"}
	lightRoles = []string{"Tank", "Healer", "DPS1", "DPS2"}
	free8Roles = []string{"Slot1", "Slot2", "Slot3", "Slot4", "Slot5", "Slot6", "Slot7", "Slot8"}
	free4Roles = []string{"Slot1", "Slot2", "Slot3", "Slot4"}
)

// Types lists every recruitment type in menu order.
func Types() []RecruitmentType {
	return []RecruitmentType{TypeFull, TypeLight, TypeFree8, TypeFree4}
}

// ParseRecruitmentType accepts any casing and surrounding whitespace.
func ParseRecruitmentType(s string) (RecruitmentType, error) {
	t := RecruitmentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known types.
func (t RecruitmentType) Valid() bool {
	switch t {
	case TypeFull, TypeLight, TypeFree8, TypeFree4:
		return true
	}
	return false
}

// Roles returns the ordered role labels for the type.
func (t RecruitmentType) Roles() []string {
	var roles []string
	switch t {
	case TypeFull:
		roles = fullRoles
	case TypeLight:
		roles = lightRoles
	case TypeFree8:
		roles = free8Roles
	case TypeFree4:
		roles = free4Roles
	}
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}

// MaxCapacity is 8 for full parties and 4 for light parties.
func (t RecruitmentType) MaxCapacity() int {
	switch t {
	case TypeFull, TypeFree8:
		return 8
	case TypeLight, TypeFree4:
		return 4
	}
	return 0
}

// HasFixedRoles is false for the FREE types, whose seats are plain slots.
func (t RecruitmentType) HasFixedRoles() bool {
	return t == TypeFull || t == TypeLight
}

// ─── Descriptor ───────────────────────────────────────────────────────────────

// Venue is a datacenter / world pair.
type Venue struct {
	DataCenter string `json:"data_center"`
	World      string `json:"world"`
}

// String renders the venue for display, or "" when unset.
func (v Venue) String() string {
	switch {
	case v.DataCenter == "" && v.World == "":
		return ""
	case v.World == "":
		return v.DataCenter
	case v.DataCenter == "":
		return v.World
	}
	return v.DataCenter + " / " + v.World
}

// Descriptor holds the fields chosen by the organizer. It never changes
// after the recruitment is published.
type Descriptor struct {
	Content       string          `json:"content"`
	Type          RecruitmentType `json:"type"`
	Venue         Venue           `json:"venue"`
	Time          string          `json:"time"`
	Comment       string          `json:"comment"`
	OrganizerName string          `json:"organizer_name"`
	OrganizerID   string          `json:"organizer_id"`
}

// Validate checks the fields every recruitment needs.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("content name is required")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	if d.OrganizerID == "" {
		return fmt.Errorf("organizer id is required")
	}
	return nil
}

// ─── Instance ─────────────────────────────────────────────────────────────────

// Member identifies a participant. ID is the platform user id and decides
// identity; Name is only for display.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Seat is one fixed role slot. A nil Occupant means the seat is open.
type Seat struct {
	Role     string  `json:"role"`
	Occupant *Member `json:"occupant,omitempty"`
}

// Open reports whether nobody holds the seat.
func (s Seat) Open() bool { return s.Occupant == nil }

// RosterEntry is an adjustable-roster participant and their note.
type RosterEntry struct {
	Member Member `json:"member"`
	Note   string `json:"note"`
}

// Status is the stored lifecycle status. OPEN and FULL are derived from
// occupancy, so only cancellation is recorded.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCancelled Status = "cancelled"
)

// Instance is one recruitment: its descriptor, seat registry, adjustable
// roster and the party-full latch, plus where its panel lives.
type Instance struct {
	ID            string        `json:"id"`
	Descriptor    Descriptor    `json:"descriptor"`
	Seats         []Seat        `json:"seats"`
	Roster        []RosterEntry `json:"roster"`
	FullyNotified bool          `json:"fully_notified"`
	Status        Status        `json:"status"`
	ThreadID      string        `json:"thread_id,omitempty"`
	MessageID     string        `json:"message_id,omitempty"`
	JumpURL       string        `json:"jump_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewInstance builds an open recruitment and seats the organizer according
// to organizerRole (see ResolveOrganizerRole).
func NewInstance(id string, d Descriptor, organizerRole string, now time.Time) (*Instance, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	roles := d.Type.Roles()
	in := &Instance{
		ID:         id,
		Descriptor: d,
		Seats:      make([]Seat, len(roles)),
		Roster:     []RosterEntry{},
		Status:     StatusOpen,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	for i, r := range roles {
		in.Seats[i] = Seat{Role: r}
	}

	role, ok := ResolveOrganizerRole(d.Type, organizerRole)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, organizerRole)
	}
	organizer := Member{ID: d.OrganizerID, Name: d.OrganizerName}
	switch role {
	case "":
	case RoleAdjustable:
		in.Roster = append(in.Roster, RosterEntry{Member: organizer})
	default:
		if err := in.OccupySeat(role, organizer); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// ResolveOrganizerRole maps the organizer's chosen role to a seat label,
// RoleAdjustable or "" (not participating). The legacy hints "Tank",
// "Healer" and "DPS" land on MT, H1 and D1 for FULL parties.
func ResolveOrganizerRole(t RecruitmentType, raw string) (string, bool) {
	role := strings.TrimSpace(raw)
	if role == "" || strings.EqualFold(role, "none") {
		return "", true
	}
	if strings.EqualFold(role, RoleAdjustable) {
		return RoleAdjustable, true
	}
	for _, r := range t.Roles() {
		if strings.EqualFold(r, role) {
			return r, true
		}
	}
	if t == TypeFull {
		switch {
		case strings.Contains(role, "Tank"):
			return "MT", true
		case strings.Contains(role, "Healer"):
			return "H1", true
		case strings.Contains(role, "DPS"):
			return "D1", true
		}
	}
	return "", false
}

// Cancelled reports whether the recruitment reached its terminal state.
func (in *Instance) Cancelled() bool {
	return in.Status == StatusCancelled
}

// Cancel moves the recruitment to its terminal state. Only the organizer
// may do so.
func (in *Instance) Cancel(actorID string) error {
	if in.Cancelled() {
		return ErrCancelled
	}
	if actorID != in.Descriptor.OrganizerID {
		return ErrNotOrganizer
	}
	in.Status = StatusCancelled
	return nil
}

// Holds reports whether the member has a seat or a roster entry.
func (in *Instance) Holds(memberID string) bool {
	if _, ok := in.SeatOf(memberID); ok {
		return true
	}
	return in.InRoster(memberID)
}

// Leave removes the member from every seat and the roster. It returns
// ErrNotJoined when nothing was removed.
func (in *Instance) Leave(memberID string) error {
	if in.Cancelled() {
		return ErrCancelled
	}
	fromSeat := in.ClearSeat(memberID)
	fromRoster := in.RemoveAdjustable(memberID)
	if !fromSeat && !fromRoster {
		return ErrNotJoined
	}
	in.releaseLatch()
	return nil
}

// release clears every position held by the member.
func (in *Instance) release(memberID string) {
	in.ClearSeat(memberID)
	in.RemoveAdjustable(memberID)
}
