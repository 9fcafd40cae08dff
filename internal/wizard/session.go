// Package wizard implements the recruitment creation flow: an ordered
// sequence of choices (type, role, venue and time, comment, confirm) that
// assembles the descriptor of a new recruitment.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

// ErrWrongStep is returned when a choice arrives for a step the session
// is not at.
var ErrWrongStep = errors.New("wizard is not at that step")

// ErrInvalidChoice is returned when a selected value is not offered.
var ErrInvalidChoice = errors.New("invalid wizard choice")

// Step is a position in the flow.
type Step int

const (
	StepType Step = iota + 1
	StepRole
	StepSchedule
	StepComment
	StepConfirm
	StepDone
	StepDiscarded
)

func (s Step) String() string {
	switch s {
	case StepType:
		return "type"
	case StepRole:
		return "role"
	case StepSchedule:
		return "schedule"
	case StepComment:
		return "comment"
	case StepConfirm:
		return "confirm"
	case StepDone:
		return "done"
	case StepDiscarded:
		return "discarded"
	}
	return "unknown"
}

// Field is one of the independent schedule selectors.
type Field string

const (
	FieldDataCenter Field = "dc"
	FieldWorld      Field = "world"
	FieldDate       Field = "date"
	FieldHour       Field = "hour"
	FieldMinute     Field = "minute"
)

// ScheduleFields lists the selectors in display order.
func ScheduleFields() []Field {
	return []Field{FieldDataCenter, FieldWorld, FieldDate, FieldHour, FieldMinute}
}

// Session is one organizer's in-progress recruitment.
type Session struct {
	ID            string
	OrganizerID   string
	OrganizerName string
	Content       string

	Type       model.RecruitmentType
	Role       string
	DataCenter string
	World      string
	Date       string
	Hour       string
	Minute     string
	Comment    string

	step    Step
	catalog *Catalog
}

func newSession(id, organizerID, organizerName, content string, catalog *Catalog) *Session {
	return &Session{
		ID:            id,
		OrganizerID:   organizerID,
		OrganizerName: organizerName,
		Content:       strings.TrimSpace(content),
		step:          StepType,
		catalog:       catalog,
	}
}

// Step returns the current position.
func (s *Session) Step() Step { return s.step }

// Catalog returns the venue catalog the session validates against.
func (s *Session) Catalog() *Catalog { return s.catalog }

// ChooseType records the recruitment type. Types without fixed roles skip
// the role step and seat the organizer in Slot1.
func (s *Session) ChooseType(raw string) error {
	if s.step != StepType {
		return ErrWrongStep
	}
	t, err := model.ParseRecruitmentType(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChoice, err)
	}
	s.Type = t
	if t.HasFixedRoles() {
		s.step = StepRole
		return nil
	}
	s.Role = t.Roles()[0]
	s.step = StepSchedule
	return nil
}

// ChooseRole records the organizer's own role, RoleAdjustable, or "none".
func (s *Session) ChooseRole(raw string) error {
	if s.step != StepRole {
		return ErrWrongStep
	}
	role, ok := model.ResolveOrganizerRole(s.Type, raw)
	if !ok {
		return fmt.Errorf("%w: role %q", ErrInvalidChoice, raw)
	}
	s.Role = role
	s.step = StepSchedule
	return nil
}

// Select sets one schedule selector. Selectors may be set in any order and
// changed again until the comment is submitted; the session advances to the
// comment step once all of them hold a value.
func (s *Session) Select(field Field, value string) error {
	if s.step != StepSchedule && s.step != StepComment {
		return ErrWrongStep
	}
	value = strings.TrimSpace(value)

	switch field {
	case FieldDataCenter:
		if _, ok := s.catalog.DataCenter(value); !ok {
			return fmt.Errorf("%w: datacenter %q", ErrInvalidChoice, value)
		}
		if s.World != "" && !s.catalog.HasWorld(value, s.World) {
			s.World = ""
		}
		s.DataCenter = value
	case FieldWorld:
		if s.DataCenter == "" || !s.catalog.HasWorld(s.DataCenter, value) {
			return fmt.Errorf("%w: world %q", ErrInvalidChoice, value)
		}
		s.World = value
	case FieldDate:
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return fmt.Errorf("%w: date %q", ErrInvalidChoice, value)
		}
		s.Date = value
	case FieldHour:
		if !twoDigitsBelow(value, 24) {
			return fmt.Errorf("%w: hour %q", ErrInvalidChoice, value)
		}
		s.Hour = value
	case FieldMinute:
		if !twoDigitsBelow(value, 60) {
			return fmt.Errorf("%w: minute %q", ErrInvalidChoice, value)
		}
		s.Minute = value
	default:
		return fmt.Errorf("%w: field %q", ErrInvalidChoice, field)
	}

	if len(s.Missing()) == 0 {
		s.step = StepComment
	} else {
		s.step = StepSchedule
	}
	return nil
}

// Missing lists schedule selectors that have no value yet.
func (s *Session) Missing() []Field {
	var out []Field
	for _, f := range ScheduleFields() {
		if s.Value(f) == "" {
			out = append(out, f)
		}
	}
	return out
}

// Value returns the current value of a schedule selector.
func (s *Session) Value(f Field) string {
	switch f {
	case FieldDataCenter:
		return s.DataCenter
	case FieldWorld:
		return s.World
	case FieldDate:
		return s.Date
	case FieldHour:
		return s.Hour
	case FieldMinute:
		return s.Minute
	}
	return ""
}

// SetComment records the free-text comment and moves to confirmation.
func (s *Session) SetComment(text string) error {
	if s.step != StepComment {
		return ErrWrongStep
	}
	s.Comment = strings.TrimSpace(text)
	s.step = StepConfirm
	return nil
}

// Pending returns what Confirm would produce without finishing the flow.
func (s *Session) Pending() (model.Descriptor, string, error) {
	if s.step != StepConfirm {
		return model.Descriptor{}, "", ErrWrongStep
	}
	d := s.Descriptor()
	if err := d.Validate(); err != nil {
		return model.Descriptor{}, "", err
	}
	return d, s.Role, nil
}

// Confirm finishes the flow and returns the descriptor together with the
// organizer's role.
func (s *Session) Confirm() (model.Descriptor, string, error) {
	d, role, err := s.Pending()
	if err != nil {
		return model.Descriptor{}, "", err
	}
	s.step = StepDone
	return d, role, nil
}

// Discard abandons the session; nothing it collected is kept.
func (s *Session) Discard() {
	if s.step != StepDone {
		s.step = StepDiscarded
	}
}

// Descriptor assembles the descriptor from the choices made so far.
func (s *Session) Descriptor() model.Descriptor {
	return model.Descriptor{
		Content:       s.Content,
		Type:          s.Type,
		Venue:         model.Venue{DataCenter: s.DataCenter, World: s.World},
		Time:          s.TimeString(),
		Comment:       s.Comment,
		OrganizerName: s.OrganizerName,
		OrganizerID:   s.OrganizerID,
	}
}

// TimeString renders the scheduled time as "10/19(月) 21:00".
func (s *Session) TimeString() string {
	if s.Date == "" || s.Hour == "" || s.Minute == "" {
		return ""
	}
	d, err := time.Parse(time.DateOnly, s.Date)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s(%s) %s:%s", d.Format("01/02"), weekdays[d.Weekday()], s.Hour, s.Minute)
}

func twoDigitsBelow(v string, limit int) bool {
	if len(v) != 2 {
		return false
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 0 && n < limit
}
