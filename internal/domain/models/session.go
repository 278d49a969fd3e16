// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session types.
const (
	SessionOrdinary      = "ordinary"
	SessionMagna         = "magna"
	SessionExtraordinary = "extraordinary"
)

// SubtypeElectoral marks sessions whose minutes follow the election script.
const SubtypeElectoral = "electoral"

// sessionSubtypes is the fixed map of valid subtypes per session type.
var sessionSubtypes = map[string][]string{
	SessionOrdinary:      {"regular", "instruction", "administrative", SubtypeElectoral},
	SessionMagna:         {"initiation", "elevation", "exaltation", "installation", "anniversary"},
	SessionExtraordinary: {"regular", "administrative", SubtypeElectoral, "funeral"},
}

// ValidSubtype reports whether subtype is allowed for the session type.
// An empty subtype is always allowed.
func ValidSubtype(sessionType, subtype string) bool {
	allowed, ok := sessionSubtypes[sessionType]
	if !ok {
		return false
	}
	if subtype == "" {
		return true
	}
	for _, s := range allowed {
		if s == subtype {
			return true
		}
	}
	return false
}

// Subtypes returns the valid subtypes for a session type.
func Subtypes(sessionType string) []string {
	return append([]string(nil), sessionSubtypes[sessionType]...)
}

// Session states.
const (
	StateScheduled  = "scheduled"
	StateInProgress = "in_progress"
	StateHeld       = "held"
	StateClosed     = "closed"
	StateCanceled   = "canceled"
)

// transitions holds the regular (non-privileged) edges of the state machine.
var transitions = map[string][]string{
	StateScheduled:  {StateInProgress, StateCanceled},
	StateInProgress: {StateHeld, StateCanceled},
	StateHeld:       {StateClosed},
}

// CanTransition reports whether a session may move from one state to another.
// The reopen edge (closed → held) requires privileged.
func CanTransition(from, to string, privileged bool) bool {
	if from == StateClosed && to == StateHeld {
		return privileged
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DefaultSessionDuration is assumed when a session has no end time.
const DefaultSessionDuration = 2 * time.Hour

// Session is a scheduled meeting of a chapter.
//
// StartTime and EndTime are "HH:MM" strings in the chapter's local time;
// Date carries the calendar day (midnight UTC).
type Session struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`

	Type      string    `bson:"type" json:"type"`
	Subtype   string    `bson:"subtype,omitempty" json:"subtype,omitempty"`
	Degree    string    `bson:"degree,omitempty" json:"degree,omitempty"` // session class (apprentice, fellow, master)
	Date      time.Time `bson:"date" json:"date"`
	StartTime string    `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string    `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Number    int       `bson:"number" json:"number"`

	Agenda        string `bson:"agenda,omitempty" json:"agenda,omitempty"`
	SentMail      string `bson:"sent_mail,omitempty" json:"sent_mail,omitempty"`
	ReceivedMail  string `bson:"received_mail,omitempty" json:"received_mail,omitempty"`
	StudyDirector string `bson:"study_director,omitempty" json:"study_director,omitempty"`
	Attire        string `bson:"attire,omitempty" json:"attire,omitempty"`

	State string `bson:"state" json:"state"`

	// Signing lease; set while a sign operation holds the session.
	SigningLock      string     `bson:"signing_lock,omitempty" json:"-"`
	SigningLockUntil *time.Time `bson:"signing_lock_until,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// clockOn combines the session date with an "HH:MM" clock value.
func (s Session) clockOn(clock string) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, s.Date.Location()), true
}

// StartsAt returns the session start instant (midnight when no start time).
func (s Session) StartsAt() time.Time {
	if t, ok := s.clockOn(s.StartTime); ok {
		return t
	}
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Date.Location())
}

// EffectiveEnd returns the end instant, assuming DefaultSessionDuration
// after the start when no end time is recorded.
func (s Session) EffectiveEnd() time.Time {
	if t, ok := s.clockOn(s.EndTime); ok {
		return t
	}
	return s.StartsAt().Add(DefaultSessionDuration)
}

// IsElectoral reports whether the session is an electoral session.
func (s Session) IsElectoral() bool {
	return s.Subtype == SubtypeElectoral
}

// Document generation kinds checked against the session state.
const (
	GenNotice       = "notice"
	GenMinutesDraft = "minutes_draft"
	GenMinutes      = "minutes_preview"
	GenSign         = "sign"
	GenCertificate  = "certificate"
)

var generationByState = map[string][]string{
	StateScheduled:  {GenNotice, GenMinutesDraft, GenMinutes},
	StateInProgress: {GenMinutesDraft, GenMinutes},
	StateHeld:       {GenMinutesDraft, GenMinutes, GenSign, GenCertificate},
}

// AllowsDocument reports whether a document kind may be generated in the
// session's current state. Closed and canceled sessions allow nothing;
// re-prints of stored artifacts are not generation.
func (s Session) AllowsDocument(kind string) bool {
	for _, k := range generationByState[s.State] {
		if k == kind {
			return true
		}
	}
	return false
}
