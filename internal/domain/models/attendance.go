// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance statuses.
const (
	AttendancePending = "pending"
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// Attendance methods.
const (
	MethodBulk    = "bulk"
	MethodCheckIn = "check_in"
	MethodManual  = "manual"
)

// Attendance records one member or visitor (exactly one is set) at a session.
type Attendance struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	SessionID primitive.ObjectID  `bson:"session_id" json:"session_id"`
	MemberID  *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	VisitorID *primitive.ObjectID `bson:"visitor_id,omitempty" json:"visitor_id,omitempty"`
	Status    string              `bson:"status" json:"status"`
	Method    string              `bson:"method" json:"method"`
	Latitude  *float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CheckedAt *time.Time          `bson:"checked_at,omitempty" json:"checked_at,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

// IsVisitor reports whether the row records a visitor.
func (a Attendance) IsVisitor() bool {
	return a.VisitorID != nil
}
