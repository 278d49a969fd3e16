// internal/domain/models/officer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Officer roles, in the order they are listed on documents.
const (
	RoleWorshipfulMaster = "worshipful_master"
	RoleSeniorWarden     = "senior_warden"
	RoleJuniorWarden     = "junior_warden"
	RoleOrator           = "orator"
	RoleSecretary        = "secretary"
	RoleTreasurer        = "treasurer"
	RoleChancellor       = "chancellor"
)

// OfficerRoles lists every role resolved for a session roster.
var OfficerRoles = []string{
	RoleWorshipfulMaster,
	RoleSeniorWarden,
	RoleJuniorWarden,
	RoleOrator,
	RoleSecretary,
	RoleTreasurer,
	RoleChancellor,
}

// RoleLabels are the printed titles for each role.
var RoleLabels = map[string]string{
	RoleWorshipfulMaster: "Venerável Mestre",
	RoleSeniorWarden:     "1º Vigilante",
	RoleJuniorWarden:     "2º Vigilante",
	RoleOrator:           "Orador",
	RoleSecretary:        "Secretário",
	RoleTreasurer:        "Tesoureiro",
	RoleChancellor:       "Chanceler",
}

// OfficerAssignment is one row of role history: a member holding a role in a
// chapter over [StartDate, EndDate]. A nil EndDate is open-ended.
type OfficerAssignment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	MemberID  primitive.ObjectID `bson:"member_id" json:"member_id"`
	Role      string             `bson:"role" json:"role"`
	StartDate time.Time          `bson:"start_date" json:"start_date"`
	EndDate   *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ActiveAt reports whether the assignment covers the given day.
func (a OfficerAssignment) ActiveAt(d time.Time) bool {
	if d.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !d.After(*a.EndDate)
}
