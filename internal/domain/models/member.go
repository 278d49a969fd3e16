// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a person affiliated with a chapter.
//
// Office is the legacy direct association of a member to a role. Role history
// (officer_assignments) takes precedence; Office is only consulted when no
// history row covers the target date.
type Member struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID  primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"`
	Degree     string             `bson:"degree,omitempty" json:"degree,omitempty"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Office     string             `bson:"office,omitempty" json:"office,omitempty"`

	// DirectoryID links the member to the external read-only directory.
	DirectoryID string `bson:"directory_id,omitempty" json:"directory_id,omitempty"`

	Status    string    `bson:"status" json:"status"` // active | inactive
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Visitor is a guest recorded at a session without a member record.
type Visitor struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	FullName    string             `bson:"full_name" json:"full_name"`
	Degree      string             `bson:"degree,omitempty" json:"degree,omitempty"`
	HomeChapter string             `bson:"home_chapter,omitempty" json:"home_chapter,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
