// internal/domain/models/chapter.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chapter is a subordinate organization of an umbrella body and the primary
// tenant of the system. Document settings live on the chapter as a raw blob;
// the docsettings package normalizes legacy shapes on read.
type Chapter struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	BodyID primitive.ObjectID `bson:"body_id" json:"body_id"`

	TitlePrefix string `bson:"title_prefix" json:"title_prefix"` // e.g. "ARLS"
	Name        string `bson:"name" json:"name"`
	NameCI      string `bson:"name_ci" json:"name_ci"`
	Number      string `bson:"number" json:"number"`

	Street       string `bson:"street,omitempty" json:"street,omitempty"`
	StreetNumber string `bson:"street_number,omitempty" json:"street_number,omitempty"`
	District     string `bson:"district,omitempty" json:"district,omitempty"`
	City         string `bson:"city,omitempty" json:"city,omitempty"`
	State        string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode      string `bson:"zip_code,omitempty" json:"zip_code,omitempty"`

	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`

	// Rite worked by the chapter, shown on notices.
	Rite string `bson:"rite,omitempty" json:"rite,omitempty"`

	// Branding
	LogoPath string `bson:"logo_path,omitempty" json:"logo_path,omitempty"`

	// Raw document-settings blob (hierarchical or legacy flat).
	DocumentSettings map[string]any `bson:"document_settings,omitempty" json:"document_settings,omitempty"`

	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullAddress joins the non-empty address parts in postal order.
func (c Chapter) FullAddress() string {
	var parts []string
	street := strings.TrimSpace(c.Street)
	if street != "" && strings.TrimSpace(c.StreetNumber) != "" {
		street += ", " + strings.TrimSpace(c.StreetNumber)
	}
	for _, p := range []string{street, c.District} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	cityState := strings.TrimSpace(c.City)
	if st := strings.TrimSpace(c.State); st != "" {
		if cityState != "" {
			cityState += "/" + st
		} else {
			cityState = st
		}
	}
	if cityState != "" {
		parts = append(parts, cityState)
	}
	if z := strings.TrimSpace(c.ZipCode); z != "" {
		parts = append(parts, "CEP "+z)
	}
	return strings.Join(parts, " - ")
}

// UmbrellaBody groups chapters (federal or state level).
type UmbrellaBody struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Acronym   string             `bson:"acronym,omitempty" json:"acronym,omitempty"`
	Level     string             `bson:"level,omitempty" json:"level,omitempty"` // federal | state
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
