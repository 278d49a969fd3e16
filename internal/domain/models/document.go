// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document type tags.
const (
	DocSignedMinutes  = "signed_minutes"
	DocMinutesPreview = "minutes_preview"
	DocNotice         = "convocation_notice"
	DocCertificate    = "attendance_certificate"
	DocInvitation     = "invitation"
	DocCongratulation = "congratulation"
)

// Document kinds select a context strategy and its entry template. The
// notice, certificate, invitation and congratulation kinds share their
// document type tag.
const (
	KindSessionMinutes   = "session_minutes"
	KindElectoralMinutes = "electoral_minutes"
	KindNotice           = DocNotice
	KindCertificate      = DocCertificate
	KindInvitation       = DocInvitation
	KindCongratulation   = DocCongratulation
)

// DocumentKinds lists every kind in a stable order.
var DocumentKinds = []string{
	KindSessionMinutes, KindElectoralMinutes, KindNotice,
	KindCertificate, KindInvitation, KindCongratulation,
}

// IsDocumentKind reports whether k names a document kind.
func IsDocumentKind(k string) bool {
	for _, v := range DocumentKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Document is a stored artifact. Once written it is never updated.
type Document struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	ChapterID  primitive.ObjectID  `bson:"chapter_id" json:"chapter_id"`
	SessionID  *primitive.ObjectID `bson:"session_id,omitempty" json:"session_id,omitempty"`
	MemberID   *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Type       string              `bson:"type" json:"type"`
	Title      string              `bson:"title" json:"title"`
	StorageKey string              `bson:"storage_key" json:"-"`
	FileName   string              `bson:"file_name" json:"file_name"`
	Size       int64               `bson:"size" json:"size"`
	UploadedBy *primitive.ObjectID `bson:"uploaded_by,omitempty" json:"uploaded_by,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}

// Signature binds a document to its content hash. Hash is globally unique and
// serves as the public validation key.
type Signature struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	DocumentID primitive.ObjectID `bson:"document_id" json:"document_id"`
	SessionID  primitive.ObjectID `bson:"session_id" json:"session_id"`
	Hash       string             `bson:"hash" json:"hash"`
	Algorithm  string             `bson:"algorithm" json:"algorithm"`
	Nonce      string             `bson:"nonce" json:"-"`
	Canonical  []byte             `bson:"canonical" json:"-"`
	SignerID   primitive.ObjectID `bson:"signer_id" json:"signer_id"`
	SignerName string             `bson:"signer_name" json:"signer_name"`
	SignedAt   time.Time          `bson:"signed_at" json:"signed_at"`
}

// DocumentTemplate is a chapter's stored template for a document type. When
// absent, the packaged default is used.
type DocumentTemplate struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	Type      string             `bson:"type" json:"type"`
	Content   string             `bson:"content" json:"content"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Draft is the editable body and style overrides of a session's minutes.
type Draft struct {
	SessionID primitive.ObjectID `json:"session_id"`
	Text      string             `json:"text"`
	Styles    map[string]any     `json:"styles,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
	UpdatedBy string             `json:"updated_by,omitempty"`
}

// IsEmpty reports whether the draft carries neither text nor styles.
func (d Draft) IsEmpty() bool {
	return d.Text == "" && len(d.Styles) == 0
}
