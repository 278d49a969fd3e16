package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Certificate builds a per-member attendance certificate.
type Certificate struct {
	*Base
}

func (c *Certificate) Kind() string         { return models.KindCertificate }
func (c *Certificate) TemplateName() string { return models.KindCertificate }
func (c *Certificate) SettingsKey() string  { return docsettings.KeyNotice }
func (c *Certificate) DocumentType() string { return models.DocCertificate }

// BuildContext requires both the session and the member, and the member to
// have been recorded present.
func (c *Certificate) BuildContext(ctx context.Context, req Request) (*Context, error) {
	if req.MemberID.IsZero() {
		return nil, fmt.Errorf("%w: member id required", docerr.ErrInvalidInput)
	}
	s, ch, err := c.sessionAndChapter(ctx, req)
	if err != nil {
		return nil, err
	}
	m, err := c.Source.Member(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("member: %w", err)
	}
	if m.ChapterID != s.ChapterID {
		return nil, fmt.Errorf("member: %w", docerr.ErrNotFound)
	}
	if err := c.attended(ctx, s, m); err != nil {
		return nil, err
	}

	out, err := c.common(ctx, ch, c.Kind(), c.SettingsKey(), req)
	if err != nil {
		return nil, err
	}
	out.IDs.SessionID = s.ID
	out.IDs.MemberID = m.ID
	out.Session = sessionView(s)
	out.Member = &PersonView{Name: m.FullName, Degree: m.Degree, DegreeLabel: label(degreeLabels, m.Degree)}
	out.Title = "Certificado de Presença"
	if err := c.withOfficers(ctx, out, ch, s.Date,
		models.RoleWorshipfulMaster, models.RoleSecretary); err != nil {
		return nil, err
	}

	kind := strings.TrimSpace(out.Session.TypeLabel + " " + subtypeSuffix(out.Session))
	var degree string
	if out.Member.DegreeLabel != "" {
		degree = ", " + out.Member.DegreeLabel
	}
	out.CertificateText = fmt.Sprintf(
		"Certificamos que %s%s, esteve presente à %dª Sessão %s da %s, realizada em %s.",
		m.FullName, degree, s.Number, kind, out.Chapter.DisplayName, out.Session.DateLong)
	out.ValidationCode = attest.ShortCode(ch.ID.Hex(), s.ID.Hex(), m.ID.Hex(), out.CertificateText)
	return out, nil
}

func subtypeSuffix(s *SessionView) string {
	if s.Subtype == "" || s.Subtype == "regular" {
		return ""
	}
	return s.SubtypeLabel
}

func (c *Certificate) attended(ctx context.Context, s models.Session, m models.Member) error {
	rows, err := c.Source.Attendance(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("attendance: %w", err)
	}
	for _, a := range rows {
		if a.MemberID != nil && *a.MemberID == m.ID && a.Status == models.AttendancePresent {
			return nil
		}
	}
	return fmt.Errorf("%w: member was not recorded present", docerr.ErrInvalidState)
}
