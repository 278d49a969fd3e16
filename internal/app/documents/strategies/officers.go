package strategies

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// ActiveAssignments picks at most one assignment per role active on day.
// Overlapping rows resolve to the latest start, then the latest created.
func ActiveAssignments(history []models.OfficerAssignment, day time.Time) map[string]models.OfficerAssignment {
	out := make(map[string]models.OfficerAssignment)
	for _, a := range history {
		if !a.ActiveAt(day) {
			continue
		}
		cur, ok := out[a.Role]
		if !ok || a.StartDate.After(cur.StartDate) ||
			(a.StartDate.Equal(cur.StartDate) && a.CreatedAt.After(cur.CreatedAt)) {
			out[a.Role] = a
		}
	}
	return out
}

// ResolveOfficers returns the roster at day, one row per role in
// models.OfficerRoles order. Role history wins; a member's direct office is
// the fallback; otherwise the role is vacant and printed as Placeholder.
func (b *Base) ResolveOfficers(ctx context.Context, chapterID primitive.ObjectID, day time.Time) ([]OfficerView, error) {
	history, err := b.Source.OfficerHistory(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	active := ActiveAssignments(history, day)

	var ids []primitive.ObjectID
	for _, a := range active {
		ids = append(ids, a.MemberID)
	}
	names := map[primitive.ObjectID]string{}
	if len(ids) > 0 {
		members, err := b.Source.Members(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			names[m.ID] = m.FullName
		}
	}

	var holders map[string]models.Member
	if len(active) < len(models.OfficerRoles) {
		list, err := b.Source.OfficeHolders(ctx, chapterID)
		if err != nil {
			return nil, err
		}
		sort.Slice(list, func(i, j int) bool { return list[i].FullName < list[j].FullName })
		holders = make(map[string]models.Member)
		for _, m := range list {
			if _, taken := holders[m.Office]; !taken && m.Office != "" {
				holders[m.Office] = m
			}
		}
	}

	out := make([]OfficerView, 0, len(models.OfficerRoles))
	for _, role := range models.OfficerRoles {
		v := OfficerView{Role: role, Label: roleLabel(role)}
		if a, ok := active[role]; ok && strings.TrimSpace(names[a.MemberID]) != "" {
			v.Name = names[a.MemberID]
		} else if m, ok := holders[role]; ok {
			v.Name = m.FullName
		} else {
			v.Name = Placeholder
			v.Vacant = true
		}
		out = append(out, v)
	}
	return out, nil
}

func rolesIndex(officers []OfficerView) map[string]OfficerView {
	m := make(map[string]OfficerView, len(officers))
	for _, o := range officers {
		m[o.Role] = o
	}
	return m
}

func pick(officers []OfficerView, roles ...string) []OfficerView {
	idx := rolesIndex(officers)
	out := make([]OfficerView, 0, len(roles))
	for _, r := range roles {
		if o, ok := idx[r]; ok {
			out = append(out, o)
		} else {
			out = append(out, OfficerView{Role: r, Label: roleLabel(r), Name: Placeholder, Vacant: true})
		}
	}
	return out
}
