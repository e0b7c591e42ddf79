package surreal

import (
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/sakif/portfolio/internal/model"
)

// flatten rewrites driver-specific values in a returned row into plain Go
// values the model normalizers understand: record ids become their string
// key, datetimes become time.Time.
func flatten(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = plain(v)
	}
	if id, ok := row["id"]; ok {
		out["id"] = recordKey(id)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time
	case models.RecordID:
		return recordKey(t)
	case *models.RecordID:
		if t == nil {
			return nil
		}
		return recordKey(*t)
	default:
		return v
	}
}

func recordKey(v any) string {
	switch t := v.(type) {
	case models.RecordID:
		return fmt.Sprint(t.ID)
	case *models.RecordID:
		if t == nil {
			return ""
		}
		return fmt.Sprint(t.ID)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func projectDocument(p *model.Project) map[string]any {
	return map[string]any{
		"title":       p.Title,
		"description": p.Description,
		"imagePath":   p.ImagePath,
		"techStack":   nonNil(p.TechStack),
		"features":    nonNil(p.Features),
		"githubUrl":   p.GithubURL,
		"demoUrl":     p.DemoURL,
		"category":    p.Category,
		"featured":    p.Featured,
		"createdAt":   datetime(p.CreatedAt),
		"updatedAt":   datetime(p.UpdatedAt),
	}
}

func certificateDocument(c *model.Certificate) map[string]any {
	return map[string]any{
		"title":         c.Title,
		"issuer":        c.Issuer,
		"year":          c.Year,
		"category":      c.Category,
		"description":   c.Description,
		"imagePath":     c.ImagePath,
		"credentialUrl": c.CredentialURL,
		"skills":        nonNil(c.Skills),
		"type":          c.Type,
		"createdAt":     datetime(c.CreatedAt),
		"updatedAt":     datetime(c.UpdatedAt),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// commentFromRow maps a comment row. Comments have no legacy spellings,
// so there is no normalizer; missing fields keep their zero value.
func commentFromRow(row map[string]any) model.Comment {
	r := flatten(row)
	c := model.Comment{}
	c.ID, _ = r["id"].(string)
	c.Content, _ = r["content"].(string)
	c.AuthorName, _ = r["userName"].(string)
	c.IsAdmin, _ = r["isAdmin"].(bool)
	c.IsPinned, _ = r["isPinned"].(bool)
	if ts, ok := r["createdAt"].(time.Time); ok && !ts.IsZero() {
		c.CreatedAt = &ts
	}
	return c
}
