package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Legacy documents spell the same field several ways ("Title" vs "title",
// "Img" vs "image"). Each canonical field lists its accepted spellings in
// priority order; the first one present with a non-empty value wins.
var projectAliases = map[string][]string{
	"id":          {"id"},
	"title":       {"title", "Title"},
	"description": {"description", "Description"},
	"imagePath":   {"imagePath", "Img", "img", "image"},
	"techStack":   {"techStack", "TechStack"},
	"features":    {"features", "Features"},
	"githubUrl":   {"githubUrl", "Github", "github"},
	"demoUrl":     {"demoUrl", "Demo", "demo", "Link", "link"},
	"category":    {"category", "Category"},
	"featured":    {"featured", "Featured"},
	"createdAt":   {"createdAt", "created_at"},
	"updatedAt":   {"updatedAt", "updated_at"},
}

var certificateAliases = map[string][]string{
	"id":            {"id"},
	"title":         {"title", "Title"},
	"issuer":        {"issuer", "Issuer"},
	"year":          {"year", "Year"},
	"category":      {"category", "Category"},
	"description":   {"description", "Description"},
	"imagePath":     {"imagePath", "img", "image", "Img"},
	"credentialUrl": {"credentialUrl", "credentialURL"},
	"skills":        {"skills", "Skills"},
	"type":          {"type"},
	"createdAt":     {"createdAt", "created_at"},
	"updatedAt":     {"updatedAt", "updated_at"},
}

// now is swapped in tests that check the default certificate year.
var now = time.Now

// NormalizeProject maps a raw document onto a Project.
// The second return value lists fields that were not recognized, sorted;
// they are dropped from the result.
func NormalizeProject(doc map[string]any) (Project, []string) {
	d := newDocument(doc, projectAliases)

	p := NewProject(ProjectFields{
		ID:          d.str("id"),
		Title:       d.str("title"),
		Description: d.str("description"),
		ImagePath:   d.str("imagePath"),
		TechStack:   d.strList("techStack"),
		Features:    d.strList("features"),
		GithubURL:   d.str("githubUrl"),
		DemoURL:     d.str("demoUrl"),
		Category:    d.str("category"),
		Featured:    d.boolean("featured"),
	})
	p.CreatedAt = d.timestamp("createdAt")
	p.UpdatedAt = d.timestamp("updatedAt")

	return p, d.unknown()
}

// NormalizeCertificate maps a raw document onto a Certificate.
// A missing year defaults to the current year and a missing type to
// "achievement", matching how older records were displayed.
func NormalizeCertificate(doc map[string]any) (Certificate, []string) {
	d := newDocument(doc, certificateAliases)

	year := d.str("year")
	if year == "" {
		year = strconv.Itoa(now().Year())
	}

	c := NewCertificate(CertificateFields{
		ID:            d.str("id"),
		Title:         d.str("title"),
		Issuer:        d.str("issuer"),
		Year:          year,
		Category:      d.str("category"),
		Description:   d.str("description"),
		ImagePath:     d.str("imagePath"),
		CredentialURL: d.str("credentialUrl"),
		Skills:        d.strList("skills"),
		Type:          d.str("type"),
	})
	c.CreatedAt = d.timestamp("createdAt")
	c.UpdatedAt = d.timestamp("updatedAt")

	return c, d.unknown()
}

// document resolves canonical field names against a raw map.
type document struct {
	raw     map[string]any
	aliases map[string][]string
}

func newDocument(raw map[string]any, aliases map[string][]string) document {
	return document{raw: raw, aliases: aliases}
}

// lookup returns the first non-empty value among the field's spellings.
func (d document) lookup(field string) (any, bool) {
	for _, name := range d.aliases[field] {
		v, ok := d.raw[name]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (d document) str(field string) string {
	v, ok := d.lookup(field)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func (d document) strList(field string) []string {
	v, ok := d.lookup(field)
	if !ok {
		return []string{}
	}
	switch t := v.(type) {
	case []string:
		return cloneStrings(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, isStr := item.(string); isStr {
				out = append(out, s)
			}
		}
		return out
	case string:
		// comma-separated lists come from hand-edited documents
		out := []string{}
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{}
	}
}

func (d document) boolean(field string) bool {
	v, ok := d.lookup(field)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}

func (d document) timestamp(field string) time.Time {
	v, ok := d.lookup(field)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// unknown lists keys that match no accepted spelling.
func (d document) unknown() []string {
	known := make(map[string]struct{})
	for _, names := range d.aliases {
		for _, n := range names {
			known[n] = struct{}{}
		}
	}

	var out []string
	for k := range d.raw {
		if _, ok := known[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
