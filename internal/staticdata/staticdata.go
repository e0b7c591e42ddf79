// Package staticdata holds the portfolio entries compiled into the binary.
//
// They are the last fallback tier: whatever happens to the document store
// and the local cache, the site can still render these.
package staticdata

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sakif/portfolio/internal/model"
)

//go:embed data.yaml
var embedded []byte

// Dataset is a parsed copy of the bundled data.
type Dataset struct {
	Projects     []model.Project
	Certificates []model.Certificate
}

type rawDataset struct {
	Projects     []map[string]any `yaml:"projects"`
	Certificates []map[string]any `yaml:"certificates"`
}

// Parse decodes a YAML dataset. Unrecognized fields are reported as
// "projects[0].foo" style paths and left out of the records.
func Parse(data []byte) (*Dataset, []string, error) {
	var raw rawDataset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("staticdata: decoding: %w", err)
	}

	ds := &Dataset{
		Projects:     make([]model.Project, 0, len(raw.Projects)),
		Certificates: make([]model.Certificate, 0, len(raw.Certificates)),
	}
	var unknown []string

	for i, doc := range raw.Projects {
		p, extra := model.NormalizeProject(doc)
		for _, f := range extra {
			unknown = append(unknown, fmt.Sprintf("projects[%d].%s", i, f))
		}
		ds.Projects = append(ds.Projects, p)
	}
	for i, doc := range raw.Certificates {
		c, extra := model.NormalizeCertificate(doc)
		for _, f := range extra {
			unknown = append(unknown, fmt.Sprintf("certificates[%d].%s", i, f))
		}
		ds.Certificates = append(ds.Certificates, c)
	}

	return ds, unknown, nil
}

var bundled = sync.OnceValue(func() *Dataset {
	ds, _, err := Parse(embedded)
	if err != nil {
		// data.yaml ships with the binary; a parse error is a build defect
		panic(err)
	}
	return ds
})

// Projects returns a fresh copy of the bundled projects.
func Projects() []model.Project {
	src := bundled().Projects
	out := make([]model.Project, len(src))
	for i, p := range src {
		p.TechStack = slices.Clone(p.TechStack)
		p.Features = slices.Clone(p.Features)
		out[i] = p
	}
	return out
}

// Certificates returns a fresh copy of the bundled certificates.
func Certificates() []model.Certificate {
	src := bundled().Certificates
	out := make([]model.Certificate, len(src))
	for i, c := range src {
		c.Skills = slices.Clone(c.Skills)
		out[i] = c
	}
	return out
}
