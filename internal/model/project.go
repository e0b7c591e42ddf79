// Package model defines the portfolio's data structures.
//
// Projects and certificates arrive from three places (the document store,
// the local cache, the bundled dataset) and are merged by key. The structs
// here are the canonical shape all three are normalized into; legacy field
// spellings are handled once, on ingestion, by normalize.go.
package model

import "time"

// Project is one portfolio entry.
//
// TechStack and Features are never nil. NewProject and NormalizeProject
// both guarantee that, so JSON output always carries [] rather than null.
type Project struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImagePath   string    `json:"imagePath"`
	TechStack   []string  `json:"techStack"`
	Features    []string  `json:"features"`
	GithubURL   string    `json:"githubUrl,omitempty"`
	DemoURL     string    `json:"demoUrl,omitempty"`
	Category    string    `json:"category,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// ProjectFields is the input to NewProject. Zero values mean "use the default".
type ProjectFields struct {
	ID          string
	Title       string
	Description string
	ImagePath   string
	TechStack   []string
	Features    []string
	GithubURL   string
	DemoURL     string
	Category    string
	Featured    bool
}

// NewProject builds a Project with every field explicitly set.
func NewProject(f ProjectFields) Project {
	return Project{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		ImagePath:   f.ImagePath,
		TechStack:   cloneStrings(f.TechStack),
		Features:    cloneStrings(f.Features),
		GithubURL:   f.GithubURL,
		DemoURL:     f.DemoURL,
		Category:    f.Category,
		Featured:    f.Featured,
	}
}

// cloneStrings copies s, turning nil into an empty slice.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
