package reconcile

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sakif/portfolio/internal/model"
)

type rec struct {
	Key string
	Src string
}

func keyOfRec(r rec) string { return r.Key }

func recs(src string, keys ...string) []rec {
	out := make([]rec, 0, len(keys))
	for _, k := range keys {
		out = append(out, rec{Key: k, Src: src})
	}
	return out
}

func TestMerge_DisjointKeepsEverythingInOrder(t *testing.T) {
	a := recs("a", "1", "2", "3")
	b := recs("b", "4", "5")

	got := Merge(a, b, keyOfRec)

	want := append(recs("a", "1", "2", "3"), recs("b", "4", "5")...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_FirstWriteWins(t *testing.T) {
	a := recs("a", "1", "shared")
	b := recs("b", "shared", "2")

	got := Merge(a, b, keyOfRec)

	want := []rec{{"1", "a"}, {"shared", "a"}, {"2", "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_EmptySides(t *testing.T) {
	a := recs("a", "1", "2")

	tests := []struct {
		name      string
		primary   []rec
		secondary []rec
		want      []rec
	}{
		{"empty secondary", a, nil, a},
		{"empty primary", nil, a, a},
		{"both empty", nil, nil, []rec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.primary, tt.secondary, keyOfRec)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	a := recs("a", "1")
	got := Merge(a, nil, keyOfRec)
	got[0].Src = "mutated"

	if a[0].Src != "a" {
		t.Errorf("Merge() result aliases its input")
	}
}

func TestCompose_GroupingDoesNotChangeSelection(t *testing.T) {
	remote := recs("remote", "1", "2")
	cache := recs("cache", "2", "3", "1")
	static := recs("static", "3", "4", "2")

	leftFold := Merge(Merge(remote, cache, keyOfRec), static, keyOfRec)
	rightFold := Merge(remote, Merge(cache, static, keyOfRec), keyOfRec)
	composed := Compose(keyOfRec, remote, cache, static)

	pick := func(rs []rec) map[string]string {
		m := make(map[string]string, len(rs))
		for _, r := range rs {
			m[r.Key] = r.Src
		}
		return m
	}

	want := map[string]string{"1": "remote", "2": "remote", "3": "cache", "4": "static"}
	for name, got := range map[string][]rec{"left": leftFold, "right": rightFold, "compose": composed} {
		if diff := cmp.Diff(want, pick(got)); diff != "" {
			t.Errorf("%s grouping mismatch (-want +got):\n%s", name, diff)
		}
		if len(got) != 4 {
			t.Errorf("%s grouping has %d records, want 4", name, len(got))
		}
	}
	if diff := cmp.Diff(leftFold, composed); diff != "" {
		t.Errorf("Compose() differs from left fold (-want +got):\n%s", diff)
	}
}

func TestMerge_LargeDisjointLength(t *testing.T) {
	var a, b []rec
	for i := range 50 {
		a = append(a, rec{Key: fmt.Sprintf("a%d", i)})
		b = append(b, rec{Key: fmt.Sprintf("b%d", i)})
	}
	if got := len(Merge(a, b, keyOfRec)); got != 100 {
		t.Errorf("len(Merge()) = %d, want 100", got)
	}
}

func TestProjectKey(t *testing.T) {
	untitled := model.Project{Title: "   ", Description: "d"}
	encoded, err := json.Marshal(untitled)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	tests := []struct {
		name string
		p    model.Project
		want string
	}{
		{"id wins", model.Project{ID: "5", Title: "X"}, "5"},
		{"title lower-cased", model.Project{Title: "SAME"}, "same"},
		{"blank title falls through to encoding", untitled, string(encoded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectKey(tt.p); got != tt.want {
				t.Errorf("ProjectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMerge_ProjectsCollapseByKey(t *testing.T) {
	byID := Merge(
		[]model.Project{{ID: "5", Title: "X"}},
		[]model.Project{{ID: "5", Title: "Y"}},
		ProjectKey,
	)
	if len(byID) != 1 || byID[0].Title != "X" {
		t.Errorf("Merge() by id = %+v, want single X", byID)
	}

	byTitle := Merge(
		[]model.Project{{Title: "Same"}},
		[]model.Project{{Title: "SAME"}},
		ProjectKey,
	)
	if len(byTitle) != 1 || byTitle[0].Title != "Same" {
		t.Errorf("Merge() by title = %+v, want single Same", byTitle)
	}
}

func TestMerge_CertificatesWithoutTitleUseContent(t *testing.T) {
	a := model.Certificate{Issuer: "Dicoding", Year: "2025"}
	b := model.Certificate{Issuer: "Dicoding", Year: "2024"}

	got := Merge([]model.Certificate{a}, []model.Certificate{b, a}, CertificateKey)
	if len(got) != 2 {
		t.Errorf("len(Merge()) = %d, want 2", len(got))
	}
}

func TestOrderComments(t *testing.T) {
	at := func(sec int64) *time.Time {
		ts := time.Unix(sec, 0)
		return &ts
	}

	in := []model.Comment{
		{ID: "a", IsPinned: false, CreatedAt: at(1)},
		{ID: "b", IsPinned: true, CreatedAt: at(2)},
		{ID: "c", IsPinned: true, CreatedAt: at(1)},
		{ID: "d", IsPinned: false, CreatedAt: at(3)},
	}

	got := OrderComments(in)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	if diff := cmp.Diff([]string{"b", "c", "d", "a"}, ids); diff != "" {
		t.Errorf("OrderComments() mismatch (-want +got):\n%s", diff)
	}
	if in[0].ID != "a" {
		t.Errorf("OrderComments() modified its input")
	}
}

func TestOrderComments_NilTimestampsAndTies(t *testing.T) {
	ts := time.Unix(100, 0)

	in := []model.Comment{
		{ID: "nil-1"},
		{ID: "t-1", CreatedAt: &ts},
		{ID: "nil-2"},
		{ID: "t-2", CreatedAt: &ts},
	}

	got := OrderComments(in)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	if diff := cmp.Diff([]string{"t-1", "t-2", "nil-1", "nil-2"}, ids); diff != "" {
		t.Errorf("OrderComments() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderComments_Empty(t *testing.T) {
	got := OrderComments(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("OrderComments(nil) = %v, want empty slice", got)
	}
}
