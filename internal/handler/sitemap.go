package handler

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/portfolio/internal/service"
)

// sitePages are the fixed pages listed in every sitemap.
var sitePages = []string{"/", "/about", "/contact", "/portfolio"}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// SitemapHandler renders /sitemap.xml from the reconciled catalog.
type SitemapHandler struct {
	catalog *service.CatalogService
	siteURL string
	logger  *slog.Logger
}

func NewSitemapHandler(catalog *service.CatalogService, siteURL string, logger *slog.Logger) *SitemapHandler {
	return &SitemapHandler{
		catalog: catalog,
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger,
	}
}

// HandleSitemap lists the static pages plus one page per project that has
// an ID.
//
// HTTP: GET /sitemap.xml
func (h *SitemapHandler) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.Load(r.Context())
	if err != nil {
		return
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range sitePages {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + p})
	}
	for _, p := range cat.Projects {
		if p.ID == "" {
			continue
		}
		u := sitemapURL{Loc: h.siteURL + "/project/" + url.PathEscape(p.ID)}
		if !p.UpdatedAt.IsZero() {
			u.LastMod = p.UpdatedAt.UTC().Format("2006-01-02")
		} else if !p.CreatedAt.IsZero() {
			u.LastMod = p.CreatedAt.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		h.logger.Error("failed to encode sitemap", slog.String("error", err.Error()))
	}
}
