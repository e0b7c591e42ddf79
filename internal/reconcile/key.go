package reconcile

import (
	"encoding/json"
	"strings"

	"github.com/sakif/portfolio/internal/model"
)

// ProjectKey is the merge key of a project: its id, else its lower-cased
// title, else the record's JSON encoding.
func ProjectKey(p model.Project) string {
	return recordKey(p.ID, p.Title, p)
}

// CertificateKey follows the same rule as ProjectKey.
func CertificateKey(c model.Certificate) string {
	return recordKey(c.ID, c.Title, c)
}

func recordKey(id, title string, rec any) string {
	if id != "" {
		return id
	}
	if strings.TrimSpace(title) != "" {
		return strings.ToLower(title)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		// model types always encode; keep the key total anyway
		return ""
	}
	return string(b)
}
