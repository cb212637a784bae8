package catalog

import (
	"time"

	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/google/uuid"
)

// Entry is the catalog's best-known metadata for one book file. Filename is
// the unique key (relative to the books root) and doubles as the download
// link target; it is carried as the map key in the persisted document rather
// than as a field.
type Entry struct {
	Filename        string           `json:"-"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	Format          mediafile.Format `json:"format"`
	ModifiedAt      time.Time        `json:"mtime"`
	HasFullMetadata bool             `json:"has_full_metadata"`
}

// ID returns the entry's stable feed identifier, derived deterministically
// from the filename so it survives restarts and rescans.
func (e *Entry) ID() string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("dropshelf:"+e.Filename)).String()
}

// Progress tracks the current or most recent enrichment pass. Counters are
// reset when a pass starts and only grow within a pass.
type Progress struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Status is the enrichment status exposed to the HTTP layer.
type Status struct {
	Enriching     bool     `json:"enriching"`
	Progress      Progress `json:"progress"`
	TotalBooks    int      `json:"total_books"`
	EnrichedBooks int      `json:"enriched_books"`
}
