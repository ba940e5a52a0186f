// Package idformat renders custom item IDs from an ordered list of template
// elements. The same renderer backs the authoritative server-side allocation
// and the display-only preview endpoint; callers of the preview must not
// treat its output as reserved.
package idformat

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Element kinds. Unknown kinds are skipped during rendering, never an error,
// so templates written against a newer server keep working on an older one.
const (
	KindFixedText    = "fixed_text"
	KindRandom20     = "random_20"
	KindRandom32     = "random_32"
	KindRandom6Digit = "random_6digit"
	KindRandom9Digit = "random_9digit"
	KindGUID         = "guid"
	KindDateTime     = "datetime"
	KindSequence     = "sequence"
)

// Date formats accepted by datetime elements. Anything else falls back to
// DateFormatCompact.
const (
	DateFormatCompact = "YYYYMMDD"
	DateFormatDashed  = "YYYY-MM-DD"
)

// Element is one step in an inventory's ID template. Order is semantically
// meaningful: elements concatenate in list order.
type Element struct {
	Kind       string `json:"kind"`
	Value      string `json:"value,omitempty"`       // fixed_text only
	DateFormat string `json:"date_format,omitempty"` // datetime only
	Padding    int    `json:"padding,omitempty"`     // sequence only; 0 means unpadded
}

// Renderer turns a template into an ID string. The clock, random source and
// GUID generator are injectable so tests can pin otherwise nondeterministic
// elements.
type Renderer struct {
	Now     func() time.Time
	RandN   func(n int64) int64 // uniform in [0, n)
	NewGUID func() string
}

// NewRenderer returns a renderer backed by the wall clock and the shared
// math/rand/v2 source.
func NewRenderer() *Renderer {
	return &Renderer{
		Now:     time.Now,
		RandN:   rand.Int64N,
		NewGUID: uuid.NewString,
	}
}

// Render concatenates the elements in order. sequenceOrdinal is the 1-based
// position the new item will occupy (current item count + 1); only sequence
// elements consume it. An empty template renders the empty string.
func (r *Renderer) Render(elements []Element, sequenceOrdinal int) string {
	var sb strings.Builder

	for _, el := range elements {
		switch el.Kind {
		case KindFixedText:
			sb.WriteString(el.Value)
		case KindRandom20:
			sb.WriteString(fmt.Sprintf("%05x", r.RandN(1<<20)))
		case KindRandom32:
			sb.WriteString(fmt.Sprintf("%08x", r.RandN(1<<32)))
		case KindRandom6Digit:
			sb.WriteString(fmt.Sprintf("%06d", r.RandN(1_000_000)))
		case KindRandom9Digit:
			sb.WriteString(fmt.Sprintf("%09d", r.RandN(1_000_000_000)))
		case KindGUID:
			sb.WriteString(r.NewGUID())
		case KindDateTime:
			sb.WriteString(r.Now().Format(dateLayout(el.DateFormat)))
		case KindSequence:
			if el.Padding > 0 {
				sb.WriteString(fmt.Sprintf("%0*d", el.Padding, sequenceOrdinal))
			} else {
				sb.WriteString(strconv.Itoa(sequenceOrdinal))
			}
		}
		// Unknown kinds: skip.
	}

	return sb.String()
}

func dateLayout(format string) string {
	switch format {
	case DateFormatDashed:
		return "2006-01-02"
	default:
		return "20060102"
	}
}
