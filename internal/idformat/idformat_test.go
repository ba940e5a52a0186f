package idformat

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRenderer pins the clock, random source and GUID generator so every
// element kind renders deterministically.
func fixedRenderer() *Renderer {
	return &Renderer{
		Now:     func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) },
		RandN:   func(n int64) int64 { return n - 1 }, // always the max value
		NewGUID: func() string { return "01234567-89ab-4cde-8f01-23456789abcd" },
	}
}

func TestRenderFixedText(t *testing.T) {
	r := fixedRenderer()

	assert.Equal(t, "INV-", r.Render([]Element{{Kind: KindFixedText, Value: "INV-"}}, 1))
	assert.Equal(t, "", r.Render([]Element{{Kind: KindFixedText}}, 1), "unset value emits empty string")
}

func TestRenderSequencePadding(t *testing.T) {
	r := fixedRenderer()

	t.Run("padded", func(t *testing.T) {
		assert.Equal(t, "007", r.Render([]Element{{Kind: KindSequence, Padding: 3}}, 7))
	})

	t.Run("unpadded", func(t *testing.T) {
		assert.Equal(t, "7", r.Render([]Element{{Kind: KindSequence}}, 7))
	})

	t.Run("padding never truncates", func(t *testing.T) {
		assert.Equal(t, "1234", r.Render([]Element{{Kind: KindSequence, Padding: 3}}, 1234))
	})
}

func TestRenderConcatenationOrder(t *testing.T) {
	r := fixedRenderer()

	elements := []Element{
		{Kind: KindFixedText, Value: "INV-"},
		{Kind: KindSequence, Padding: 4},
	}
	assert.Equal(t, "INV-0005", r.Render(elements, 5))
}

func TestRenderDateTime(t *testing.T) {
	r := fixedRenderer()

	t.Run("compact", func(t *testing.T) {
		assert.Equal(t, "20240315", r.Render([]Element{{Kind: KindDateTime, DateFormat: DateFormatCompact}}, 1))
	})

	t.Run("dashed", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", r.Render([]Element{{Kind: KindDateTime, DateFormat: DateFormatDashed}}, 1))
	})

	t.Run("unknown format defaults to compact", func(t *testing.T) {
		assert.Equal(t, "20240315", r.Render([]Element{{Kind: KindDateTime, DateFormat: "DD/MM/YYYY"}}, 1))
		assert.Equal(t, "20240315", r.Render([]Element{{Kind: KindDateTime}}, 1))
	})
}

func TestRenderRandomWidths(t *testing.T) {
	r := fixedRenderer()

	// RandN returns n-1, so these are the widest possible values.
	assert.Equal(t, "fffff", r.Render([]Element{{Kind: KindRandom20}}, 1))
	assert.Equal(t, "ffffffff", r.Render([]Element{{Kind: KindRandom32}}, 1))
	assert.Equal(t, "999999", r.Render([]Element{{Kind: KindRandom6Digit}}, 1))
	assert.Equal(t, "999999999", r.Render([]Element{{Kind: KindRandom9Digit}}, 1))

	// Smallest values are zero-padded to the same width.
	r.RandN = func(int64) int64 { return 0 }
	assert.Equal(t, "00000", r.Render([]Element{{Kind: KindRandom20}}, 1))
	assert.Equal(t, "00000000", r.Render([]Element{{Kind: KindRandom32}}, 1))
	assert.Equal(t, "000000", r.Render([]Element{{Kind: KindRandom6Digit}}, 1))
	assert.Equal(t, "000000000", r.Render([]Element{{Kind: KindRandom9Digit}}, 1))
}

func TestRenderRandomRanges(t *testing.T) {
	// Real randomness: width and range must hold for every draw.
	r := NewRenderer()

	hex5 := regexp.MustCompile(`^[0-9a-f]{5}$`)
	dec6 := regexp.MustCompile(`^[0-9]{6}$`)

	for i := 0; i < 200; i++ {
		out := r.Render([]Element{{Kind: KindRandom20}}, 1)
		require.Regexp(t, hex5, out)
		v, err := strconv.ParseInt(out, 16, 64)
		require.NoError(t, err)
		require.Less(t, v, int64(1<<20))

		out = r.Render([]Element{{Kind: KindRandom6Digit}}, 1)
		require.Regexp(t, dec6, out)
		n, err := strconv.Atoi(out)
		require.NoError(t, err)
		require.Less(t, n, 1_000_000)
	}
}

func TestRenderGUID(t *testing.T) {
	t.Run("injected", func(t *testing.T) {
		r := fixedRenderer()
		assert.Equal(t, "01234567-89ab-4cde-8f01-23456789abcd", r.Render([]Element{{Kind: KindGUID}}, 1))
	})

	t.Run("default is canonical v4 form", func(t *testing.T) {
		r := NewRenderer()
		out := r.Render([]Element{{Kind: KindGUID}}, 1)
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, out)
	})
}

func TestRenderUnknownKindSkipped(t *testing.T) {
	r := fixedRenderer()

	elements := []Element{
		{Kind: KindFixedText, Value: "A"},
		{Kind: "qr_code"}, // not a known kind
		{Kind: KindFixedText, Value: "B"},
	}
	assert.Equal(t, "AB", r.Render(elements, 1))
}

func TestRenderEmptyTemplate(t *testing.T) {
	r := fixedRenderer()

	assert.Equal(t, "", r.Render(nil, 1))
	assert.Equal(t, "", r.Render([]Element{}, 99))
}

func TestRenderDeterministicWithoutRandomElements(t *testing.T) {
	r := fixedRenderer()

	elements := []Element{
		{Kind: KindFixedText, Value: "DOC_"},
		{Kind: KindDateTime, DateFormat: DateFormatDashed},
		{Kind: KindFixedText, Value: "_"},
		{Kind: KindSequence, Padding: 5},
	}

	first := r.Render(elements, 42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Render(elements, 42))
	}
	assert.Equal(t, "DOC_2024-03-15_00042", first)
}

func TestRenderFullTemplate(t *testing.T) {
	r := fixedRenderer()

	elements := []Element{
		{Kind: KindFixedText, Value: "X-"},
		{Kind: KindRandom20},
		{Kind: KindFixedText, Value: "-"},
		{Kind: KindDateTime},
		{Kind: KindFixedText, Value: "-"},
		{Kind: KindSequence, Padding: 2},
	}

	assert.Equal(t, fmt.Sprintf("X-%s-%s-%s", "fffff", "20240315", "03"), r.Render(elements, 3))
}
