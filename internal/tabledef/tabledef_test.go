package tabledef

import (
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseDefinitions(t *testing.T) {
	input := `
1, 2, 3
; sine table
0,49,90
127
;empty

; digits
48 49 50
`
	definitions, err := ParseDefinitions(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(definitions))

	assert.Equal(t, "", definitions[0].Comment)
	assert.Equal(t, []byte{1, 2, 3}, definitions[0].Bytes)
	assert.Equal(t, "sine table", definitions[1].Comment)
	assert.Equal(t, []byte{0, 49, 90, 127}, definitions[1].Bytes)
	assert.Equal(t, "digits", definitions[2].Comment)
	assert.Equal(t, []byte{48, 49, 50}, definitions[2].Bytes)
}

func TestParseDefinitionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "value out of range", input: "; table\n1,256\n"},
		{name: "hex value", input: "; table\n0x10\n"},
		{name: "negative value", input: "; table\n-1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinitions(strings.NewReader(tt.input))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLine))
			assert.ErrorContains(t, err, "line 2")
		})
	}
}

func TestParseRanges(t *testing.T) {
	input := "; dispatch tables\n100,106\n0x2001, 0x2004\n\n"

	ranges, err := ParseRanges(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(ranges))
	assert.Equal(t, Range{Start: 0x100, Stop: 0x106}, ranges[0])
	assert.Equal(t, Range{Start: 0x2001, Stop: 0x2004}, ranges[1])

	assert.Equal(t, []uint32{0x100, 0x102, 0x104, 0x106}, ranges[0].Seeds())
	assert.Equal(t, []uint32{0x2000, 0x2002, 0x2004}, ranges[1].Seeds())
}

func TestRangeSeedsAddressSpaceEnd(t *testing.T) {
	rng := Range{Start: 0xFFFFFFFD, Stop: 0xFFFFFFFF}
	assert.Equal(t, []uint32{0xFFFFFFFC, 0xFFFFFFFE}, rng.Seeds())

	ranges, err := ParseRanges(strings.NewReader("FFFFC,FFFFF"))
	assert.NoError(t, err)
	assert.Equal(t, []uint32{0xFFFFC, 0xFFFFE}, ranges[0].Seeds())
}

func TestParseRangesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing separator", input: "100 106"},
		{name: "invalid start", input: "xyz,106"},
		{name: "invalid stop", input: "100,"},
		{name: "reversed", input: "106,100"},
		{name: "start outside program memory", input: "100000,100002"},
		{name: "stop outside program memory", input: "FFFFFFFE,FFFFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRanges(strings.NewReader(tt.input))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLine))
		})
	}
}
