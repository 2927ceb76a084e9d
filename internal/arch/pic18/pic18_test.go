package pic18

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeTable(t *testing.T) {
	table, err := OpcodeTable()
	assert.NoError(t, err)

	tests := []struct {
		word     uint16
		template string
		skip     bool
		stop     bool
	}{
		{0x0000, "nop", false, false},
		{0x0012, "return S", false, true},
		{0x0105, BankSelectTemplate, false, false},
		{0x0E10, "movlw K", false, false},
		{0x0F10, "addlw K", false, false},
		{MovwfTBLPTRL, "movwf F, A", false, false},
		{0x2E20, "decfsz F, D, A", true, false},
		{0xB0E0, "btfsc F, B, A", true, false},
		{0xC123, "movff Y", false, false},
		{0xD7FF, "bra M", false, true},
		{0xDFFF, "rcall M", false, false},
		{0xE0FE, "bz N", false, false},
		{0xEC10, "call W", false, false},
		{0xEE12, "lfsr Z", false, false},
		{0xEF10, "goto W", false, true},
		{0xF000, "nop", false, false},
		{0xFFFF, "nop", false, false},
	}

	for _, tt := range tests {
		spec := table.Match(tt.word)
		assert.Equal(t, tt.template, spec.Template)
		assert.Equal(t, tt.skip, spec.Skip)
		assert.Equal(t, tt.stop, spec.Stop)
	}

	assert.True(t, table.Match(0x0001).IsUnknown())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "p___1A4", CodeLabel(0x1A4))
	assert.Equal(t, "p123456", CodeLabel(0x123456))
	assert.Equal(t, "t_32010", TableLabel(0x32010))
}

func TestInstructionClassification(t *testing.T) {
	assert.True(t, IsLiteralLoad(0x0E55))
	assert.True(t, IsLiteralLoad(0x0F55))
	assert.False(t, IsLiteralLoad(0x0D55))

	assert.Equal(t, 0, TablePointerByte(MovwfTBLPTRL))
	assert.Equal(t, 1, TablePointerByte(MovwfTBLPTRH))
	assert.Equal(t, 2, TablePointerByte(MovwfTBLPTRU))
	assert.Equal(t, -1, TablePointerByte(MovwfBSR))
}
