package disasm

import "strings"

// tokens builds an instruction string from single tokens and allows to retract
// trailing tokens when a later operand field decides that they are implicit.
type tokens struct {
	items []string
}

func (t *tokens) push(s ...string) {
	t.items = append(t.items, s...)
}

// pop removes the last n tokens.
func (t *tokens) pop(n int) {
	n = min(n, len(t.items))
	t.items = t.items[:len(t.items)-n]
}

// hasSuffix returns whether the last tokens equal the given ones.
func (t *tokens) hasSuffix(suffix ...string) bool {
	if len(suffix) > len(t.items) {
		return false
	}
	offset := len(t.items) - len(suffix)
	for i, s := range suffix {
		if t.items[offset+i] != s {
			return false
		}
	}
	return true
}

func (t *tokens) String() string {
	return strings.Join(t.items, "")
}
