// Package tblptr recovers the data table addresses that code loads into the table pointer
// register and replaces the loaded literals by references to a table label.
package tblptr

import (
	"slices"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/retrogolib/log"
)

// pointerBytes is the number of bytes of the table pointer: low, high and upper.
const pointerBytes = 3

var byteOperators = [pointerBytes]string{"low", "high", "upper"}

// Options of the table pointer recovery.
type Options struct {
	LoadWindow  int // maximum number of words to search backwards for the literal loads
	StoreWindow int // maximum number of words to search backwards for the pointer stores
}

// DefaultOptions returns the default search windows.
func DefaultOptions() Options {
	return Options{
		LoadWindow:  100,
		StoreWindow: 20,
	}
}

type coverage interface {
	IsCovered(address uint32) bool
}

// Sequence is a detected table pointer load sequence.
type Sequence struct {
	Stores       [pointerBytes]uint32 // addresses of the movwf TBLPTRx instructions, indexed by pointer byte
	Loads        [pointerBytes]uint32 // addresses of the literal loads, indexed by pointer byte
	Trigger      uint32               // the store instruction that started the search
	TableAddress uint32               // the assembled table byte address
	Valid        bool                 // table address points into the loaded program
}

// Recovery scans the covered code for table pointer load sequences.
type Recovery struct {
	logger   *log.Logger
	memory   *program.Memory
	coverage coverage
	numbers  numfmt.Formatter
	options  Options
}

// New returns a new table pointer recovery.
func New(logger *log.Logger, memory *program.Memory, coverage coverage,
	numbers numfmt.Formatter, options Options) *Recovery {

	return &Recovery{
		logger:   logger,
		memory:   memory,
		coverage: coverage,
		numbers:  numbers,
		options:  options,
	}
}

// Process scans all program addresses from the highest to the lowest one and rewrites
// the literal loads of every complete table pointer sequence that was found.
func (r *Recovery) Process() []Sequence {
	var sequences []Sequence
	addresses := r.memory.Addresses()

	for i := len(addresses) - 1; i >= 0; i-- {
		address := addresses[i]
		if !r.isCode(address) {
			continue
		}
		unit, _ := r.memory.Unit(address)
		if pic18.TablePointerByte(unit.Word) < 0 {
			continue
		}

		seq, ok := r.findSequence(address)
		if !ok {
			continue
		}
		r.apply(&seq)
		sequences = append(sequences, seq)

		// continue below the lowest store of the sequence
		lowest := slices.Min(seq.Stores[:])
		for i > 0 && addresses[i-1] >= lowest {
			i--
		}
	}

	r.logger.Debug("Table pointer recovery",
		log.Int("sequences", len(sequences)))
	return sequences
}

// findSequence searches backwards from a table pointer store for the stores of all three
// pointer bytes and the literal loads that provide their values.
func (r *Recovery) findSequence(trigger uint32) (Sequence, bool) {
	seq := Sequence{Trigger: trigger}

	stores, ok := r.findStores(trigger)
	if !ok {
		return seq, false
	}
	loads, ok := r.findLoads(trigger)
	if !ok {
		return seq, false
	}

	// the n-th lowest load provides the value of the n-th lowest store
	order := []int{0, 1, 2}
	slices.SortFunc(order, func(a, b int) int {
		return int(stores[a]) - int(stores[b])
	})

	for i, byteIndex := range order {
		if loads[i] >= stores[byteIndex] {
			return seq, false
		}
		seq.Stores[byteIndex] = stores[byteIndex]
		seq.Loads[byteIndex] = loads[i]
		unit, _ := r.memory.Unit(loads[i])
		seq.TableAddress |= uint32(unit.Word&pic18.LiteralValue) << (8 * byteIndex)
	}
	return seq, true
}

// findStores returns the nearest store for every table pointer byte, starting at the
// trigger and staying inside the store window.
func (r *Recovery) findStores(trigger uint32) ([pointerBytes]uint32, bool) {
	var stores [pointerBytes]uint32
	var found [pointerBytes]bool
	count := 0

	address := trigger
	for n := 0; n < r.options.StoreWindow; n++ {
		if !r.isCode(address) {
			break
		}

		unit, _ := r.memory.Unit(address)
		if b := pic18.TablePointerByte(unit.Word); b >= 0 && !found[b] {
			stores[b] = address
			found[b] = true
			count++
			if count == pointerBytes {
				return stores, true
			}
		}

		if address < pic18.WordSize {
			break
		}
		address -= pic18.WordSize
	}
	return stores, false
}

// findLoads returns the three nearest literal loads preceding the trigger in ascending
// address order. A literal load that is followed by a bank select register store is a
// bank restore and skipped.
func (r *Recovery) findLoads(trigger uint32) ([]uint32, bool) {
	loads := make([]uint32, 0, pointerBytes)

	address := trigger
	for n := 0; n < r.options.LoadWindow && len(loads) < pointerBytes; n++ {
		if address < pic18.WordSize {
			break
		}
		address -= pic18.WordSize
		if !r.isCode(address) {
			break
		}

		unit, _ := r.memory.Unit(address)
		if !pic18.IsLiteralLoad(unit.Word) || r.isBankRestore(address) {
			continue
		}
		loads = append(loads, address)
	}

	if len(loads) < pointerBytes {
		return nil, false
	}
	slices.Reverse(loads)
	return loads, true
}

func (r *Recovery) isBankRestore(literalLoad uint32) bool {
	next, ok := r.memory.Unit(literalLoad + pic18.WordSize)
	return ok && next.Word == pic18.MovwfBSR
}

// isCode returns whether the address is a loaded and covered word.
func (r *Recovery) isCode(address uint32) bool {
	return r.memory.Loaded(address) && r.coverage.IsCovered(address)
}

// apply labels the table and rewrites the literal loads, or marks the loads as invalid
// if the table address does not point into the loaded program.
func (r *Recovery) apply(seq *Sequence) {
	tableWord := seq.TableAddress &^ 1
	if seq.TableAddress > pic18.AddressMask || !r.memory.Loaded(tableWord) {
		comment := "invalid table pointer " + r.numbers.Hex(seq.TableAddress)
		for _, address := range seq.Loads {
			unit, _ := r.memory.Unit(address)
			unit.AppendComment(comment)
		}
		r.logger.Debug("Invalid table pointer",
			log.Hex("address", seq.TableAddress),
			log.Hex("trigger", seq.Trigger))
		return
	}

	seq.Valid = true
	table, _ := r.memory.Unit(tableWord)
	switch {
	case table.Label != "":
	case len(table.References) > 0:
		table.Label = pic18.CodeLabel(tableWord)
	default:
		table.Label = pic18.TableLabel(tableWord)
	}
	reference := table.Label
	if seq.TableAddress != tableWord {
		reference += "+1"
	}

	for byteIndex, address := range seq.Loads {
		unit, _ := r.memory.Unit(address)
		mnemonic := "movlw"
		if unit.Word&pic18.LiteralMask == pic18.AddlwOpcode {
			mnemonic = "addlw"
		}
		unit.Code = mnemonic + " " + byteOperators[byteIndex] + "(" + reference + ")"
	}
}
