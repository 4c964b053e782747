package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/ir"
)

var errIntentional = errors.New("intentional failure")

func simpleBody() []ir.Instruction {
	return []ir.Instruction{
		&ir.Label{Block: 0},
		&ir.Const{Dst: 0, Value: 1},
		&ir.Goto{Target: 1},
		&ir.Label{Block: 1},
		&ir.Return{Value: 0, HasVal: true},
	}
}

func TestWithCFGRoundTripsFlattenedIR(t *testing.T) {
	m := NewMethod("f", simpleBody())

	err := m.WithCFG(func(cfg *ir.CFG) error {
		assert.Len(t, cfg.Blocks(), 2)
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.IR(), "method IR should be repopulated after WithCFG returns")
}

func TestWithCFGPropagatesCallbackError(t *testing.T) {
	m := NewMethod("f", simpleBody())
	sentinel := m.IR()

	err := m.WithCFG(func(cfg *ir.CFG) error {
		cfg.Entry.Instructions = append(cfg.Entry.Instructions, &ir.Const{Dst: 9, Value: 9})
		return errIntentional
	})
	require.Error(t, err)
	assert.Len(t, m.IR(), len(sentinel), "method IR should not be updated when the callback fails")
}

func TestStoreMethodsFlattensAcrossClasses(t *testing.T) {
	s := New(nil)
	s.AddClass(NewClass("A", []*Method{NewMethod("a1", simpleBody())}))
	s.AddClass(NewClass("B", []*Method{NewMethod("b1", simpleBody()), NewMethod("b2", simpleBody())}))

	assert.Len(t, s.Methods(), 3)
}
