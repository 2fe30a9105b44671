package fdlc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUpEven(t *testing.T) {
	assert.Equal(t, 0, roundUpEven(0))
	assert.Equal(t, 2, roundUpEven(1))
	assert.Equal(t, 2, roundUpEven(2))
	assert.Equal(t, 4, roundUpEven(3))
	assert.Equal(t, 4, roundUpEven(4))
}

func TestCompileTupleEvenArityAddsPadding(t *testing.T) {
	c := NewCompiler(nil)
	n := Tuple{Items: []Immediate{num(1), num(2)}, Tg: tag()}
	code := c.compileTuple(EmptyEnv(), n)

	var padWrites int
	for _, instr := range code {
		if mov, ok := instr.(IMov); ok {
			if ind, ok := mov.Dst.(Indirect); ok && ind.Disp == 4*3 {
				if _, isConstZero := mov.Src.(Const); isConstZero && mov.Src.(Const) == 0 {
					padWrites++
				}
			}
		}
	}
	assert.Equal(t, 1, padWrites, "a 2-item tuple (3 words incl. size) needs one pad word")
}

func TestCompileTupleOddArityNoPadding(t *testing.T) {
	c := NewCompiler(nil)
	n := Tuple{Items: []Immediate{num(1), num(2), num(3)}, Tg: tag()}
	code := c.compileTuple(EmptyEnv(), n)

	for _, instr := range code {
		if mov, ok := instr.(IMov); ok {
			if ind, ok := mov.Dst.(Indirect); ok && ind.Disp == 4*4 {
				t.Fatalf("unexpected pad write at a word beyond a fully-packed tuple: %+v", mov)
			}
		}
	}
}

func TestHeapRegisterConfigIsHonored(t *testing.T) {
	cfg := NewConfig()
	cfg.SetString("heap.register", "EBP")
	c := NewCompiler(cfg)
	n := Tuple{Items: []Immediate{num(1)}, Tg: tag()}
	code := c.compileTuple(EmptyEnv(), n)

	add, ok := code[2].(IAdd)
	assert.True(t, ok)
	assert.Equal(t, RegEBP, add.Dst)
	assert.Empty(t, c.Errors())
}

func TestHeapRegisterConfigRejectsUnknownName(t *testing.T) {
	cfg := NewConfig()
	cfg.SetString("heap.register", "EDI")
	c := NewCompiler(cfg)
	n := Tuple{Items: []Immediate{num(1)}, Tg: tag()}
	c.compileTuple(EmptyEnv(), n)

	assert.NotEmpty(t, c.Errors())
	assert.Equal(t, ErrInvalidConfig, c.Errors()[0].Kind)
}
