package fdlc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapEmitsPrologueBodyEpilogue(t *testing.T) {
	body := []Instruction{ILabel{Target: Label{Name: "noop"}}}
	code := Wrap(2, body)

	assert.IsType(t, IPush{}, code[0])
	assert.IsType(t, IMov{}, code[1])
	assert.IsType(t, ISub{}, code[2])
	assert.IsType(t, IAnd{}, code[3])

	assert.Equal(t, body[0], code[4])

	tail := code[len(code)-3:]
	assert.IsType(t, IMov{}, tail[0])
	assert.IsType(t, IPop{}, tail[1])
	assert.IsType(t, IRet{}, tail[2])
}

func TestCompileLamProducesJumpOverAndAllocation(t *testing.T) {
	c := NewCompiler(nil)
	n := Lam{Params: []string{"a"}, Body: id("a"), Tg: tag()}
	code := c.compileLam(EmptyEnv(), n)

	assert.IsType(t, IJmp{}, code[0])
	assert.IsType(t, ILabel{}, code[1])

	last := code[len(code)-1]
	assert.IsType(t, IOr{}, last)
}

func TestFreeVarsOfClosureExcludesSelfAndParams(t *testing.T) {
	body := App{Callee: id("self"), Args: []Immediate{id("n"), id("captured")}, Tg: tag()}
	got := freeVarsOfClosure([]string{"n"}, "self", body)
	assert.Equal(t, []string{"captured"}, got)
}
