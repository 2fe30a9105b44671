package fdlc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileWithConfigUsesSuppliedConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("assert.strict_bounds", false)
	code, err := CompileWithConfig(num(1), cfg)
	assert.NoError(t, err)
	assert.NotEmpty(t, code)
}

func TestCompileProgramWrapsWithPrologueAndEpilogue(t *testing.T) {
	prog, errs := CompileProgram(num(1), nil)
	assert.Empty(t, errs)
	assert.NotNil(t, prog)

	assert.IsType(t, IPush{}, prog.Code[0])
	assert.Equal(t, RegEBP, prog.Code[0].(IPush).Src)

	last := prog.Code[len(prog.Code)-1]
	assert.IsType(t, IRet{}, last)
}

func TestCompileProgramReturnsErrorsWithoutPanicking(t *testing.T) {
	prog, errs := CompileProgram(id("nope"), nil)
	assert.Nil(t, prog)
	assert.NotEmpty(t, errs)
}

func TestProgramPrettyStringIsStable(t *testing.T) {
	prog, errs := CompileProgram(Prim2{Op: OpPlus, Left: num(1), Right: num(2), Tg: tag()}, nil)
	assert.Empty(t, errs)
	assert.Equal(t, prog.PrettyString(), prog.PrettyString())
	assert.NotEmpty(t, prog.HighlightPrettyString())
}

func TestCodegenCommentsTogglesSpanComments(t *testing.T) {
	e := Prim2{Op: OpPlus, Left: num(1), Right: num(2), Tg: tag()}

	on := NewConfig()
	prog, errs := CompileProgram(e, on)
	assert.Empty(t, errs)
	assert.NotEmpty(t, prog.Spans)
	assert.Contains(t, prog.PrettyString(), ";;")

	off := NewConfig()
	off.SetBool("codegen.comments", false)
	prog, errs = CompileProgram(e, off)
	assert.Empty(t, errs)
	assert.NotContains(t, prog.PrettyString(), ";;")
}
