package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alvinyongho/06-fer-de-lance"
)

func TestKeyIsStableAcrossCalls(t *testing.T) {
	expr := fdlc.Let{Bind: "x", Rhs: fdlc.Number{Value: 1}, Body: fdlc.Id{Name: "x"}}
	cfg := fdlc.NewConfig()

	k1, err := Key(expr, cfg)
	assert.NoError(t, err)
	k2, err := Key(expr, cfg)
	assert.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestKeyChangesWithConfig(t *testing.T) {
	expr := fdlc.Number{Value: 1}
	a := fdlc.NewConfig()
	b := fdlc.NewConfig()
	b.SetBool("assert.strict_bounds", false)

	ka, err := Key(expr, a)
	assert.NoError(t, err)
	kb, err := Key(expr, b)
	assert.NoError(t, err)
	assert.NotEqual(t, ka, kb)
}

func TestPutAndGetRoundTrip(t *testing.T) {
	c, err := Open(":memory:")
	assert.NoError(t, err)
	defer c.Close()

	expr := fdlc.Number{Value: 41}
	cfg := fdlc.NewConfig()
	prog, errs := fdlc.CompileProgram(expr, cfg)
	assert.Empty(t, errs)

	key, err := Key(expr, cfg)
	assert.NoError(t, err)

	_, ok, err := c.Get(key)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Put(key, prog))

	pretty, ok, err := c.Get(key)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, prog.PrettyString(), pretty)
}
