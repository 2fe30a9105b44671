package fdlc

import (
	"fmt"
	"sort"
)

// Config is a string-path -> typed value map carrying compiler-wide
// toggles, grounded on the teacher's map-of-typed-values settings
// object rather than a fixed struct: new knobs are added without
// touching every call site that builds one.
type Config map[string]*cfgVal

// NewConfig returns a Config primed with the defaults documented in
// SPEC_FULL.md §4.12.
func NewConfig() *Config {
	m := make(Config)
	m.SetBool("assert.strict_bounds", true)
	m.SetBool("codegen.comments", true)
	m.SetString("heap.register", "ESI")
	return &m
}

type cfgValType int

const (
	cfgValUndefined cfgValType = iota
	cfgValBool
	cfgValInt
	cfgValString
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValUndefined: "undefined",
		cfgValBool:      "bool",
		cfgValInt:       "int",
		cfgValString:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve %s from %s config value", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{typ: cfgValBool, asBool: v}
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{typ: cfgValInt, asInt: v}
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{typ: cfgValString, asString: v}
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValBool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool config value %q does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValInt)
		return val.asInt
	}
	panic(fmt.Sprintf("int config value %q does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValString)
		return val.asString
	}
	panic(fmt.Sprintf("string config value %q does not exist", path))
}

// Snapshot exports every key in deterministic (sorted) order as plain
// values, for callers — such as the compile cache — that need a
// stable, exported representation to hash or serialize; cfgVal's
// fields are deliberately unexported so normal callers only ever go
// through SetBool/GetBool and friends.
func (c *Config) Snapshot() []KV {
	keys := make([]string, 0, len(*c))
	for k := range *c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]KV, 0, len(keys))
	for _, k := range keys {
		v := (*c)[k]
		var val any
		switch v.typ {
		case cfgValBool:
			val = v.asBool
		case cfgValInt:
			val = v.asInt
		case cfgValString:
			val = v.asString
		}
		out = append(out, KV{Key: k, Type: v.typ.String(), Value: val})
	}
	return out
}

// KV is one exported (key, type, value) triple from Config.Snapshot.
type KV struct {
	Key   string
	Type  string
	Value any
}
