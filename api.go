package fdlc

// Compile produces the instruction stream for the body of expr (spec
// §6 "Top-level entry API"). It returns the first emit-time error
// encountered, if any; use CompileDiagnostics to collect every one of
// them instead of only the first.
func Compile(expr Expr) ([]Instruction, error) {
	return CompileWithConfig(expr, NewConfig())
}

// CompileWithConfig is Compile parameterized by an explicit Config
// (spec §4.12 — e.g. to select the Open Question's JG/JGE bounds
// check behavior).
func CompileWithConfig(expr Expr, cfg *Config) ([]Instruction, error) {
	c := NewCompiler(cfg)
	body := c.compileExpr(EmptyEnv(), expr)
	if len(c.errs) > 0 {
		return nil, c.errs[0]
	}
	return body, nil
}

// CompileDiagnostics compiles expr and returns every CompileError
// collected along the way, instead of stopping at the first (spec
// §4.11, §7 — the core stays pure; batching is purely an
// accumulation, never a side effect).
func CompileDiagnostics(expr Expr, cfg *Config) ([]Instruction, []CompileError) {
	c := NewCompiler(cfg)
	body := c.compileExpr(EmptyEnv(), expr)
	return body, c.errs
}

// CompileProgram compiles expr, wraps it with the stack sizer's
// locals count, and bundles the result into a Program ready for
// pretty-printing or diagnostics (used by cmd/fdlc).
func CompileProgram(expr Expr, cfg *Config) (*Program, []CompileError) {
	if cfg == nil {
		cfg = NewConfig()
	}
	body, errs := CompileDiagnostics(expr, cfg)
	if len(errs) > 0 {
		return nil, errs
	}
	n := CountVars(expr)
	code := Wrap(n, body)
	return &Program{
		Code:     code,
		Spans:    spanTable(code),
		Comments: cfg.GetBool("codegen.comments"),
	}, nil
}
