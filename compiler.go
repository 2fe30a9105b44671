package fdlc

// Compiler holds the state threaded through one compile of a single
// top-level expression: the active Config and the emit-time errors
// accumulated along the way (spec §4.11 — the core stays pure and
// single-threaded; it just collects diagnostics instead of aborting
// at the first one, so a driver can report all of them).
type Compiler struct {
	cfg  *Config
	errs []CompileError
}

// NewCompiler returns a Compiler using cfg, or NewConfig()'s defaults
// if cfg is nil.
func NewCompiler(cfg *Config) *Compiler {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Compiler{cfg: cfg}
}

// Errors returns every emit-time error collected during the compile.
func (c *Compiler) Errors() []CompileError { return c.errs }

func (c *Compiler) addErr(e CompileError) { c.errs = append(c.errs, e) }

func (c *Compiler) at(span Span) instrBuilder { return instrBuilder{sl: span} }

// heapReg resolves the heap.register Config knob to the bump-pointer
// register tuple/closure allocation advances (spec §3's heap layout
// is only "conceptually ESI" — NewConfig's default). An unrecognized
// name is an emit-time error, falling back to ESI so the rest of the
// compile can still proceed and collect further diagnostics.
func (c *Compiler) heapReg(span Span) Reg {
	name := c.cfg.GetString("heap.register")
	reg, ok := regByName(name)
	if !ok {
		c.addErr(CompileError{Kind: ErrInvalidConfig, Message: "unknown heap.register " + name, Span: span})
	}
	return reg
}

// immArg resolves an Immediate to the operand that holds it: a
// constant for literals, a frame slot for identifiers. An unbound
// identifier is an emit-time error (spec §4.2, §7); compilation keeps
// going with a placeholder operand so the rest of the tree can still
// be walked for further diagnostics.
func (c *Compiler) immArg(env Env, e Immediate) Operand {
	switch v := e.(type) {
	case Number:
		return Const(int32(reprInt(v.Value)))
	case Boolean:
		return HexConst(reprBool(v.Value))
	case Id:
		slot, ok := env.Lookup(v.Name)
		if !ok {
			c.addErr(newUnboundErr(v.Name, v.Tg.Span))
			return Const(0)
		}
		return slotAddr(slot)
	default:
		c.addErr(newNotImmediateErr(e.Tag().Span))
		return Const(0)
	}
}

// compileImmediate compiles a literal/identifier to a single MOV
// EAX, <operand> (spec §4.7, "Immediate").
func (c *Compiler) compileImmediate(env Env, e Immediate) []Instruction {
	return []Instruction{c.at(e.Tag().Span).Mov(RegEAX, c.immArg(env, e))}
}

// compileExpr is compileEnv from spec §4.7: the recursive core that
// dispatches on the shape of e.
func (c *Compiler) compileExpr(env Env, e Expr) []Instruction {
	if imm, ok := e.(Immediate); ok {
		return c.compileImmediate(env, imm)
	}

	switch n := e.(type) {
	case Let:
		return c.compileLet(env, n)
	case If:
		return c.compileIf(env, n)
	case Prim1:
		return c.compilePrim1(env, n)
	case Prim2:
		return c.compilePrim2(env, n)
	case Tuple:
		return c.compileTuple(env, n)
	case GetItem:
		return c.compileGetItem(env, n)
	case Lam:
		return c.compileLam(env, n)
	case Fun:
		return c.compileFun(env, n)
	case App:
		return c.compileApp(env, n)
	default:
		c.addErr(newNotImmediateErr(e.Tag().Span))
		return nil
	}
}

type letBinding struct {
	bind string
	rhs  Expr
	span Span
}

// flattenLet collects a right-leaning spine of Lets into an ordered
// list of (bind, rhs) pairs followed by the final body, so that the
// left-to-right evaluation order spec §4.7 requires falls out of a
// single loop instead of recursion-per-binding.
func flattenLet(e Expr) ([]letBinding, Expr) {
	var bindings []letBinding
	cur := e
	for {
		l, ok := cur.(Let)
		if !ok {
			return bindings, cur
		}
		bindings = append(bindings, letBinding{bind: l.Bind, rhs: l.Rhs, span: l.Tg.Span})
		cur = l.Body
	}
}

func (c *Compiler) compileLet(env Env, n Let) []Instruction {
	bindings, body := flattenLet(n)
	var out []Instruction
	curEnv := env
	for _, b := range bindings {
		out = append(out, c.compileExpr(curEnv, b.rhs)...)
		slot, nextEnv := curEnv.Push(b.bind)
		out = append(out, c.at(b.span).Mov(slotAddr(slot), RegEAX))
		curEnv = nextEnv
	}
	out = append(out, c.compileExpr(curEnv, body)...)
	return out
}

// compileIf implements the branch skeleton from spec §4.7: the
// labels are named BranchTrue/BranchDone, but (as the spec's own note
// under §9's Open Question area documents) the comparison is
// inverted — JE jumps to the block holding the *then* branch when the
// test is false, and the *else* branch runs on the fallthrough. This
// is verified by the worked example in spec §8 scenario 2
// ("if 1 < 2: 10 else: 20" evaluates to 20).
func (c *Compiler) compileIf(env Env, n If) []Instruction {
	tagID := n.Tg.ID
	lTrue := mintLabel("BranchTrue", tagID)
	lDone := mintLabel("BranchDone", tagID)
	ib := c.at(n.Tg.Span)

	var out []Instruction
	out = append(out, c.assertType(env, n.Cond, TBoolean)...)
	out = append(out, ib.Cmp(RegEAX, HexConst(reprBool(false))))
	out = append(out, ib.Je(lTrue))
	out = append(out, c.compileExpr(env, n.Else)...)
	out = append(out, ib.Jmp(lDone))
	out = append(out, ib.Label(lTrue))
	out = append(out, c.compileExpr(env, n.Then)...)
	out = append(out, ib.Label(lDone))
	return out
}

func (c *Compiler) compilePrim1(env Env, n Prim1) []Instruction {
	span := n.Tg.Span
	ib := c.at(span)

	switch n.Op {
	case OpAdd1, OpSub1:
		out := c.assertType(env, n.Arg, TNumber)
		delta := Const(int32(reprInt(1)))
		if n.Op == OpAdd1 {
			out = append(out, ib.Add(RegEAX, delta))
		} else {
			out = append(out, ib.Sub(RegEAX, delta))
		}
		out = append(out, ib.Jo(DynamicErr{Kind: ErrArithOverflow}))
		return out

	case OpIsNum:
		return c.isType(env, n.Arg, TNumber, n.Tg.ID)

	case OpIsBool:
		return c.isType(env, n.Arg, TBoolean, n.Tg.ID)

	case OpPrint:
		out := c.compileImmediate(env, n.Arg)
		out = append(out, ib.Push(RegEAX))
		out = append(out, ib.Call(Label{Name: "print"}))
		out = append(out, ib.Add(RegESP, Const(4)))
		return out

	default:
		panic("compilePrim1: unknown op")
	}
}

// compileNumericOperands asserts both operands of a Prim2 are numbers
// and leaves EAX = left, EBX = right, saving left across the
// evaluation of right with a PUSH/POP since the accumulator
// discipline (spec §1, Non-goals) gives us nowhere else to keep it.
func (c *Compiler) compileNumericOperands(env Env, left, right Immediate) []Instruction {
	span := left.Tag().Span
	ib := c.at(span)
	var out []Instruction
	out = append(out, c.assertType(env, left, TNumber)...)
	out = append(out, ib.Push(RegEAX))
	out = append(out, c.assertType(env, right, TNumber)...)
	out = append(out, ib.Mov(RegEBX, RegEAX))
	out = append(out, ib.Pop(RegEAX))
	return out
}

func (c *Compiler) compilePrim2(env Env, n Prim2) []Instruction {
	span := n.Tg.Span
	ib := c.at(span)

	switch n.Op {
	case OpPlus, OpMinus, OpTimes:
		out := c.compileNumericOperands(env, n.Left, n.Right)
		switch n.Op {
		case OpPlus:
			out = append(out, ib.Add(RegEAX, RegEBX), ib.Jo(DynamicErr{Kind: ErrArithOverflow}))
		case OpMinus:
			out = append(out, ib.Sub(RegEAX, RegEBX), ib.Jo(DynamicErr{Kind: ErrArithOverflow}))
		case OpTimes:
			// both operands were n<<1; the product is n*m<<2, so
			// shift right by one to restore the single-bit tag.
			out = append(out,
				ib.Mul(RegEAX, RegEBX),
				ib.Jo(DynamicErr{Kind: ErrArithOverflow}),
				ib.Sar(RegEAX, Const(1)),
			)
		}
		return out

	case OpLess, OpGreater:
		out := c.compileNumericOperands(env, n.Left, n.Right)
		out = append(out, ib.Cmp(RegEAX, RegEBX))
		greater := n.Op == OpGreater
		out = append(out, materializeBool(span, n.Tg.ID, func(l Label) Instruction {
			if greater {
				return ib.Jg(l)
			}
			return ib.Jl(l)
		})...)
		return out

	case OpEqual:
		// cross-type equality yields false naturally because the
		// encodings differ — no type assertion needed (spec §4.7).
		out := []Instruction{
			ib.Mov(RegEAX, c.immArg(env, n.Left)),
			ib.Mov(RegEBX, c.immArg(env, n.Right)),
			ib.Cmp(RegEAX, RegEBX),
		}
		out = append(out, materializeBool(span, n.Tg.ID, func(l Label) Instruction {
			return ib.Je(l)
		})...)
		return out

	default:
		panic("compilePrim2: unknown op")
	}
}

func (c *Compiler) compileApp(env Env, n App) []Instruction {
	span := n.Tg.Span
	ib := c.at(span)

	var out []Instruction
	out = append(out, c.assertType(env, n.Callee, TClosure)...)
	out = append(out, c.assertArity(env, n.Callee, len(n.Args))...)

	out = append(out,
		ib.Mov(RegEBX, c.immArg(env, n.Callee)),
		ib.Sub(RegEBX, Const(int32(closureTagBits))),
		ib.Mov(RegEAX, Indirect{Base: RegEBX, Disp: 4}),
	)

	for i := len(n.Args) - 1; i >= 0; i-- {
		out = append(out, ib.Push(c.immArg(env, n.Args[i])))
	}
	out = append(out, ib.Push(c.immArg(env, n.Callee)))
	out = append(out, ib.Call(RegEAX))
	out = append(out, ib.Add(RegESP, Const(int32(4*(len(n.Args)+1)))))
	return out
}
