package fdlc

// prologueInstrs and epilogueInstrs implement the calling convention
// from spec §4.8, shared by every function body: the top-level
// wrapper (Wrap) and every closure body emitted by emitClosure.
func prologueInstrs(span Span, locals int) []Instruction {
	ib := instrBuilder{sl: span}
	return []Instruction{
		ib.Push(RegEBP),
		ib.Mov(RegEBP, RegESP),
		ib.Sub(RegESP, Const(int32(4*locals))),
		ib.And(RegESP, HexConst(0xFFFFFFF0)),
	}
}

func epilogueInstrs(span Span) []Instruction {
	ib := instrBuilder{sl: span}
	return []Instruction{
		ib.Mov(RegESP, RegEBP),
		ib.Pop(RegEBP),
		ib.Ret(),
	}
}

func (c *Compiler) framePrologue(span Span, locals int) []Instruction { return prologueInstrs(span, locals) }
func (c *Compiler) frameEpilogue(span Span) []Instruction             { return epilogueInstrs(span) }

// Wrap is the top-level entry point named in spec §6: it applies the
// prologue/epilogue from spec §4.8 around body, with n the number of
// local slots the stack sizer computed for the entry expression.
func Wrap(n int, body []Instruction) []Instruction {
	var zero Span
	var out []Instruction
	out = append(out, prologueInstrs(zero, n)...)
	out = append(out, body...)
	out = append(out, epilogueInstrs(zero)...)
	return out
}

// restoreCaptures reads each capture back out of the self-closure
// pointer at [EBP+8] into its assigned local slot, in free-variable
// order (spec §4.8 "Capture restoration").
func (c *Compiler) restoreCaptures(span Span, captures []string) []Instruction {
	ib := c.at(span)
	self := slotAddr(-2)
	var out []Instruction
	for i := range captures {
		slot := i + 1
		out = append(out,
			ib.Mov(RegEBX, self),
			ib.Sub(RegEBX, Const(int32(closureTagBits))),
			ib.Mov(RegEAX, Indirect{Base: RegEBX, Disp: 4 * (slot + 1)}),
			ib.Mov(slotAddr(slot), RegEAX),
		)
	}
	return out
}

// allocClosure allocates the closure tuple (arity, code address,
// captures...) in the *outer* environment — the site freevars.go's
// capture order was computed for — and leaves a tagged closure
// pointer in EAX (spec §3 heap layout, §4.7 Lam/Fun).
func (c *Compiler) allocClosure(env Env, span Span, code Label, arity int, captures []string) []Instruction {
	ib := c.at(span)
	heap := c.heapReg(span)
	m := len(captures)
	words := roundUpEven(2 + m)

	var out []Instruction
	out = append(out,
		ib.Mov(RegEAX, heap),
		ib.Mov(Indirect{Base: RegEAX, Disp: 0}, Const(int32(arity))),
		ib.Mov(Indirect{Base: RegEAX, Disp: 4}, CodePtr{Label: code}),
		ib.Add(heap, Const(int32(4*words))),
	)
	for i, capName := range captures {
		slot, ok := env.Lookup(capName)
		if !ok {
			c.addErr(newUnboundErr(capName, span))
			continue
		}
		out = append(out,
			ib.Mov(RegEBX, slotAddr(slot)),
			ib.Mov(Indirect{Base: RegEAX, Disp: 4 * (2 + i)}, RegEBX),
		)
	}
	if 2+m < words {
		out = append(out, ib.Mov(Indirect{Base: RegEAX, Disp: 4 * (2 + m)}, Const(0)))
	}
	out = append(out, ib.Or(RegEAX, Const(int32(closureTagBits))))
	return out
}

// emitClosure is shared by compileLam and compileFun: it lays out the
// out-of-line closure body (jump-over, prologue, capture restore,
// body, epilogue) and then allocates the closure value at the
// original call site (spec §4.7 Lam/Fun).
//
// selfName is non-empty only for Fun, binding the self-closure
// pointer at slot -2 so the body can recurse through it (spec §9,
// "cyclic self-reference in Fun").
func (c *Compiler) emitClosure(outerEnv Env, params []string, selfName string, body Expr, labelKind string, tagID int) []Instruction {
	span := body.Tag().Span
	captures := freeVarsOfClosure(params, selfName, body)

	var lStart, lEnd Label
	if selfName != "" {
		lStart = mintNamedLabel(labelKind+"Start", selfName, tagID)
		lEnd = mintNamedLabel(labelKind+"End", selfName, tagID)
	} else {
		lStart = mintLabel(labelKind+"Start", tagID)
		lEnd = mintLabel(labelKind+"End", tagID)
	}

	pairs := make([]EnvPair, 0, len(params)+2+len(captures))
	for i, p := range params {
		pairs = append(pairs, EnvPair{ID: p, Slot: -(3 + i)})
	}
	if selfName != "" {
		pairs = append(pairs, EnvPair{ID: selfName, Slot: -2})
	}
	for i, cap := range captures {
		pairs = append(pairs, EnvPair{ID: cap, Slot: i + 1})
	}
	innerEnv := FromList(pairs)
	locals := EnvMax(innerEnv) + CountVars(body)

	ib := c.at(span)
	var out []Instruction
	out = append(out, ib.Jmp(lEnd))
	out = append(out, ib.Label(lStart))
	out = append(out, c.framePrologue(span, locals)...)
	out = append(out, c.restoreCaptures(span, captures)...)
	out = append(out, c.compileExpr(innerEnv, body)...)
	out = append(out, c.frameEpilogue(span)...)
	out = append(out, ib.Label(lEnd))
	out = append(out, c.allocClosure(outerEnv, span, lStart, len(params), captures)...)
	return out
}

// freeVarsOfClosure applies the Lam/Fun free-variable rules (spec
// §4.3) directly, since Expr alone doesn't carry params/selfName.
func freeVarsOfClosure(params []string, selfName string, body Expr) []string {
	free := FreeVars(body)
	bound := map[string]struct{}{}
	for _, p := range params {
		bound[p] = struct{}{}
	}
	if selfName != "" {
		bound[selfName] = struct{}{}
	}
	out := free[:0:0]
	for _, id := range free {
		if _, ok := bound[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (c *Compiler) compileLam(env Env, n Lam) []Instruction {
	return c.emitClosure(env, n.Params, "", n.Body, "Lam", n.Tg.ID)
}

func (c *Compiler) compileFun(env Env, n Fun) []Instruction {
	return c.emitClosure(env, n.Params, n.Name, n.Body, "Def", n.Tg.ID)
}
