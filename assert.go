package fdlc

func errKindForTy(ty Ty) ErrKind {
	switch ty {
	case TNumber:
		return ErrNonNumber
	case TBoolean:
		return ErrNonBoolean
	case TTuple:
		return ErrNonTuple
	case TClosure:
		return ErrNonClosure
	default:
		panic("errKindForTy: unknown type")
	}
}

// loadAndCompareType loads v into EAX, copies it to EBX, ANDs EBX
// with ty's mask and compares it to ty's tag — leaving EAX holding
// the original (still tagged) value and the flags set for the
// caller to branch on (spec §4.6).
func (c *Compiler) loadAndCompareType(env Env, v Immediate, ty Ty) []Instruction {
	ib := c.at(v.Tag().Span)
	return []Instruction{
		ib.Mov(RegEAX, c.immArg(env, v)),
		ib.Mov(RegEBX, RegEAX),
		ib.And(RegEBX, HexConst(typeMask(ty))),
		ib.Cmp(RegEBX, HexConst(typeTag(ty))),
	}
}

// assertType jumps to the named error stub for ty when v doesn't
// carry that type's tag (spec §4.6).
func (c *Compiler) assertType(env Env, v Immediate, ty Ty) []Instruction {
	out := c.loadAndCompareType(env, v, ty)
	out = append(out, c.at(v.Tag().Span).Jne(DynamicErr{Kind: errKindForTy(ty)}))
	return out
}

// isType materializes a boolean in EAX instead of trapping (spec
// §4.6, used by Prim1 IsNum/IsBool).
func (c *Compiler) isType(env Env, v Immediate, ty Ty, tagID int) []Instruction {
	out := c.loadAndCompareType(env, v, ty)
	out = append(out, materializeBool(v.Tag().Span, tagID, func(l Label) Instruction {
		return c.at(v.Tag().Span).Je(l)
	})...)
	return out
}

// assertBound checks 0 <= index < size against the tuple's stored
// size word. The lower bound decodes the index; the upper bound
// compares both sides still encoded, per spec §4.6 and §9 — whether
// the upper comparison rejects index == size (JGE, the corrected
// behavior) or only index > size (JG, the original's off-by-one) is
// controlled by Config's assert.strict_bounds.
func (c *Compiler) assertBound(env Env, vE, vI Immediate) []Instruction {
	span := vI.Tag().Span
	ib := c.at(span)
	var out []Instruction
	out = append(out,
		ib.Mov(RegEAX, c.immArg(env, vI)),
		ib.Mov(RegEBX, RegEAX),
		ib.Sar(RegEBX, Const(1)),
		ib.Cmp(RegEBX, Const(0)),
		ib.Jl(DynamicErr{Kind: ErrIndexLow}),
		ib.Mov(RegEBX, c.immArg(env, vE)),
		ib.Sub(RegEBX, Const(int32(tupleTagBits))),
		ib.Cmp(RegEAX, Indirect{Base: RegEBX, Disp: 0}),
	)
	if c.cfg.GetBool("assert.strict_bounds") {
		out = append(out, ib.Jge(DynamicErr{Kind: ErrIndexHigh}))
	} else {
		out = append(out, ib.Jg(DynamicErr{Kind: ErrIndexHigh}))
	}
	return out
}

// assertArity compares a closure's raw stored arity (word[0]) to k
// (spec §4.6).
func (c *Compiler) assertArity(env Env, vE Immediate, k int) []Instruction {
	span := vE.Tag().Span
	ib := c.at(span)
	return []Instruction{
		ib.Mov(RegEBX, c.immArg(env, vE)),
		ib.Sub(RegEBX, Const(int32(closureTagBits))),
		ib.Cmp(Indirect{Base: RegEBX, Disp: 0}, Const(int32(k))),
		ib.Jne(DynamicErr{Kind: ErrArity}),
	}
}

// materializeBool implements boolBranch (spec §4.9): mkJump decides
// which branch is "true"; the skeleton mirrors If's branch shape so
// that label-uniqueness (spec §8.2) only ever depends on tag
// uniqueness plus a fixed discriminator.
func materializeBool(span Span, tagID int, mkJump func(Label) Instruction) []Instruction {
	lTrue := mintLabel("BoolTrue", tagID)
	lDone := mintLabel("BoolDone", tagID)
	ib := instrBuilder{sl: span}
	return []Instruction{
		mkJump(lTrue),
		ib.Mov(RegEAX, HexConst(reprBool(false))),
		ib.Jmp(lDone),
		ib.Label(lTrue),
		ib.Mov(RegEAX, HexConst(reprBool(true))),
		ib.Label(lDone),
	}
}
