package fdlc

// roundUpEven returns the smallest even integer >= n — the padding
// rule shared by tuples and closures (spec §3): total words = 2 *
// ceil(fieldsCount/2).
func roundUpEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// tupleAlloc copies the bump pointer into EAX, writes the encoded
// arity at word[0], and advances the bump pointer by the full padded
// allocation size — before any field is written, exactly as spec
// §4.5 describes (fields are filled afterwards through the saved
// EAX, not through the bump register itself).
func (c *Compiler) tupleAlloc(span Span, k int) []Instruction {
	ib := c.at(span)
	heap := c.heapReg(span)
	words := roundUpEven(k + 1)
	return []Instruction{
		ib.Mov(RegEAX, heap),
		ib.Mov(Indirect{Base: RegEAX, Disp: 0}, Const(int32(reprInt(k)))),
		ib.Add(heap, Const(int32(4*words))),
	}
}

// tupleWrite moves each field through EBX into [EAX + 4*i], starting
// at startIndex (spec §4.5). Fields must already be immediate — ANF
// guarantees this (spec §9, "evaluation order of tuples").
func (c *Compiler) tupleWrite(env Env, span Span, fields []Immediate, startIndex int) []Instruction {
	ib := c.at(span)
	var out []Instruction
	for i, f := range fields {
		out = append(out, ib.Mov(RegEBX, c.immArg(env, f)))
		out = append(out, ib.Mov(Indirect{Base: RegEAX, Disp: 4 * (startIndex + i)}, RegEBX))
	}
	return out
}

// addPad writes the zero padding word at the given field index.
func (c *Compiler) addPad(span Span, index int) []Instruction {
	return []Instruction{c.at(span).Mov(Indirect{Base: RegEAX, Disp: 4 * index}, Const(0))}
}

// setTag ORs ty's tag bits into reg, turning a raw heap address into
// a properly tagged value (spec §4.5).
func (c *Compiler) setTag(span Span, reg Reg, ty Ty) []Instruction {
	return []Instruction{c.at(span).Or(reg, HexConst(typeTag(ty)))}
}

// compileTuple lays out a Tuple(es) literal: alloc, write elements,
// pad, tag (spec §4.7 Tuple).
func (c *Compiler) compileTuple(env Env, n Tuple) []Instruction {
	span := n.Tg.Span
	k := len(n.Items)
	var out []Instruction
	out = append(out, c.tupleAlloc(span, k)...)
	out = append(out, c.tupleWrite(env, span, n.Items, 1)...)
	if roundUpEven(k+1) > k+1 {
		out = append(out, c.addPad(span, k+1)...)
	}
	out = append(out, c.setTag(span, RegEAX, TTuple)...)
	return out
}

// compileGetItem decodes an indexed tuple access (spec §4.7
// GetItem): assert tuple/number/bounds, then load [scratch +
// 4*(decoded index + 1)] into EAX, skipping over the size word.
func (c *Compiler) compileGetItem(env Env, n GetItem) []Instruction {
	span := n.Tg.Span
	ib := c.at(span)
	var out []Instruction
	out = append(out, c.assertType(env, n.Tup, TTuple)...)
	out = append(out, c.assertType(env, n.Index, TNumber)...)
	out = append(out, c.assertBound(env, n.Tup, n.Index)...)
	out = append(out, ib.Mov(RegEBX, c.immArg(env, n.Tup)))
	out = append(out, ib.Sub(RegEBX, Const(int32(tupleTagBits))))
	out = append(out, ib.Mov(RegEAX, c.immArg(env, n.Index)))
	out = append(out, ib.Sar(RegEAX, Const(1)))
	out = append(out, ib.Add(RegEAX, Const(1)))
	out = append(out, ib.Mov(RegEAX, IndirectScaled{Base: RegEBX, Index: RegEAX, Scale: 4}))
	return out
}
