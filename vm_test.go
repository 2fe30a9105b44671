package fdlc

import "fmt"

// vm is a minimal interpreter for the abstract instruction stream,
// used only by tests to check the worked scenarios from SPEC_FULL.md
// §8 actually evaluate to the values the spec claims. It is not part
// of the compiler's public surface — asm generation and execution are
// the external `asm` collaborator's job (spec §6) — this is just
// enough of that collaborator to make the compiler's own tests
// self-checking instead of eyeballing instruction dumps.
type vm struct {
	regs      map[Reg]uint32
	mem       map[int]uint32
	callStack []int
	labelPC   map[string]int
	codeAddr  map[string]uint32
	addrLabel map[uint32]string

	cmpLeft, cmpRight uint32
	overflow          bool

	printed []uint32
}

// RuntimeTrap reports that execution branched into one of the named
// runtime error stubs (spec §6).
type RuntimeTrap struct {
	Kind ErrKind
}

func (t *RuntimeTrap) Error() string { return fmt.Sprintf("trap: %s", ErrKind(t.Kind).symbol()) }

func newVM(code []Instruction) *vm {
	v := &vm{
		regs:      map[Reg]uint32{RegESP: 0x00F00000, RegEBP: 0x00F00000, RegESI: 0x00100000},
		mem:       map[int]uint32{},
		labelPC:   map[string]int{},
		codeAddr:  map[string]uint32{},
		addrLabel: map[uint32]string{},
	}
	nextAddr := uint32(0x2000)
	for i, instr := range code {
		if lbl, ok := instr.(ILabel); ok {
			v.labelPC[lbl.Target.Name] = i
			v.codeAddr[lbl.Target.Name] = nextAddr
			v.addrLabel[nextAddr] = lbl.Target.Name
			nextAddr += 0x100
		}
	}
	// "print" is a built-in the interpreter special-cases rather than
	// a label that appears in the code stream.
	v.codeAddr["print"] = nextAddr
	v.addrLabel[nextAddr] = "print"
	return v
}

// run executes code from instruction 0 until the top-level ret (an
// IRet with an empty call stack), returning the final EAX.
func (v *vm) run(code []Instruction) (uint32, error) {
	pc := 0
	for {
		if pc < 0 || pc >= len(code) {
			return 0, fmt.Errorf("vm: pc %d out of range", pc)
		}
		instr := code[pc]
		next := pc + 1

		switch ii := instr.(type) {
		case ILabel:
			// no-op

		case IMov:
			v.write(ii.Dst, v.read(ii.Src))

		case IPush:
			v.regs[RegESP] -= 4
			v.mem[int(v.regs[RegESP])] = v.read(ii.Src)

		case IPop:
			v.write(ii.Dst, v.mem[int(v.regs[RegESP])])
			v.regs[RegESP] += 4

		case IAdd:
			a, b := v.read(ii.Dst), v.read(ii.Src)
			res := a + b
			v.overflow = addOverflows(a, b)
			v.write(ii.Dst, res)

		case ISub:
			a, b := v.read(ii.Dst), v.read(ii.Src)
			res := a - b
			v.overflow = subOverflows(a, b)
			v.write(ii.Dst, res)

		case IMul:
			a, b := v.read(ii.Dst), v.read(ii.Src)
			prod := int64(int32(a)) * int64(int32(b))
			v.overflow = prod != int64(int32(int64(prod)))
			v.write(ii.Dst, uint32(prod))

		case IAnd:
			v.write(ii.Dst, v.read(ii.Dst)&v.read(ii.Src))

		case IOr:
			v.write(ii.Dst, v.read(ii.Dst)|v.read(ii.Src))

		case IShl:
			v.write(ii.Dst, v.read(ii.Dst)<<v.read(ii.Src))

		case ISar:
			v.write(ii.Dst, uint32(int32(v.read(ii.Dst))>>v.read(ii.Src)))

		case ICmp:
			v.cmpLeft, v.cmpRight = v.read(ii.Left), v.read(ii.Right)

		case IJmp:
			target, trap, err := v.resolveJumpTarget(ii.Target, code)
			if err != nil {
				return 0, err
			}
			if trap != nil {
				return 0, trap
			}
			next = target

		case IJe:
			if v.cmpLeft == v.cmpRight {
				target, trap, err := v.resolveJumpTarget(ii.Target, code)
				if err != nil {
					return 0, err
				}
				if trap != nil {
					return 0, trap
				}
				next = target
			}

		case IJne:
			if v.cmpLeft != v.cmpRight {
				target, trap, err := v.resolveJumpTarget(ii.Target, code)
				if err != nil {
					return 0, err
				}
				if trap != nil {
					return 0, trap
				}
				next = target
			}

		case IJl:
			if int32(v.cmpLeft) < int32(v.cmpRight) {
				target, trap, err := v.resolveJumpTarget(ii.Target, code)
				if err != nil {
					return 0, err
				}
				if trap != nil {
					return 0, trap
				}
				next = target
			}

		case IJg:
			if int32(v.cmpLeft) > int32(v.cmpRight) {
				target, trap, err := v.resolveJumpTarget(ii.Target, code)
				if err != nil {
					return 0, err
				}
				if trap != nil {
					return 0, trap
				}
				next = target
			}

		case IJge:
			if int32(v.cmpLeft) >= int32(v.cmpRight) {
				target, trap, err := v.resolveJumpTarget(ii.Target, code)
				if err != nil {
					return 0, err
				}
				if trap != nil {
					return 0, trap
				}
				next = target
			}

		case IJo:
			if v.overflow {
				return 0, &RuntimeTrap{Kind: ii.Target.Kind}
			}

		case ICall:
			name, ok := v.callTargetName(ii.Target)
			if !ok {
				return 0, fmt.Errorf("vm: call target %v did not resolve to a known label", ii.Target)
			}
			if name == "print" {
				arg := v.mem[int(v.regs[RegESP])]
				v.printed = append(v.printed, arg)
				v.regs[RegEAX] = arg
				break
			}
			target, ok := v.labelPC[name]
			if !ok {
				return 0, fmt.Errorf("vm: call target %q has no body", name)
			}
			// CALL pushes a return word, so the callee sees its
			// self-closure at [EBP+8] and its first argument at
			// [EBP+12] (wrapper.go's frame layout).
			v.regs[RegESP] -= 4
			v.mem[int(v.regs[RegESP])] = uint32(next)
			v.callStack = append(v.callStack, next)
			next = target

		case IRet:
			if len(v.callStack) == 0 {
				return v.regs[RegEAX], nil
			}
			v.regs[RegESP] += 4
			next = v.callStack[len(v.callStack)-1]
			v.callStack = v.callStack[:len(v.callStack)-1]

		default:
			return 0, fmt.Errorf("vm: unhandled instruction %T", instr)
		}

		pc = next
	}
}

func (v *vm) resolveJumpTarget(t JumpTarget, code []Instruction) (int, *RuntimeTrap, error) {
	switch tt := t.(type) {
	case Label:
		pc, ok := v.labelPC[tt.Name]
		if !ok {
			return 0, nil, fmt.Errorf("vm: unknown label %q", tt.Name)
		}
		return pc, nil, nil
	case DynamicErr:
		return 0, &RuntimeTrap{Kind: tt.Kind}, nil
	default:
		return 0, nil, fmt.Errorf("vm: unknown jump target type %T", t)
	}
}

func (v *vm) callTargetName(op Operand) (string, bool) {
	switch t := op.(type) {
	case Label:
		return t.Name, true
	case Reg:
		name, ok := v.addrLabel[v.regs[t]]
		return name, ok
	default:
		return "", false
	}
}

func (v *vm) read(op Operand) uint32 {
	switch t := op.(type) {
	case Const:
		return uint32(int32(t))
	case HexConst:
		return uint32(t)
	case Reg:
		return v.regs[t]
	case Indirect:
		return v.mem[int(v.regs[t.Base])+t.Disp]
	case IndirectScaled:
		addr := int(v.regs[t.Base]) + int(v.regs[t.Index])*t.Scale + t.Disp
		return v.mem[addr]
	case CodePtr:
		return v.codeAddr[t.Label.Name]
	default:
		panic(fmt.Sprintf("vm: cannot read operand %T", op))
	}
}

func (v *vm) write(op Operand, val uint32) {
	switch t := op.(type) {
	case Reg:
		v.regs[t] = val
	case Indirect:
		v.mem[int(v.regs[t.Base])+t.Disp] = val
	case IndirectScaled:
		addr := int(v.regs[t.Base]) + int(v.regs[t.Index])*t.Scale + t.Disp
		v.mem[addr] = val
	default:
		panic(fmt.Sprintf("vm: cannot write operand %T", op))
	}
}

func addOverflows(a, b uint32) bool {
	sum := int64(int32(a)) + int64(int32(b))
	return sum != int64(int32(int64(sum)))
}

func subOverflows(a, b uint32) bool {
	diff := int64(int32(a)) - int64(int32(b))
	return diff != int64(int32(int64(diff)))
}

// runProgram compiles expr with cfg (or the defaults, if nil) and
// executes the result, returning the final EAX (still encoded).
func runProgram(expr Expr, cfg *Config) (uint32, error) {
	prog, errs := CompileProgram(expr, cfg)
	if len(errs) > 0 {
		return 0, errs[0]
	}
	v := newVM(prog.Code)
	return v.run(prog.Code)
}
