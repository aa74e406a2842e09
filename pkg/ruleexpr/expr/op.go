package expr

// Family groups operators that share type rules.
type Family int

// Operator families.
const (
	FamilyInvalid Family = iota
	FamilyLogical
	FamilyEquality
	FamilyRelational
	FamilyAdditive
	FamilyMultiplicative
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyLogical:
		return "Logical"
	case FamilyEquality:
		return "Equality"
	case FamilyRelational:
		return "Relational"
	case FamilyAdditive:
		return "Additive"
	case FamilyMultiplicative:
		return "Multiplicative"
	default:
		return "Invalid"
	}
}

// Op is a binary operator. It carries no operands.
type Op int

// Binary operators.
const (
	OpInvalid Op = iota
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpIn
	OpGt
	OpLt
	OpGte
	OpLte
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

type opInfo struct {
	symbol string
	name   string
	family Family
}

var ops = [...]opInfo{
	OpInvalid: {"?", "Invalid", FamilyInvalid},
	OpAnd:     {"&&", "And", FamilyLogical},
	OpOr:      {"||", "Or", FamilyLogical},
	OpEq:      {"==", "Eq", FamilyEquality},
	OpNeq:     {"!=", "Neq", FamilyEquality},
	OpIn:      {"in", "In", FamilyEquality},
	OpGt:      {">", "Gt", FamilyRelational},
	OpLt:      {"<", "Lt", FamilyRelational},
	OpGte:     {">=", "Gte", FamilyRelational},
	OpLte:     {"<=", "Lte", FamilyRelational},
	OpAdd:     {"+", "Add", FamilyAdditive},
	OpSub:     {"-", "Sub", FamilyAdditive},
	OpMul:     {"*", "Mul", FamilyMultiplicative},
	OpDiv:     {"/", "Div", FamilyMultiplicative},
	OpMod:     {"%", "Mod", FamilyMultiplicative},
}

var opsBySymbol = func() map[string]Op {
	m := make(map[string]Op, len(ops)-1)
	for op := OpAnd; op <= OpMod; op++ {
		m[ops[op].symbol] = op
	}
	return m
}()

func (o Op) info() opInfo {
	if o < OpAnd || o > OpMod {
		return ops[OpInvalid]
	}
	return ops[o]
}

// String returns the operator symbol as written in source, e.g. "&&" or "in".
func (o Op) String() string { return o.info().symbol }

// Name returns the variant name, e.g. "And".
func (o Op) Name() string { return o.info().name }

// Family returns the precedence/type family of o.
func (o Op) Family() Family { return o.info().family }

// GoString renders o with its family, e.g. Additive(Add).
func (o Op) GoString() string {
	info := o.info()
	return info.family.String() + "(" + info.name + ")"
}

// ParseOp maps an operator symbol to its Op.
// The symbol must match exactly; ok is false for anything else.
func ParseOp(symbol string) (op Op, ok bool) {
	op, ok = opsBySymbol[symbol]
	return op, ok
}
