package cas

import (
	"strconv"
	"strings"
)

// Factor is one symbol raised to a positive power.
type Factor struct {
	Sym string
	Exp int
}

// Monomial is a product of factors sorted by symbol name. The empty
// monomial is 1.
type Monomial []Factor

func (m Monomial) key() string {
	var b strings.Builder
	for i, f := range m {
		if i > 0 {
			b.WriteByte('*')
		}
		b.WriteString(f.Sym)
		if f.Exp != 1 {
			b.WriteByte('^')
			b.WriteString(strconv.Itoa(f.Exp))
		}
	}
	return b.String()
}

func (m Monomial) Degree(sym string) int {
	for _, f := range m {
		if f.Sym == sym {
			return f.Exp
		}
	}
	return 0
}

func (m Monomial) Total() int {
	n := 0
	for _, f := range m {
		n += f.Exp
	}
	return n
}

func (m Monomial) mul(o Monomial) Monomial {
	out := make(Monomial, 0, len(m)+len(o))
	i, j := 0, 0
	for i < len(m) || j < len(o) {
		switch {
		case j == len(o) || (i < len(m) && m[i].Sym < o[j].Sym):
			out = append(out, m[i])
			i++
		case i == len(m) || o[j].Sym < m[i].Sym:
			out = append(out, o[j])
			j++
		default:
			out = append(out, Factor{m[i].Sym, m[i].Exp + o[j].Exp})
			i++
			j++
		}
	}
	return out
}

// div returns m/o when o divides m.
func (m Monomial) div(o Monomial) (Monomial, bool) {
	out := make(Monomial, 0, len(m))
	j := 0
	for _, f := range m {
		if j < len(o) && o[j].Sym < f.Sym {
			return nil, false
		}
		if j < len(o) && o[j].Sym == f.Sym {
			e := f.Exp - o[j].Exp
			j++
			if e < 0 {
				return nil, false
			}
			if e > 0 {
				out = append(out, Factor{f.Sym, e})
			}
			continue
		}
		out = append(out, f)
	}
	if j != len(o) {
		return nil, false
	}
	return out, true
}

func (m Monomial) without(sym string) Monomial {
	out := make(Monomial, 0, len(m))
	for _, f := range m {
		if f.Sym != sym {
			out = append(out, f)
		}
	}
	return out
}

func (m Monomial) with(sym string, exp int) Monomial {
	if exp == 0 {
		return m
	}
	return m.mul(Monomial{{sym, exp}})
}

// compareLex orders monomials lexicographically, symbols taking priority in
// alphabetical order.
func compareLex(a, b Monomial) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i].Sym < b[j].Sym):
			return 1
		case i == len(a) || b[j].Sym < a[i].Sym:
			return -1
		case a[i].Exp != b[j].Exp:
			if a[i].Exp > b[j].Exp {
				return 1
			}
			return -1
		}
		i++
		j++
	}
	return 0
}

func (m Monomial) String() string {
	parts := make([]string, len(m))
	for i, f := range m {
		if f.Exp == 1 {
			parts[i] = f.Sym
		} else {
			parts[i] = f.Sym + "**" + strconv.Itoa(f.Exp)
		}
	}
	return strings.Join(parts, "*")
}
