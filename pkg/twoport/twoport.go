package twoport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

var (
	ErrSingularTwoPort           = errors.New("singular two-port")
	ErrFloatingReference         = errors.New("two-ports do not share a common reference")
	ErrUndefinedTransferFunction = errors.New("undefined transfer function")
)

// Kind is the parameter convention of a two-port matrix.
//
//	Z:    V1 = z11 I1 + z12 I2,   V2 = z21 I1 + z22 I2
//	Y:    I1 = y11 V1 + y12 V2,   I2 = y21 V1 + y22 V2
//	H:    V1 = h11 I1 + h12 V2,   I2 = h21 I1 + h22 V2
//	G:    I1 = g11 V1 + g12 I2,   V2 = g21 V1 + g22 I2
//	ABCD: V1 = A V2 - B I2,       I1 = C V2 - D I2
//
// Port currents flow into the network.
type Kind int

const (
	Z Kind = iota
	Y
	H
	G
	ABCD
)

var kindNames = [...]string{"Z", "Y", "H", "G", "ABCD"}

func (k Kind) String() string { return kindNames[k] }

type mat [2][2]cas.Ratio

func (m mat) det() cas.Ratio { return m[0][0].Mul(m[1][1]).Sub(m[0][1].Mul(m[1][0])) }

// TwoPort is an immutable 2x2 matrix of Laplace-domain rational functions.
// CommonRef marks a three-terminal network whose port negatives are joined.
type TwoPort struct {
	kind      Kind
	m         mat
	CommonRef bool
}

func New(kind Kind, p11, p12, p21, p22 cas.Ratio) TwoPort {
	return TwoPort{kind: kind, m: mat{{p11, p12}, {p21, p22}}, CommonRef: true}
}

func (t TwoPort) Kind() Kind { return t.kind }

// Param returns entry (i, j), 1-based.
func (t TwoPort) Param(i, j int) cas.Ratio { return t.m[i-1][j-1] }

func (t TwoPort) Det() cas.Ratio { return t.m.det() }

// Floating returns t without the common-reference mark.
func (t TwoPort) Floating() TwoPort {
	t.CommonRef = false
	return t
}

// formula: every entry of the target is a token over the source entries
// divided by the pivot token. Tokens: "11" "12" "21" "22", "d" for the
// determinant, "1", each optionally negated with a leading "-".
type formula struct {
	pivot   string
	entries [4]string
}

var conversions = map[[2]Kind]formula{
	{Z, Y}:    {"d", [4]string{"22", "-12", "-21", "11"}},
	{Z, H}:    {"22", [4]string{"d", "12", "-21", "1"}},
	{Z, G}:    {"11", [4]string{"1", "-12", "21", "d"}},
	{Z, ABCD}: {"21", [4]string{"11", "d", "1", "22"}},

	{Y, Z}:    {"d", [4]string{"22", "-12", "-21", "11"}},
	{Y, H}:    {"11", [4]string{"1", "-12", "21", "d"}},
	{Y, G}:    {"22", [4]string{"d", "12", "-21", "1"}},
	{Y, ABCD}: {"21", [4]string{"-22", "-1", "-d", "-11"}},

	{H, Z}:    {"22", [4]string{"d", "12", "-21", "1"}},
	{H, Y}:    {"11", [4]string{"1", "-12", "21", "d"}},
	{H, G}:    {"d", [4]string{"22", "-12", "-21", "11"}},
	{H, ABCD}: {"21", [4]string{"-d", "-11", "-22", "-1"}},

	{G, Z}:    {"11", [4]string{"1", "-12", "21", "d"}},
	{G, Y}:    {"22", [4]string{"d", "12", "-21", "1"}},
	{G, H}:    {"d", [4]string{"22", "-12", "-21", "11"}},
	{G, ABCD}: {"21", [4]string{"1", "22", "11", "d"}},

	{ABCD, Z}: {"21", [4]string{"11", "d", "1", "22"}},
	{ABCD, Y}: {"12", [4]string{"22", "-d", "-1", "11"}},
	{ABCD, H}: {"22", [4]string{"12", "d", "-1", "21"}},
	{ABCD, G}: {"11", [4]string{"21", "-d", "1", "12"}},
}

func (m mat) token(tok string) cas.Ratio {
	neg := strings.HasPrefix(tok, "-")
	tok = strings.TrimPrefix(tok, "-")
	var v cas.Ratio
	switch tok {
	case "d":
		v = m.det()
	case "1":
		v = cas.Int(1)
	default:
		v = m[tok[0]-'1'][tok[1]-'1']
	}
	if neg {
		return v.Neg()
	}
	return v
}

// To converts t into another parameter convention.
func (t TwoPort) To(kind Kind) (TwoPort, error) {
	if kind == t.kind {
		return t, nil
	}
	f := conversions[[2]Kind{t.kind, kind}]
	pivot := t.m.token(f.pivot)
	if pivot.IsZero() {
		return TwoPort{}, fmt.Errorf("%w: %s parameters do not exist (%s = 0)", ErrSingularTwoPort, kind, pivotName(t.kind, f.pivot))
	}
	out := TwoPort{kind: kind, CommonRef: t.CommonRef}
	for i, tok := range f.entries {
		v, _ := t.m.token(tok).Div(pivot)
		out.m[i/2][i%2] = v
	}
	return out, nil
}

func pivotName(k Kind, tok string) string {
	if tok == "d" {
		return "det " + k.String()
	}
	if k == ABCD {
		return map[string]string{"11": "A", "12": "B", "21": "C", "22": "D"}[tok]
	}
	return strings.ToLower(k.String()) + tok
}

func (t TwoPort) Equal(o TwoPort) bool {
	if t.kind != o.kind {
		c, err := o.To(t.kind)
		if err != nil {
			return false
		}
		o = c
	}
	for i := range 2 {
		for j := range 2 {
			if !t.m[i][j].Equal(o.m[i][j]) {
				return false
			}
		}
	}
	return true
}

func (t TwoPort) String() string {
	return fmt.Sprintf("%s[[%s, %s], [%s, %s]]", t.kind, t.m[0][0], t.m[0][1], t.m[1][0], t.m[1][1])
}
