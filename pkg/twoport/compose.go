package twoport

import "fmt"

// sum adds a and b in convention k.
func sum(op string, k Kind, a, b TwoPort) (TwoPort, error) {
	if !a.CommonRef || !b.CommonRef {
		return TwoPort{}, fmt.Errorf("%s: %w", op, ErrFloatingReference)
	}
	pa, err := a.To(k)
	if err != nil {
		return TwoPort{}, fmt.Errorf("%s: %w", op, err)
	}
	pb, err := b.To(k)
	if err != nil {
		return TwoPort{}, fmt.Errorf("%s: %w", op, err)
	}
	out := TwoPort{kind: k}
	for i := range 2 {
		for j := range 2 {
			out.m[i][j] = pa.m[i][j].Add(pb.m[i][j])
		}
	}
	return out, nil
}

// Series connects both ports in series: Z parameters add.
func Series(a, b TwoPort) (TwoPort, error) { return sum("series", Z, a, b) }

// Parallel connects both ports in parallel: Y parameters add.
func Parallel(a, b TwoPort) (TwoPort, error) {
	out, err := sum("parallel", Y, a, b)
	if err != nil {
		return TwoPort{}, err
	}
	out.CommonRef = true
	return out, nil
}

// SeriesParallel connects the inputs in series and outputs in parallel:
// H parameters add.
func SeriesParallel(a, b TwoPort) (TwoPort, error) { return sum("series-parallel", H, a, b) }

// ParallelSeries connects the inputs in parallel and outputs in series:
// G parameters add.
func ParallelSeries(a, b TwoPort) (TwoPort, error) { return sum("parallel-series", G, a, b) }

// Cascade feeds a's output into b's input: ABCD parameters multiply in order.
func Cascade(a, b TwoPort) (TwoPort, error) {
	pa, err := a.To(ABCD)
	if err != nil {
		return TwoPort{}, fmt.Errorf("cascade: %w", err)
	}
	pb, err := b.To(ABCD)
	if err != nil {
		return TwoPort{}, fmt.Errorf("cascade: %w", err)
	}
	out := TwoPort{kind: ABCD, CommonRef: a.CommonRef && b.CommonRef}
	for i := range 2 {
		for j := range 2 {
			out.m[i][j] = pa.m[i][0].Mul(pb.m[0][j]).Add(pa.m[i][1].Mul(pb.m[1][j]))
		}
	}
	return out, nil
}

// CascadeOf chains ts from input to output.
func CascadeOf(ts ...TwoPort) (TwoPort, error) {
	if len(ts) == 0 {
		return Identity(), nil
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		var err error
		if acc, err = Cascade(acc, t); err != nil {
			return TwoPort{}, err
		}
	}
	return acc, nil
}
