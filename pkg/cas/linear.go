package cas

// SolveLinear solves a*x = b by Gaussian elimination over rational
// functions. b holds one column per right-hand side. The pivot in each column
// is the non-zero entry with the fewest terms, which keeps intermediate
// expressions small.
func SolveLinear(a [][]Ratio, b [][]Ratio) ([][]Ratio, error) {
	n := len(a)
	if n == 0 {
		return nil, nil
	}
	k := 0
	if len(b) > 0 {
		k = len(b[0])
	}

	m := make([][]Ratio, n)
	for i := range a {
		row := make([]Ratio, n+k)
		copy(row, a[i])
		if i < len(b) {
			copy(row[n:], b[i])
		}
		m[i] = row
	}

	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col].IsZero() {
				continue
			}
			if pivot < 0 || weight(m[row][col]) < weight(m[pivot][col]) {
				pivot = row
			}
		}
		if pivot < 0 {
			return nil, ErrSingular
		}
		m[col], m[pivot] = m[pivot], m[col]

		inv, _ := m[col][col].Inv()
		for j := col; j < n+k; j++ {
			m[col][j] = m[col][j].Mul(inv)
		}
		for row := 0; row < n; row++ {
			if row == col || m[row][col].IsZero() {
				continue
			}
			f := m[row][col]
			for j := col; j < n+k; j++ {
				if m[col][j].IsZero() {
					continue
				}
				m[row][j] = m[row][j].Sub(f.Mul(m[col][j]))
			}
		}
	}

	x := make([][]Ratio, n)
	for i := range x {
		x[i] = m[i][n:]
	}
	return x, nil
}

func weight(r Ratio) int { return r.Num().Len() + r.Den().Len() }
