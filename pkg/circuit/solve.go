package circuit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

// State is the lifecycle of one (source, domain) contribution.
type State int

const (
	Unclassified State = iota
	Classified
	Solved
	Composited
	Unsolvable
)

var stateNames = [...]string{"unclassified", "classified", "solved", "composited", "unsolvable"}

func (s State) String() string { return stateNames[s] }

type contributionKey struct {
	source string
	domain string
}

// Contribution is a snapshot of one cached contribution.
type Contribution struct {
	Source string
	Domain string
	State  State
}

// Contributions lists every contribution ordered by source then domain.
func (c *Circuit) Contributions() []Contribution {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Contribution, 0, len(c.states))
	for k, st := range c.states {
		out = append(out, Contribution{Source: k.source, Domain: k.domain, State: st})
	}
	slices.SortFunc(out, func(a, b Contribution) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Domain, b.Domain))
	})
	return out
}

func (c *Circuit) setState(source, domain string, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := contributionKey{source, domain}
	if st == Solved && c.states[k] == Composited {
		return
	}
	c.states[k] = st
}

// transfer returns the unit response of every unknown to one excitation,
// solving at most once per source.
func (c *Circuit) transfer(exc device.Excitation) (device.Transfer, error) {
	h, err := c.cached("src:"+exc.Source, exc.Source, exc.Rows)
	if err != nil {
		for _, key := range exc.Value.Keys() {
			c.setState(exc.Source, key, Unsolvable)
		}
		return nil, &ContributionError{Source: exc.Source, Domain: strings.Join(exc.Value.Keys(), ","), Err: err}
	}
	for _, key := range exc.Value.Keys() {
		c.setState(exc.Source, key, Solved)
	}
	return lookup(h), nil
}

func lookup(h []cas.Ratio) device.Transfer {
	return func(idx int) cas.Ratio {
		if idx <= 0 || idx >= len(h) {
			return cas.Ratio{}
		}
		return h[idx]
	}
}

func (c *Circuit) cached(key, label string, rows []device.Entry) ([]cas.Ratio, error) {
	c.mu.RLock()
	sol, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.CacheHit()
		return sol.h, sol.err
	}
	c.metrics.CacheMiss()

	v, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		sol, ok := c.cache[key]
		c.mu.RUnlock()
		if ok {
			return sol, nil
		}
		h, err := c.solve(label, rows)
		sol = solution{h: h, err: err}
		c.mu.Lock()
		c.cache[key] = sol
		c.mu.Unlock()
		return sol, nil
	})
	sol = v.(solution)
	return sol.h, sol.err
}

// solve runs one symbolic MNA solve for a unit right-hand side column.
func (c *Circuit) solve(label string, rows []device.Entry) ([]cas.Ratio, error) {
	start := time.Now()
	size := len(c.unknowns)

	var err error
	h := make([]cas.Ratio, size+1)
	if floating := c.graph.Floating(); len(floating) > 0 {
		err = fmt.Errorf("%w: floating nodes %s", ErrSingularCircuit, strings.Join(floating, ", "))
	} else if size > 0 {
		b := make([][]cas.Ratio, size)
		for i := range b {
			b[i] = []cas.Ratio{{}}
		}
		for _, e := range rows {
			b[e.Row-1][0] = b[e.Row-1][0].Add(e.Coef)
		}
		var x [][]cas.Ratio
		if x, err = c.matrix.Solve(c.algebra, b); err == nil {
			for i := range size {
				h[i+1] = c.algebra.Simplify(x[i][0])
			}
		}
	}

	d := time.Since(start)
	c.metrics.ObserveSolve(d, err)
	if err != nil {
		err = classify(err)
		c.logger.Warn("solve failed", "source", label, "size", size, "error", err)
		return nil, err
	}
	c.logger.Debug("solved", "source", label, "size", size, "duration", d)
	return h, nil
}

// pick selects the transfer of a queried quantity from the unit response to
// the given source.
type pick func(h device.Transfer, source string) (cas.Ratio, error)

// compose superposes, over every source and every domain of that source,
// the source value read through the transfer chosen by p. A non-empty key
// restricts the sum to that one contribution key, so a failing contribution
// elsewhere does not hide it.
func (c *Circuit) compose(key string, p pick) (expr.Super, error) {
	var out expr.Super
	for _, exc := range c.excitations {
		keys := exc.Value.Keys()
		if key != "" {
			if !slices.Contains(keys, key) {
				continue
			}
			keys = []string{key}
		}
		h, err := c.transfer(exc)
		if err != nil {
			return expr.Super{}, err
		}
		g, err := p(h, exc.Source)
		if err != nil {
			return expr.Super{}, err
		}
		for _, k := range keys {
			part, err := c.contribution(exc, k, g)
			if err != nil {
				return expr.Super{}, err
			}
			out = out.Add(part)
		}
	}
	return out, nil
}

func (c *Circuit) contribution(exc device.Excitation, key string, g cas.Ratio) (expr.Super, error) {
	fail := func(err error) (expr.Super, error) {
		err = classify(err)
		c.setState(exc.Source, key, Unsolvable)
		c.logger.Warn("contribution failed", "source", exc.Source, "domain", key, "error", err)
		return expr.Super{}, &ContributionError{Source: exc.Source, Domain: key, Err: err}
	}

	part, err := exc.Value.Select(key).Apply(g)
	if err != nil {
		return fail(err)
	}
	if key == expr.KeyDC {
		if _, err := part.DC(); err != nil {
			return fail(err)
		}
	}
	c.setState(exc.Source, key, Composited)
	c.metrics.IncrementContribution(domainLabel(key))
	return part, nil
}

func domainLabel(key string) string {
	if strings.HasPrefix(key, "ac:") {
		return "ac"
	}
	return key
}
