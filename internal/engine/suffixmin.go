package engine

// rebuildMinFuture recomputes MinFuture[i] = min(Balances[i..N-1]) for every
// i from the given index down to 0, by one backward pass. MinFuture[from+1]
// must already be correct (or from must be the last day). A full rebuild
// passes Days()-1; after a commit at day k only [0, k-1] needs relaxing.
func (p *Projection) rebuildMinFuture(from int) {
	n := p.Days()
	if n == 0 {
		return
	}
	if from > n-1 {
		from = n - 1
	}
	for i := from; i >= 0; i-- {
		m := p.Balances[i]
		if i+1 < n && p.MinFuture[i+1] < m {
			m = p.MinFuture[i+1]
		}
		p.MinFuture[i] = m
	}
}

// Commit applies a purchase of price on day index day: every balance at or
// after that day drops by price, and so does its suffix minimum. Days before
// the commit keep their balances but may inherit a lower future minimum,
// which one bounded backward pass restores.
func (p *Projection) Commit(day int, price float64) {
	n := p.Days()
	if day < 0 || day >= n {
		return
	}
	for i := day; i < n; i++ {
		p.Balances[i] -= price
		p.MinFuture[i] -= price
	}
	if day > 0 {
		p.rebuildMinFuture(day - 1)
	}
}
