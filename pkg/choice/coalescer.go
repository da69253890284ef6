package choice

// batch is the coalescer state of one group. Batches nest; only the
// outermost one snapshots and diffs the model value.
type batch struct {
	depth   int
	name    string
	before  any
	version int
	writes  int
}

// Batch runs fn as a single logical change. Checked writes, registrations and
// model value assignments made on this group inside fn produce at most one
// notification, delivered when the outermost batch returns and only if the
// model value differs from its value when the batch opened.
//
// Example:
//
//	g.Batch(func() {
//	    running.SetChecked(true)
//	    swimming.SetChecked(false)
//	})
func (g *Group) Batch(fn func()) {
	g.BatchNamed("", fn)
}

// BatchNamed is Batch with a name that is logged at debug level.
func (g *Group) BatchNamed(name string, fn func()) {
	g.open(name)
	defer g.close()
	fn()
}

func (g *Group) open(name string) {
	if g.batch.depth == 0 {
		g.batch.name = name
		g.batch.before = g.current()
		g.batch.version = g.ledger.version
		g.batch.writes = g.ledger.writes
		if name != "" {
			g.logger.Debug("choice: batch start", "group", g.name, "batch", name)
		}
	}
	g.batch.depth++
}

func (g *Group) close() {
	g.batch.depth--
	if g.batch.depth > 0 {
		return
	}

	before := g.batch.before
	touched := g.ledger.version != g.batch.version
	writes := g.ledger.writes - g.batch.writes
	name := g.batch.name
	g.batch.before = nil
	g.batch.name = ""

	after := g.current()
	if touched {
		g.runValidation()
	}
	if name != "" {
		g.logger.Debug("choice: batch end", "group", g.name, "batch", name, "writes", writes)
	}
	if Equal(before, after) {
		return
	}

	g.seq++
	g.emit(Change{
		GroupID:  g.id,
		Group:    g.name,
		Seq:      g.seq,
		Value:    g.exposed(after),
		Previous: g.exposed(before),
	})
}
