package partition

// EdgeContext presents one edge to a sendMsg callback during aggregation and
// receives the messages it emits. SrcAttr and DstAttr are populated according
// to the triplet fields the scan was invoked with.
type EdgeContext[V, E, A any] struct {
	Src     VertexID
	Dst     VertexID
	SrcAttr V
	DstAttr V
	Attr    E

	merge func(A, A) A
	acc   map[VertexID]A
}

// SendToSrc merges a message into the source vertex's accumulator.
func (c *EdgeContext[V, E, A]) SendToSrc(msg A) { c.accumulate(c.Src, msg) }

// SendToDst merges a message into the destination vertex's accumulator.
func (c *EdgeContext[V, E, A]) SendToDst(msg A) { c.accumulate(c.Dst, msg) }

func (c *EdgeContext[V, E, A]) accumulate(v VertexID, msg A) {
	if cur, ok := c.acc[v]; ok {
		c.acc[v] = c.merge(cur, msg)
	} else {
		c.acc[v] = msg
	}
}

func (c *EdgeContext[V, E, A]) load(p *Partition[V, E], src, dst VertexID, attr E, fields TripletFields) {
	c.Src = src
	c.Dst = dst
	c.Attr = attr
	var zero V
	c.SrcAttr, c.DstAttr = zero, zero
	if fields.IncludeSrc() {
		c.SrcAttr = p.vertices[src]
	}
	if fields.IncludeDst() {
		c.DstAttr = p.vertices[dst]
	}
}

// AggregateMessagesEdgeScan runs sendMsg over every edge passing the
// activeness filter, in tree order, and returns the per-vertex accumulators.
// Aggregation results are maps and carry no ordering.
func AggregateMessagesEdgeScan[V, E, A any](
	p *Partition[V, E],
	sendMsg func(*EdgeContext[V, E, A]),
	mergeMsg func(A, A) A,
	fields TripletFields,
	act Activeness,
) map[VertexID]A {
	ctx := &EdgeContext[V, E, A]{merge: mergeMsg, acc: map[VertexID]A{}}
	for it := p.Iterator(); ; {
		e, ok := it.Next()
		if !ok {
			break
		}
		if !p.edgeActive(e.Src, e.Dst, act) {
			continue
		}
		ctx.load(p, e.Src, e.Dst, e.Attr, fields)
		sendMsg(ctx)
	}
	return ctx.acc
}

// AggregateMessagesSrcIndexScan visits edges source by source through the
// source index, enumerating each source's neighbors by restricted tree
// descent. Semantics match the edge scan; the scan is cheaper when few
// sources carry edges.
func AggregateMessagesSrcIndexScan[V, E, A any](
	p *Partition[V, E],
	sendMsg func(*EdgeContext[V, E, A]),
	mergeMsg func(A, A) A,
	fields TripletFields,
	act Activeness,
) map[VertexID]A {
	ctx := &EdgeContext[V, E, A]{merge: mergeMsg, acc: map[VertexID]A{}}
	p.srcIndex.ForEachSet(func(line uint64) bool {
		cells, err := p.srcLineEdges(line)
		if err != nil {
			// The index only holds lines inside the matrix.
			panic(err)
		}
		for _, cell := range cells {
			src := p.srcOffset + VertexID(cell.Line)
			dst := p.dstOffset + VertexID(cell.Col)
			if !p.edgeActive(src, dst, act) {
				continue
			}
			ctx.load(p, src, dst, p.attrs[cell.Ord], fields)
			sendMsg(ctx)
		}
		return true
	})
	return ctx.acc
}

// AggregateMessagesDstIndexScan is the destination side counterpart of
// AggregateMessagesSrcIndexScan.
func AggregateMessagesDstIndexScan[V, E, A any](
	p *Partition[V, E],
	sendMsg func(*EdgeContext[V, E, A]),
	mergeMsg func(A, A) A,
	fields TripletFields,
	act Activeness,
) map[VertexID]A {
	ctx := &EdgeContext[V, E, A]{merge: mergeMsg, acc: map[VertexID]A{}}
	p.dstIndex.ForEachSet(func(col uint64) bool {
		cells, err := p.dstColEdges(col)
		if err != nil {
			panic(err)
		}
		for _, cell := range cells {
			src := p.srcOffset + VertexID(cell.Line)
			dst := p.dstOffset + VertexID(cell.Col)
			if !p.edgeActive(src, dst, act) {
				continue
			}
			ctx.load(p, src, dst, p.attrs[cell.Ord], fields)
			sendMsg(ctx)
		}
		return true
	})
	return ctx.acc
}
