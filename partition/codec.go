package partition

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/mcoimbra/pkgraph/bitset"
	"github.com/mcoimbra/pkgraph/k2"
)

// snapshotV1 is the CBOR wire form of a partition's edge data, used to ship a
// partition between workers. It carries the tree geometry, the packed bits,
// the offsets, the vertex indexes and the edge attributes. The vertex
// attribute overlay and the active set belong to the vertex routing layer and
// are not part of a snapshot. This is a wire encoding only; no storage I/O
// happens here.
type snapshotV1[E any] struct {
	Version       uint64 `cbor:"0,keyasint"`
	K             uint64 `cbor:"1,keyasint"`
	Size          uint64 `cbor:"2,keyasint"`
	InternalCount uint64 `cbor:"3,keyasint"`
	LeavesCount   uint64 `cbor:"4,keyasint"`
	Bits          []byte `cbor:"5,keyasint"`
	SrcOffset     int64  `cbor:"6,keyasint"`
	DstOffset     int64  `cbor:"7,keyasint"`
	Reversed      bool   `cbor:"8,keyasint"`
	SrcIndex      []byte `cbor:"9,keyasint"`
	DstIndex      []byte `cbor:"10,keyasint"`
	Attrs         []E    `cbor:"11,keyasint"`
}

const snapshotVersion = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Snapshot encodes the partition's edge data to CBOR. The attribute type E
// must itself be CBOR encodable.
func Snapshot[V, E any](p *Partition[V, E]) ([]byte, error) {
	s := snapshotV1[E]{
		Version:       snapshotVersion,
		K:             p.k,
		Size:          p.tree.Size(),
		InternalCount: p.tree.InternalCount(),
		LeavesCount:   p.tree.LeavesCount(),
		Bits:          p.tree.Bits().Bytes(),
		SrcOffset:     int64(p.srcOffset),
		DstOffset:     int64(p.dstOffset),
		Reversed:      p.reversed,
		SrcIndex:      p.srcIndex.Bytes(),
		DstIndex:      p.dstIndex.Bytes(),
		Attrs:         p.attrs,
	}
	data, err := encMode.Marshal(&s)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot partition")
	}
	return data, nil
}

// RestoreSnapshot decodes a partition from Snapshot output. The restored
// partition has an empty vertex overlay and no active set; the vertex
// routing layer supplies both after shipment.
func RestoreSnapshot[V, E any](data []byte, opts ...Option) (*Partition[V, E], error) {
	o := newOptions(opts...)
	var s snapshotV1[E]
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "restore partition")
	}
	if s.Version != snapshotVersion {
		return nil, errors.Errorf("restore partition: unsupported snapshot version %d", s.Version)
	}

	bitLen := s.InternalCount + s.LeavesCount
	var bits *bitset.BitSet
	if bitLen == 0 {
		bits = bitset.New(0)
	} else {
		var err error
		bits, err = bitset.FromBytes(bitLen, s.Bits)
		if err != nil {
			return nil, errors.Wrap(err, "restore partition: tree bits")
		}
	}
	tree, err := k2.NewTree(s.K, s.Size, s.InternalCount, s.LeavesCount, bits)
	if err != nil {
		return nil, errors.Wrap(err, "restore partition: tree shape")
	}
	if uint64(len(s.Attrs)) != tree.Cells() {
		return nil, errors.Wrapf(ErrEdgeCountMismatch, "restore partition: %d attributes for %d edges", len(s.Attrs), tree.Cells())
	}
	srcIndex, err := bitset.FromBytes(s.Size, s.SrcIndex)
	if err != nil {
		return nil, errors.Wrap(err, "restore partition: source index")
	}
	dstIndex, err := bitset.FromBytes(s.Size, s.DstIndex)
	if err != nil {
		return nil, errors.Wrap(err, "restore partition: destination index")
	}

	return &Partition[V, E]{
		k:         s.K,
		tree:      tree,
		reversed:  s.Reversed,
		attrs:     s.Attrs,
		srcOffset: VertexID(s.SrcOffset),
		dstOffset: VertexID(s.DstOffset),
		srcIndex:  srcIndex,
		dstIndex:  dstIndex,
		vertices:  map[VertexID]V{},
		log:       o.Log,
	}, nil
}
