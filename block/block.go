// Package block implements the content-addressed block type of §3/§6: a
// Genesis block identified directly by configuration, and Network blocks
// whose identifier is a deterministic digest of their parents and issuer.
package block

import (
	"encoding/binary"

	"github.com/luxfi/crypto/hashing"

	"github.com/latticedag/consensus/ids"
)

// Kind distinguishes the single Genesis block from ordinary Network blocks.
type Kind uint8

const (
	Genesis Kind = iota
	Network
)

// Block is an immutable, content-addressed DAG node.
type Block struct {
	kind    Kind
	id      ids.BlockID
	parents []ids.BlockID
	issuer  ids.IssuerID
	payload []byte
}

// NewGenesis constructs the Genesis block. Its identifier is supplied
// directly by configuration (§4.4 step 8 / §9) rather than computed, since
// Genesis has no parents or issuer to encode.
func NewGenesis(id ids.BlockID) *Block {
	return &Block{kind: Genesis, id: id}
}

// New constructs a Network block referencing parents and issued by issuer,
// deriving its identifier from the canonical encoding of §6.
func New(parents []ids.BlockID, issuer ids.IssuerID, payload []byte) *Block {
	b := &Block{kind: Network, parents: append([]ids.BlockID(nil), parents...), issuer: issuer, payload: payload}
	b.id = computeID(b.parents, issuer)
	return b
}

// ID returns the block's content address.
func (b *Block) ID() ids.BlockID { return b.id }

// Kind reports whether this is the Genesis block or a Network block.
func (b *Block) Kind() Kind { return b.kind }

// Parents returns the block's parent identifiers, in positional order. Empty
// for Genesis.
func (b *Block) Parents() []ids.BlockID { return b.parents }

// Issuer returns the block's issuer. Zero-valued for Genesis.
func (b *Block) Issuer() ids.IssuerID { return b.issuer }

// Payload returns the block's opaque application payload.
func (b *Block) Payload() []byte { return b.payload }

// computeID implements §6's bit-exact block identifier:
// H(parents.len() as 8-byte BE || concat(parent ids) || issuer id).
func computeID(parents []ids.BlockID, issuer ids.IssuerID) ids.BlockID {
	buf := make([]byte, 0, 8+len(parents)*32+32)
	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], uint64(len(parents)))
	buf = append(buf, lenBytes[:]...)
	for _, p := range parents {
		buf = append(buf, p[:]...)
	}
	buf = append(buf, issuer[:]...)
	return ids.BlockID(hashing.ComputeHash256Array(buf))
}
