// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

import (
	"fmt"

	"go.e43.eu/coap/internal/ranges"
)

// Size is the SZX field of a block option
type Size uint8

const (
	Size16 Size = iota
	Size32
	Size64
	Size128
	Size256
	Size512
	Size1024
	// SizeBERT marks a BERT block (RFC 8323 section 6). Its blocks are
	// multiples of 1024 bytes
	SizeBERT
)

// Bytes returns the block size in bytes. BERT blocks report 1024
func (s Size) Bytes() int {
	if s >= SizeBERT {
		return 1024
	}
	return 16 << s
}

func (s Size) String() string {
	if s == SizeBERT {
		return "BERT"
	}
	if s > SizeBERT {
		return fmt.Sprintf("Size(%d)", uint8(s))
	}
	return fmt.Sprint(s.Bytes())
}

var (
	blockNumRange  = ranges.Range{Min: 0, Max: 1<<20 - 1}
	blockSizeRange = ranges.Range{Min: 0, Max: uint64(SizeBERT)}
)

// Block is the common content of the Block1, Block2, Q-Block1 and Q-Block2
// options
type Block struct {
	num  uint32
	more bool
	size Size
}

func newBlock(what string, num uint32, more bool, size Size) (Block, error) {
	if err := blockNumRange.Check(what+" number", uint64(num)); err != nil {
		return Block{}, err
	}
	if err := blockSizeRange.Check(what+" size", uint64(size)); err != nil {
		return Block{}, err
	}
	return Block{num, more, size}, nil
}

// unpackBlock splits the uint value of a block option into its fields
func unpackBlock(what string, v uint32) (Block, error) {
	if err := ranges.U24.Check(what, uint64(v)); err != nil {
		return Block{}, err
	}
	return Block{v >> 4, v&0x08 != 0, Size(v & 0x07)}, nil
}

// Num is the relative number of the block within the body
func (b Block) Num() uint32 { return b.num }

// More reports whether further blocks follow
func (b Block) More() bool { return b.more }

func (b Block) Size() Size { return b.size }

// Value packs the block into its uint option value
func (b Block) Value() uint32 {
	v := b.num<<4 | uint32(b.size)
	if b.more {
		v |= 0x08
	}
	return v
}

func (b Block) String() string {
	return fmt.Sprintf("%d/%t/%s", b.num, b.more, b.size)
}

// Block1 describes a block of a request body (RFC 7959)
type Block1 struct{ Block }

func NewBlock1(num uint32, more bool, size Size) (Block1, error) {
	b, err := newBlock("Block1", num, more, size)
	return Block1{b}, err
}

func Block1FromValue(v uint32) (Block1, error) {
	b, err := unpackBlock("Block1", v)
	return Block1{b}, err
}

func (Block1) Number() uint16   { return OptBlock1 }
func (o Block1) Format() Format { return UintFormat{OptBlock1, uint64(o.Value())} }
func (Block1) isOption()        {}

// Block2 describes a block of a response body (RFC 7959)
type Block2 struct{ Block }

func NewBlock2(num uint32, more bool, size Size) (Block2, error) {
	b, err := newBlock("Block2", num, more, size)
	return Block2{b}, err
}

func Block2FromValue(v uint32) (Block2, error) {
	b, err := unpackBlock("Block2", v)
	return Block2{b}, err
}

func (Block2) Number() uint16   { return OptBlock2 }
func (o Block2) Format() Format { return UintFormat{OptBlock2, uint64(o.Value())} }
func (Block2) isOption()        {}

// QBlock1 is the robust request body block option (RFC 9177)
type QBlock1 struct{ Block }

func NewQBlock1(num uint32, more bool, size Size) (QBlock1, error) {
	b, err := newBlock("Q-Block1", num, more, size)
	return QBlock1{b}, err
}

func QBlock1FromValue(v uint32) (QBlock1, error) {
	b, err := unpackBlock("Q-Block1", v)
	return QBlock1{b}, err
}

func (QBlock1) Number() uint16   { return OptQBlock1 }
func (o QBlock1) Format() Format { return UintFormat{OptQBlock1, uint64(o.Value())} }
func (QBlock1) isOption()        {}

// QBlock2 is the robust response body block option (RFC 9177)
type QBlock2 struct{ Block }

func NewQBlock2(num uint32, more bool, size Size) (QBlock2, error) {
	b, err := newBlock("Q-Block2", num, more, size)
	return QBlock2{b}, err
}

func QBlock2FromValue(v uint32) (QBlock2, error) {
	b, err := unpackBlock("Q-Block2", v)
	return QBlock2{b}, err
}

func (QBlock2) Number() uint16   { return OptQBlock2 }
func (o QBlock2) Format() Format { return UintFormat{OptQBlock2, uint64(o.Value())} }
func (QBlock2) isOption()        {}
