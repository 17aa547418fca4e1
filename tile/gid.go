package tile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Flag bits stored in the top of a raw tile identifier.
const (
	FlagHorizontal uint32 = 1 << 31
	FlagVertical   uint32 = 1 << 30
	FlagDiagonal   uint32 = 1 << 29

	flagMask = FlagHorizontal | FlagVertical | FlagDiagonal
)

var (
	ErrMalformedGID = errors.New("tile: malformed gid")
	ErrUnknownBlock = errors.New("tile: unknown block type")
)

// FlipKey combines a block type with the residual flip flags of a decoded
// tile. It keys the atlas remap table.
type FlipKey uint32

func MakeFlipKey(b BlockType, flags uint32) FlipKey {
	return FlipKey(uint32(b) | (flags & (FlagHorizontal | FlagVertical)))
}

func (k FlipKey) Block() BlockType {
	return BlockType(uint32(k) &^ flagMask)
}

func (k FlipKey) Horizontal() bool { return uint32(k)&FlagHorizontal != 0 }
func (k FlipKey) Vertical() bool   { return uint32(k)&FlagVertical != 0 }

// Flipped reports whether the key carries any mirror flag.
func (k FlipKey) Flipped() bool {
	return uint32(k)&(FlagHorizontal|FlagVertical) != 0
}

func (k FlipKey) String() string {
	s := k.Block().String()
	if k.Horizontal() {
		s += "|H"
	}
	if k.Vertical() {
		s += "|V"
	}
	return s
}

// Decoded is a raw tile identifier split into block type and orientation.
type Decoded struct {
	Block BlockType
	// Flipped is true when the tile needs a mirrored atlas variant.
	Flipped bool
	// Rotation is one of -90, 0 or 90 degrees.
	Rotation int
	FlipKey  FlipKey
}

func (d Decoded) IsBlank() bool {
	return d.Block == Blank
}

type orientation struct {
	rotation int
	residual uint32
}

// orientations maps the three authored flag bits to a rotation plus at most
// the mirror flags that still have to be baked into the atlas. Diagonal
// combinations always collapse to a quarter turn.
var orientations = map[uint32]orientation{
	0:                                            {0, 0},
	FlagHorizontal:                               {0, FlagHorizontal},
	FlagVertical:                                 {0, FlagVertical},
	FlagHorizontal | FlagVertical:                {0, FlagHorizontal | FlagVertical},
	FlagDiagonal:                                 {-90, FlagHorizontal},
	FlagDiagonal | FlagHorizontal:                {-90, FlagHorizontal},
	FlagDiagonal | FlagVertical:                  {90, FlagVertical},
	FlagDiagonal | FlagHorizontal | FlagVertical: {90, FlagHorizontal},
}

// Decode splits a raw identifier. Zero is the blank tile; other values are
// 1-based in the map format.
func Decode(raw uint32) (Decoded, error) {
	flags := raw & flagMask
	id := raw &^ flagMask
	if id > 0 {
		id--
	}
	block := BlockType(id)
	if id >= uint32(BlockCount) {
		return Decoded{}, fmt.Errorf("%w: %d (raw %#x)", ErrUnknownBlock, id, raw)
	}

	o := orientations[flags]
	return Decoded{
		Block:    block,
		Flipped:  o.residual != 0,
		Rotation: o.rotation,
		FlipKey:  MakeFlipKey(block, o.residual),
	}, nil
}

// ParseGID decodes a textual identifier as found in csv layer data.
func ParseGID(s string) (Decoded, error) {
	s = strings.TrimSpace(s)
	raw, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %q", ErrMalformedGID, s)
	}
	return Decode(uint32(raw))
}
