package tile

import (
	"errors"
	"testing"
)

func TestDecodeFlagTable(t *testing.T) {
	const raw = uint32(Tree) + 1

	cases := []struct {
		name      string
		flags     uint32
		rotation  int
		residualH bool
		residualV bool
	}{
		{"none", 0, 0, false, false},
		{"horizontal", FlagHorizontal, 0, true, false},
		{"vertical", FlagVertical, 0, false, true},
		{"horizontal_vertical", FlagHorizontal | FlagVertical, 0, true, true},
		{"diagonal", FlagDiagonal, -90, true, false},
		{"diagonal_horizontal", FlagDiagonal | FlagHorizontal, -90, true, false},
		{"diagonal_vertical", FlagDiagonal | FlagVertical, 90, false, true},
		{"diagonal_horizontal_vertical", FlagDiagonal | FlagHorizontal | FlagVertical, 90, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, err := Decode(raw | c.flags)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if d.Block != Tree {
				t.Fatalf("expected block %v, got %v", Tree, d.Block)
			}
			if d.Rotation != c.rotation {
				t.Fatalf("expected rotation %d, got %d", c.rotation, d.Rotation)
			}
			if d.FlipKey.Horizontal() != c.residualH || d.FlipKey.Vertical() != c.residualV {
				t.Fatalf("unexpected residual flags on %v", d.FlipKey)
			}
			if d.Flipped != (c.residualH || c.residualV) {
				t.Fatalf("Flipped=%v does not match residual flags", d.Flipped)
			}
			if d.FlipKey.Block() != Tree {
				t.Fatalf("flip key lost block type: %v", d.FlipKey)
			}
		})
	}
}

func TestDecodeBlankAndOffset(t *testing.T) {
	d, err := Decode(0)
	if err != nil {
		t.Fatalf("decode blank: %v", err)
	}
	if !d.IsBlank() || d.Flipped || d.Rotation != 0 {
		t.Fatalf("expected plain blank tile, got %+v", d)
	}

	d, err = Decode(uint32(Water) + 1)
	if err != nil {
		t.Fatalf("decode water: %v", err)
	}
	if d.Block != Water {
		t.Fatalf("expected 1-based offset to be removed, got %v", d.Block)
	}
	if d.FlipKey != FlipKey(Water) {
		t.Fatalf("unflipped key should equal block type, got %v", d.FlipKey)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	if _, err := Decode(uint32(BlockCount) + 1); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("expected ErrUnknownBlock, got %v", err)
	}
	for _, s := range []string{"abc", "-1", "1.5", ""} {
		if _, err := ParseGID(s); !errors.Is(err, ErrMalformedGID) {
			t.Fatalf("ParseGID(%q): expected ErrMalformedGID, got %v", s, err)
		}
	}
	d, err := ParseGID(" 6\n")
	if err != nil || d.Block != Tree {
		t.Fatalf("ParseGID trimmed input: %+v %v", d, err)
	}
}

func TestBlockPredicates(t *testing.T) {
	if !IsCollidable(Water) || !IsCollidable(Tree) || !IsCollidable(BuildingWall) {
		t.Fatal("water, trees and walls must collide")
	}
	if IsCollidable(Grass) {
		t.Fatal("grass must not collide")
	}
	if IsCollidable(SlidingDoor) || !IsInteractable(SlidingDoor) {
		t.Fatal("sliding doors are interactable but not collidable")
	}
}
