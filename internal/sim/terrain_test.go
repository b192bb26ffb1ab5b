package sim

import "testing"

func TestGenerateTerrainDeterministic(t *testing.T) {
	a := GenerateTerrain(12345)
	b := GenerateTerrain(12345)
	for i := range a.Heights {
		if a.Heights[i] != b.Heights[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, a.Heights[i], b.Heights[i])
		}
	}

	c := GenerateTerrain(54321)
	same := true
	for i := range a.Heights {
		if a.Heights[i] != c.Heights[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestGenerateTerrainBounds(t *testing.T) {
	for _, seed := range []uint32{0, 1, 999, 12345, 0xFFFFFFFF} {
		tr := GenerateTerrain(seed)
		if len(tr.Heights) != TerrainSamples {
			t.Fatalf("seed %d: %d samples, want %d", seed, len(tr.Heights), TerrainSamples)
		}
		for i, h := range tr.Heights {
			if h < TerrainMinHeight || h > TerrainMaxHeight {
				t.Fatalf("seed %d: sample %d height %d out of range", seed, i, h)
			}
		}
	}
}

func TestHeightAt(t *testing.T) {
	tr := GenerateTerrain(1)
	if got := tr.HeightAt(0); got != int(tr.Heights[0]) {
		t.Errorf("HeightAt(0) = %d, want %d", got, tr.Heights[0])
	}
	if got := tr.HeightAt(Width / 2); got != int(tr.Heights[TerrainSamples/2]) {
		t.Errorf("HeightAt(mid) = %d, want %d", got, tr.Heights[TerrainSamples/2])
	}
	if got := tr.HeightAt(3); got != int(tr.Heights[1]) {
		t.Errorf("HeightAt(3) = %d, want sample 1 (%d)", got, tr.Heights[1])
	}
	if got := tr.HeightAt(-10); got != int(tr.Heights[0]) {
		t.Errorf("HeightAt(-10) = %d, want first sample", got)
	}
	if got := tr.HeightAt(Width + 10); got != int(tr.Heights[TerrainSamples-1]) {
		t.Errorf("HeightAt(past edge) = %d, want last sample", got)
	}
}

func TestDeformCrater(t *testing.T) {
	tr := GenerateTerrain(1)
	before := tr.Clone()
	orig := tr.HeightAt(100)

	tr.DeformCrater(100, orig, 10)

	if got := tr.HeightAt(100); got != orig-10 {
		t.Errorf("crater centre = %d, want %d", got, orig-10)
	}
	// dx = 6 -> isqrt(100-36) = 8
	if got, want := tr.HeightAt(106), before.HeightAt(106)-8; got != want {
		t.Errorf("crater at dx=6 = %d, want %d", got, want)
	}
	// dx = 10 -> isqrt(0) = 0
	if got, want := tr.HeightAt(110), before.HeightAt(110); got != want {
		t.Errorf("crater rim = %d, want unchanged %d", got, want)
	}
	if got, want := tr.HeightAt(120), before.HeightAt(120); got != want {
		t.Errorf("outside crater = %d, want unchanged %d", got, want)
	}
}

func TestDeformCraterFloorsAtZero(t *testing.T) {
	tr := NewTerrain()
	for i := range tr.Heights {
		tr.Heights[i] = 5
	}
	tr.DeformCrater(400, 5, 45)
	for i, h := range tr.Heights {
		if h < 0 {
			t.Fatalf("sample %d went negative: %d", i, h)
		}
	}
	if got := tr.HeightAt(400); got != 0 {
		t.Errorf("centre = %d, want 0", got)
	}
}

func TestDeformCraterAtEdges(t *testing.T) {
	tr := NewTerrain()
	for i := range tr.Heights {
		tr.Heights[i] = 200
	}
	tr.DeformCrater(0, 200, 45)
	tr.DeformCrater(Width-1, 200, 45)
	if got := tr.HeightAt(0); got != 155 {
		t.Errorf("left edge = %d, want 155", got)
	}
}
