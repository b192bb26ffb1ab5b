package sim

import (
	"testing"

	"github.com/tomcoolpxl/tank-wars/internal/fixed"
)

func TestExplosionDamageFalloff(t *testing.T) {
	tests := []struct {
		name       string
		cx, cy     int
		wantHealth int
		wantAlive  bool
	}{
		{"direct hit", 100, 100, 0, false},
		{"half radius", 70, 100, 25, true},
		{"diagonal", 100 + 36, 100 + 48, 100, true}, // d = 60, on the boundary
		{"outside radius", 161, 100, 100, true},
		{"just inside", 100, 159, 97, true}, // d2 = 3481 -> floor(100*119/3600) = 3
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tank := NewTank(0, fixed.FromInt(100), fixed.FromInt(100))
			ApplyExplosion(tt.cx, tt.cy, NewTerrain(), []*Tank{tank})
			if tank.Health != tt.wantHealth || tank.Alive != tt.wantAlive {
				t.Errorf("health=%d alive=%v, want health=%d alive=%v",
					tank.Health, tank.Alive, tt.wantHealth, tt.wantAlive)
			}
		})
	}
}

func TestExplosionReportsHits(t *testing.T) {
	a := NewTank(0, fixed.FromInt(100), fixed.FromInt(100))
	b := NewTank(1, fixed.FromInt(500), fixed.FromInt(100))
	hits := ApplyExplosion(70, 100, NewTerrain(), []*Tank{a, b})
	if len(hits) != 1 || hits[0].TankID != 0 || hits[0].Damage != 75 {
		t.Errorf("hits = %+v, want one 75-damage hit on tank 0", hits)
	}
}

func TestExplosionDeformsTerrain(t *testing.T) {
	tr := flatTerrain(200)
	ApplyExplosion(100, 200, tr, nil)
	if got := tr.HeightAt(100); got != 200-ExplosionDeformRadius {
		t.Errorf("crater centre = %d, want %d", got, 200-ExplosionDeformRadius)
	}
}

func TestExplosionSkipsDeadTanks(t *testing.T) {
	tank := NewTank(0, fixed.FromInt(100), fixed.FromInt(100))
	tank.Health = 0
	tank.Alive = false
	if hits := ApplyExplosion(100, 100, NewTerrain(), []*Tank{tank}); len(hits) != 0 {
		t.Errorf("dead tank was hit: %+v", hits)
	}
}
