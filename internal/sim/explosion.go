package sim

// Hit records damage dealt to one tank by an explosion.
type Hit struct {
	TankID int
	Damage int
}

// ApplyExplosion carves a crater at (cx, cy) and damages every living tank
// within ExplosionDamageRadius using a quadratic falloff.
func ApplyExplosion(cx, cy int, terrain *Terrain, tanks []*Tank) []Hit {
	terrain.DeformCrater(cx, cy, ExplosionDeformRadius)

	const r2 = ExplosionDamageRadius * ExplosionDamageRadius
	var hits []Hit
	for _, t := range tanks {
		if !t.Alive {
			continue
		}
		dx := int64(t.PixelX() - cx)
		dy := int64(t.PixelY() - cy)
		d2 := dx*dx + dy*dy
		if d2 >= r2 {
			continue
		}
		dmg := int(MaxHealth * (r2 - d2) / r2)
		t.Damage(dmg)
		hits = append(hits, Hit{TankID: t.ID, Damage: dmg})
	}
	return hits
}
