package sim

import "testing"

var scriptedShots = [][2]int{
	{45, 50}, {135, 60}, {60, 80}, {120, 70}, {30, 90}, {150, 40},
}

// settle steps until the match is waiting for a shot again or has ended.
func settle(t *testing.T, s *Simulation) {
	t.Helper()
	for i := 0; i < 5000; i++ {
		if s.Phase() == PhaseTurnAim || s.IsOver() {
			return
		}
		s.Step(Inputs{})
	}
	t.Fatalf("match did not settle, phase %v", s.Phase())
}

func playScript(t *testing.T, seed uint32, shots [][2]int) []uint32 {
	t.Helper()
	s := New(seed)
	s.Start()
	var hashes []uint32
	for i, shot := range shots {
		if s.IsOver() {
			break
		}
		if !s.Fire(shot[0], shot[1], s.ActivePlayer()) {
			t.Fatalf("shot %d rejected in phase %v", i, s.Phase())
		}
		settle(t, s)
		hashes = append(hashes, s.Hash())
	}
	return hashes
}

func TestSimulationDeterminism(t *testing.T) {
	run1 := playScript(t, 12345, scriptedShots)
	run2 := playScript(t, 12345, scriptedShots)

	if len(run1) == 0 || len(run1) != len(run2) {
		t.Fatalf("turn counts differ: %d vs %d", len(run1), len(run2))
	}
	for i := range run1 {
		if run1[i] != run2[i] {
			t.Errorf("turn %d: hash %d vs %d", i+1, run1[i], run2[i])
		}
	}

	other := playScript(t, 54321, scriptedShots)
	if other[0] == run1[0] {
		t.Error("different seeds produced the same first-turn hash")
	}
}

func TestSimulationNewIsReproducible(t *testing.T) {
	a, b := New(42), New(42)
	if a.Hash() != b.Hash() {
		t.Fatal("fresh simulations with the same seed differ")
	}
	for id := range 2 {
		tank := a.Tank(id)
		x := tank.PixelX()
		if x < SpawnRanges[id][0] || x > SpawnRanges[id][1] {
			t.Errorf("tank %d spawned at %d outside %v", id, x, SpawnRanges[id])
		}
		if tank.PixelY() != a.HeightAt(x)+TankHeight/2 {
			t.Errorf("tank %d not resting on terrain", id)
		}
	}
	if a.Phase() != PhaseLobby {
		t.Errorf("phase = %v, want Lobby", a.Phase())
	}
}

func TestSimulationInputsMoveActiveTankOnly(t *testing.T) {
	s := New(1)
	s.Start()
	s.Step(Inputs{AngleUp: true, PowerDown: true})

	if got := s.Tank(0); got.AimAngle != 46 || got.AimPower != StartAimPower-1 {
		t.Errorf("active tank aim = (%d, %d)", got.AimAngle, got.AimPower)
	}
	if got := s.Tank(1); got.AimAngle != 135 || got.AimPower != StartAimPower {
		t.Errorf("idle tank aim changed: (%d, %d)", got.AimAngle, got.AimPower)
	}
}

func TestSimulationFireAuthorization(t *testing.T) {
	s := New(1)
	if s.Fire(45, 50, 0) {
		t.Error("fire accepted in lobby")
	}
	s.Start()
	if s.Fire(45, 50, 1) {
		t.Error("fire accepted from the inactive player")
	}
	if s.Phase() != PhaseTurnAim {
		t.Fatalf("rejected fire changed phase to %v", s.Phase())
	}
	if !s.Fire(300, 150, 0) {
		t.Fatal("fire from the active player rejected")
	}
	if got := s.Tank(0); got.AimAngle != MaxAimAngle || got.AimPower != MaxAimPower {
		t.Errorf("fire did not clamp aim: (%d, %d)", got.AimAngle, got.AimPower)
	}
	if s.Phase() != PhaseProjectileFlight {
		t.Errorf("phase = %v, want ProjectileFlight", s.Phase())
	}
	if _, ok := s.Projectile(); !ok {
		t.Error("no projectile after fire")
	}
	if s.Fire(45, 50, 0) {
		t.Error("second fire accepted during flight")
	}

	found := false
	for _, e := range s.Events() {
		if e.Kind == EventFire && e.Player == 0 && e.Value == MaxAimAngle && e.Extra == MaxAimPower {
			found = true
		}
	}
	if !found {
		t.Errorf("fire event missing: %+v", s.Events())
	}
}

func TestSimulationAutoFire(t *testing.T) {
	s := New(3)
	s.Start()
	for range TurnDurationTicks - 1 {
		s.Step(Inputs{})
	}
	if s.Phase() != PhaseTurnAim {
		t.Fatalf("fired early, phase %v", s.Phase())
	}
	s.Step(Inputs{})
	if s.Phase() != PhaseProjectileFlight {
		t.Errorf("phase = %v after timer expiry, want ProjectileFlight", s.Phase())
	}
}

func TestSimulationAutoFireDisabled(t *testing.T) {
	s := New(3)
	s.SetAutoFire(false)
	s.Start()
	for range TurnDurationTicks + 100 {
		s.Step(Inputs{})
	}
	if s.Phase() != PhaseTurnAim {
		t.Errorf("phase = %v, want TurnAim", s.Phase())
	}
	if s.Rules().TurnTimer != 0 {
		t.Errorf("timer = %d, want 0", s.Rules().TurnTimer)
	}
}

func TestSimulationTurnAdvances(t *testing.T) {
	s := New(5)
	s.Start()
	s.Fire(90, 0, 0) // drops onto the shooter's own spot
	settle(t, s)

	if s.IsOver() {
		t.Fatal("match ended on a self hit with health to spare")
	}
	if s.Turn() != 2 || s.ActivePlayer() != 1 {
		t.Errorf("turn=%d active=%d, want 2 and 1", s.Turn(), s.ActivePlayer())
	}
	if got := s.Tank(0).Health; got != 1 {
		t.Errorf("shooter health = %d, want 1", got)
	}
}

func TestSimulationHashIgnoresTurnTimer(t *testing.T) {
	s := New(8)
	s.Start()
	before := s.Hash()
	s.Step(Inputs{})
	s.Step(Inputs{})
	if s.Hash() != before {
		t.Error("hash changed while only the turn timer moved")
	}
	s.Step(Inputs{PowerUp: true})
	if s.Hash() == before {
		t.Error("hash did not change with aim")
	}
}

func TestSimulationSnapshotRoundTrip(t *testing.T) {
	a := New(7)
	a.Start()
	a.Fire(60, 70, 0)
	for range 10 {
		a.Step(Inputs{})
	}

	b := New(99)
	if err := b.ApplySnapshot(a.Snapshot()); err != nil {
		t.Fatalf("ApplySnapshot: %v", err)
	}
	if a.Hash() != b.Hash() {
		t.Fatal("hash differs right after resync")
	}

	for range 300 {
		a.Step(Inputs{})
		b.Step(Inputs{})
	}
	if a.Hash() != b.Hash() || a.Tick() != b.Tick() {
		t.Error("simulations diverged after resync")
	}
}

func TestSimulationApplySnapshotRejectsBadShape(t *testing.T) {
	s := New(1)
	snap := s.Snapshot()
	before := s.Hash()

	snap.Heights = snap.Heights[:10]
	if err := s.ApplySnapshot(snap); err == nil {
		t.Error("short terrain accepted")
	}

	snap = s.Snapshot()
	snap.ActivePlayer = 4
	if err := s.ApplySnapshot(snap); err == nil {
		t.Error("bad active player accepted")
	}
	if s.Hash() != before {
		t.Error("rejected snapshot modified the simulation")
	}
}

func TestSimulationWinner(t *testing.T) {
	s := New(11)
	s.Start()
	s.tanks[1].kill()
	s.Fire(45, 50, 0)
	settle(t, s)

	if !s.IsOver() || s.Winner() != 0 {
		t.Errorf("over=%v winner=%d, want player 0", s.IsOver(), s.Winner())
	}
}

func TestSimulationDraw(t *testing.T) {
	s := New(11)
	s.Start()
	s.tanks[1].kill()
	s.tanks[0].Health = 1
	s.Fire(90, 0, 0)
	settle(t, s)

	if s.Winner() != WinnerDraw {
		t.Errorf("winner = %d, want draw", s.Winner())
	}
}

func TestSimulationAbort(t *testing.T) {
	s := New(2)
	s.Start()
	s.Fire(45, 50, 0)
	s.Abort()

	if !s.IsOver() || s.Winner() != WinnerAborted {
		t.Errorf("over=%v winner=%d, want aborted", s.IsOver(), s.Winner())
	}
	if _, ok := s.Projectile(); ok {
		t.Error("projectile survived abort")
	}
	s.Step(Inputs{})
	if s.Winner() != WinnerAborted {
		t.Error("stepping after abort changed the winner")
	}
}

func TestSimulationPreExplosionDelay(t *testing.T) {
	const delay = 30
	s := New(5, WithPreExplosionDelay(delay))
	s.Start()
	s.Fire(90, 0, 0)

	for i := 0; s.Phase() == PhaseProjectileFlight; i++ {
		if i > 100 {
			t.Fatal("shell never landed")
		}
		s.Step(Inputs{})
	}
	if s.Phase() != PhasePreExplosion {
		t.Fatalf("phase = %v, want PreExplosion", s.Phase())
	}
	if !hasEvent(s.Events(), EventExplosionStart) {
		t.Error("missing explosion-start event")
	}

	for range delay - 1 {
		s.Step(Inputs{})
	}
	if s.Phase() != PhasePreExplosion || s.Tank(0).Health != MaxHealth {
		t.Fatalf("blast applied early: phase %v health %d", s.Phase(), s.Tank(0).Health)
	}

	s.Step(Inputs{})
	if !hasEvent(s.Events(), EventExplosion) {
		t.Error("missing explosion event")
	}
	if s.Phase() != PhasePostExplosionStabilize {
		t.Errorf("phase = %v, want Stabilize", s.Phase())
	}
	if s.Tank(0).Health != 1 {
		t.Errorf("health = %d, want 1", s.Tank(0).Health)
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
