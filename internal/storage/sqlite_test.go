package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveMatchAndShots(t *testing.T) {
	store := openTestStore(t)

	rec := MatchRecord{
		MatchID:   "hotseat-1",
		Mode:      "hotseat",
		Seed:      0xFFFFFFF0,
		Winner:    1,
		Turns:     6,
		Ticks:     2400,
		FinalHash: 0xCAFEBABE,
		EndReason: "Match completed",
		Duration:  40,
	}
	shots := []Shot{
		{Turn: 0, Player: 0, Angle: 45, Power: 70},
		{Turn: 1, Player: 1, Angle: 135, Power: 70},
		{Turn: 2, Player: 0, Angle: 60, Power: 80},
	}

	id, err := store.SaveMatch(rec, shots)
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveMatch() id = %d", id)
	}

	got, err := store.MatchByID("hotseat-1")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("MatchByID() returned nil")
	}
	if got.Seed != rec.Seed || got.FinalHash != rec.FinalHash {
		t.Errorf("uint32 columns round trip: seed=%x hash=%x", got.Seed, got.FinalHash)
	}
	if got.Winner != 1 || got.Turns != 6 || got.Mode != "hotseat" {
		t.Errorf("MatchByID() = %+v", got)
	}

	gotShots, err := store.Shots("hotseat-1")
	if err != nil {
		t.Fatalf("Shots() failed: %v", err)
	}
	if len(gotShots) != len(shots) {
		t.Fatalf("Shots() returned %d shots, want %d", len(gotShots), len(shots))
	}
	for i := range shots {
		if gotShots[i] != shots[i] {
			t.Errorf("shot %d = %+v, want %+v", i, gotShots[i], shots[i])
		}
	}
}

func TestSaveMatchIsAtomic(t *testing.T) {
	store := openTestStore(t)

	dup := []Shot{{Turn: 0, Angle: 45, Power: 50}, {Turn: 0, Angle: 45, Power: 50}}
	if _, err := store.SaveMatch(MatchRecord{MatchID: "bad", Mode: "hotseat", EndReason: "x"}, dup); err == nil {
		t.Fatal("SaveMatch() with duplicate turns should fail")
	}

	got, err := store.MatchByID("bad")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("failed save left a match row behind")
	}
}

func TestMatchByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.MatchByID("nope")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("MatchByID() = %+v, want nil", got)
	}
}

func TestRecentMatchesAndStats(t *testing.T) {
	store := openTestStore(t)

	winners := []int{0, 1, 0, -1, -2}
	for i, w := range winners {
		rec := MatchRecord{
			MatchID:   "m" + string(rune('a'+i)),
			Mode:      "network",
			Winner:    w,
			Turns:     2 * (i + 1),
			EndReason: "Match completed",
		}
		if _, err := store.SaveMatch(rec, nil); err != nil {
			t.Fatalf("SaveMatch(%s) failed: %v", rec.MatchID, err)
		}
	}

	recent, err := store.RecentMatches(3)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentMatches(3) returned %d rows", len(recent))
	}
	if recent[0].MatchID != "me" || recent[2].MatchID != "mc" {
		t.Errorf("order = %s..%s, want newest first", recent[0].MatchID, recent[2].MatchID)
	}

	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	want := Stats{Matches: 5, HostWins: 2, GuestWins: 1, Draws: 1, Aborted: 1, AvgTurns: 6}
	if st != want {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}

	if err := store.DeleteMatch("ma"); err != nil {
		t.Fatalf("DeleteMatch() failed: %v", err)
	}
	if got, _ := store.MatchByID("ma"); got != nil {
		t.Error("match survived DeleteMatch()")
	}
}

func TestEmptyStats(t *testing.T) {
	store := openTestStore(t)
	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st != (Stats{}) {
		t.Errorf("Stats() on empty db = %+v", st)
	}
}

func TestSaveMatchResultAdapter(t *testing.T) {
	store := openTestStore(t)

	var saver multiplayer.MatchResultSaver = store
	err := saver.SaveMatchResult(multiplayer.MatchResultData{
		MatchID:      "match-ABC",
		Mode:         "ssh",
		Seed:         12345,
		HostSession:  "alice",
		GuestSession: "bob",
		Winner:       0,
		Turns:        3,
		EndReason:    "Match completed",
		Shots:        []multiplayer.ShotEntry{{Turn: 0, Player: 0, Angle: 30, Power: 90}},
	})
	if err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	got, err := store.MatchByID("match-ABC")
	if err != nil || got == nil {
		t.Fatalf("MatchByID() = %v, %v", got, err)
	}
	if got.HostSession != "alice" || got.GuestSession != "bob" || got.Seed != 12345 {
		t.Errorf("saved %+v", got)
	}
	shots, _ := store.Shots("match-ABC")
	if len(shots) != 1 || shots[0].Angle != 30 {
		t.Errorf("shots = %+v", shots)
	}
}
