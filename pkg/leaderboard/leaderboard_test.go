package leaderboard

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/submission"
	"github.com/carbonquest/carbonquest/pkg/submissionstore"
)

const (
	walletA = "0x1111111111111111111111111111111111111111"
	walletB = "0x2222222222222222222222222222222222222222"
)

func seedSubmission(t *testing.T, store submissionstore.Store, activity submission.ActivityType, wallet string, status submission.Status) {
	t.Helper()

	sub := submission.New(activity, "title", "description", "proofs/k", "/images/proofs/k", wallet, "")
	if status != submission.StatusPending {
		if err := sub.Transition(status, "1", "ipfs://meta/1"); err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
	}
	if err := store.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
}

func TestLeaderboardRefreshAggregatesApproved(t *testing.T) {
	store := submissionstore.NewMemoryStore()

	// walletA: tree-planting (10) + clean-energy (8) = 18
	seedSubmission(t, store, submission.ActivityTreePlanting, walletA, submission.StatusApproved)
	seedSubmission(t, store, submission.ActivityCleanEnergy, walletA, submission.StatusApproved)
	// walletB: waste-reduction (5) + unknown activity (1) = 6
	seedSubmission(t, store, submission.ActivityWasteReduction, walletB, submission.StatusApproved)
	seedSubmission(t, store, submission.ActivityType("beach-cleanup"), walletB, submission.StatusApproved)
	// Not counted: pending, rejected, and approved without a wallet.
	seedSubmission(t, store, submission.ActivityTreePlanting, walletA, submission.StatusPending)
	seedSubmission(t, store, submission.ActivityTreePlanting, walletB, submission.StatusRejected)
	seedSubmission(t, store, submission.ActivityTreePlanting, "", submission.StatusApproved)

	board := New(store, time.Minute, 0, zap.NewNop())
	if err := board.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	snap := board.Snapshot()
	if len(snap.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(snap.Entries))
	}

	first, second := snap.Entries[0], snap.Entries[1]
	if first.WalletAddress != walletA || first.CarbonPoints != "18" || first.Rank != 1 {
		t.Fatalf("first entry = %+v, want walletA with 18 points at rank 1", first)
	}
	if first.Approved != 2 {
		t.Fatalf("first entry approved count = %d, want 2", first.Approved)
	}
	if second.WalletAddress != walletB || second.CarbonPoints != "6" || second.Rank != 2 {
		t.Fatalf("second entry = %+v, want walletB with 6 points at rank 2", second)
	}
}

func TestLeaderboardSnapshotBeforeRefreshIsEmpty(t *testing.T) {
	board := New(submissionstore.NewMemoryStore(), time.Minute, 0, zap.NewNop())

	snap := board.Snapshot()
	if snap.Entries == nil || len(snap.Entries) != 0 {
		t.Fatalf("snapshot entries = %v, want empty non-nil slice", snap.Entries)
	}
}

func TestLeaderboardTiesBreakByWallet(t *testing.T) {
	store := submissionstore.NewMemoryStore()
	seedSubmission(t, store, submission.ActivityTreePlanting, walletB, submission.StatusApproved)
	seedSubmission(t, store, submission.ActivityTreePlanting, walletA, submission.StatusApproved)

	board := New(store, time.Minute, 0, zap.NewNop())
	if err := board.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	snap := board.Snapshot()
	if len(snap.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(snap.Entries))
	}
	if snap.Entries[0].WalletAddress != walletA {
		t.Fatalf("tie broken wrong: first = %s, want %s", snap.Entries[0].WalletAddress, walletA)
	}
}

func TestLeaderboardStopTwice(t *testing.T) {
	board := New(submissionstore.NewMemoryStore(), time.Minute, 0, zap.NewNop())
	board.Start(context.Background())

	// The server stops the board explicitly and again via a deferred
	// cleanup; both calls must return without panicking.
	defer board.Stop()
	board.Stop()
	board.Stop()
}

func TestLeaderboardStartStop(t *testing.T) {
	store := submissionstore.NewMemoryStore()
	seedSubmission(t, store, submission.ActivityTreePlanting, walletA, submission.StatusApproved)

	board := New(store, 10*time.Millisecond, time.Second, zap.NewNop())
	board.Start(context.Background())
	defer board.Stop()

	// Start performs an immediate refresh.
	snap := board.Snapshot()
	if len(snap.Entries) != 1 {
		t.Fatalf("got %d entries after Start, want 1", len(snap.Entries))
	}
	if snap.RefreshedAt.IsZero() {
		t.Fatal("RefreshedAt not set")
	}
}
