package service

import (
	"context"
	"errors"
	"testing"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub sequence guard
// ---------------------------------------------------------------------------

type stubGuard struct {
	lastSeq   map[string]int64
	checkErr  error
	commitErr error
	commits   int
}

func newStubGuard() *stubGuard {
	return &stubGuard{lastSeq: make(map[string]int64)}
}

func (g *stubGuard) Supersedes(_ context.Context, siteID string, seq int64) (bool, error) {
	if g.checkErr != nil {
		return false, g.checkErr
	}
	return seq > g.lastSeq[siteID], nil
}

func (g *stubGuard) Commit(_ context.Context, siteID string, seq int64) error {
	if g.commitErr != nil {
		return g.commitErr
	}
	g.commits++
	if seq > g.lastSeq[siteID] {
		g.lastSeq[siteID] = seq
	}
	return nil
}

func checkInput(siteID, status string, seq int64) ports.StatusCheckInput {
	return ports.StatusCheckInput{
		SiteID:    siteID,
		NewStatus: status,
		Notes:     "inspected",
		Operator:  "willy",
		Seq:       seq,
	}
}

// ---------------------------------------------------------------------------
// Apply tests
// ---------------------------------------------------------------------------

func TestUpdateService_Apply_Success(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	changes := &stubChangeRepo{}
	svc := NewUpdateService(repo, changes, newStubGuard(), discardLogger)

	result, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Applied {
		t.Error("expected Applied=true")
	}
	if result.PreviousStatus != "unchecked" || result.Status != "ok" {
		t.Errorf("expected unchecked -> ok, got %q -> %q", result.PreviousStatus, result.Status)
	}

	stored, _ := repo.FindByID(context.Background(), "A1")
	if stored.Status != domain.StatusOK {
		t.Errorf("store must hold the new status, got %q", stored.Status)
	}
	if stored.CheckCount != 1 {
		t.Errorf("expected check_count 1, got %d", stored.CheckCount)
	}
	if stored.LastChecked.IsZero() {
		t.Error("last_checked must be stamped")
	}
}

func TestUpdateService_Apply_RecordsChangeLog(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusIssue, 24.7, 46.6),
	}}
	changes := &stubChangeRepo{}
	svc := NewUpdateService(repo, changes, newStubGuard(), discardLogger)

	if _, err := svc.Apply(context.Background(), checkInput("A1", "resolved", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(changes.changes) != 1 {
		t.Fatalf("expected 1 change log entry, got %d", len(changes.changes))
	}
	c := changes.changes[0]
	if c.ID == "" {
		t.Error("change entry must carry an id")
	}
	if c.PreviousStatus != domain.StatusIssue || c.NewStatus != domain.StatusResolved {
		t.Errorf("change log wrong: %+v", c)
	}
	if c.Operator != "willy" {
		t.Errorf("expected operator recorded, got %q", c.Operator)
	}
}

func TestUpdateService_Apply_InvalidStatusRejectedBeforeStore(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	svc := NewUpdateService(repo, &stubChangeRepo{}, newStubGuard(), discardLogger)

	_, err := svc.Apply(context.Background(), checkInput("A1", "suitable", 1))
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	// No store call may have happened.
	stored, _ := repo.FindByID(context.Background(), "A1")
	if stored.Status != domain.StatusUnchecked || stored.CheckCount != 0 {
		t.Errorf("store must be untouched after validation failure: %+v", stored)
	}
}

func TestUpdateService_Apply_SiteNotFound(t *testing.T) {
	svc := NewUpdateService(&stubSiteRepo{}, &stubChangeRepo{}, newStubGuard(), discardLogger)

	_, err := svc.Apply(context.Background(), checkInput("ghost", "ok", 1))
	if !errors.Is(err, domain.ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}
}

// A failed store write must surface so the client can roll the marker back to
// the last committed status.
func TestUpdateService_Apply_StoreFailureSurfaces(t *testing.T) {
	repo := &stubSiteRepo{
		sites:    []*domain.Site{testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6)},
		applyErr: errors.New("write timeout"),
	}
	guard := newStubGuard()
	svc := NewUpdateService(repo, &stubChangeRepo{}, guard, discardLogger)

	_, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1))
	if err == nil {
		t.Fatal("expected error when store write fails")
	}

	stored, _ := repo.FindByID(context.Background(), "A1")
	if stored.Status != domain.StatusUnchecked {
		t.Errorf("store must keep last committed status, got %q", stored.Status)
	}
	if guard.commits != 0 {
		t.Error("sequence must not be committed after a failed write")
	}
}

// ---------------------------------------------------------------------------
// Last-write-wins tests
// ---------------------------------------------------------------------------

func TestUpdateService_Apply_SupersededCheckDropped(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	guard := newStubGuard()
	svc := NewUpdateService(repo, &stubChangeRepo{}, guard, discardLogger)

	// Newer request (seq 2) lands first.
	if _, err := svc.Apply(context.Background(), checkInput("A1", "issue", 2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The older request (seq 1) arrives late and must not overwrite.
	result, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied {
		t.Error("superseded check must report Applied=false")
	}
	if result.Status != "issue" {
		t.Errorf("superseded result must carry current status, got %q", result.Status)
	}

	stored, _ := repo.FindByID(context.Background(), "A1")
	if stored.Status != domain.StatusIssue {
		t.Errorf("newest request's outcome must govern, got %q", stored.Status)
	}
	if stored.CheckCount != 1 {
		t.Errorf("superseded check must not bump check_count, got %d", stored.CheckCount)
	}
}

func TestUpdateService_Apply_GuardFailureIsOpen(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	guard := newStubGuard()
	guard.checkErr = errors.New("redis down")
	svc := NewUpdateService(repo, &stubChangeRepo{}, guard, discardLogger)

	result, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1))
	if err != nil {
		t.Fatalf("guard failure must not block the check: %v", err)
	}
	if !result.Applied {
		t.Error("expected check applied when guard is unavailable")
	}
}

func TestUpdateService_Apply_UnsequencedCheckAlwaysApplies(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	guard := newStubGuard()
	guard.lastSeq["A1"] = 10
	svc := NewUpdateService(repo, &stubChangeRepo{}, guard, discardLogger)

	result, err := svc.Apply(context.Background(), checkInput("A1", "ok", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied {
		t.Error("checks without a sequence number bypass the guard")
	}
}

func TestUpdateService_Apply_ChangeLogFailureIsNonFatal(t *testing.T) {
	repo := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	changes := &stubChangeRepo{insertErr: errors.New("audit store down")}
	svc := NewUpdateService(repo, changes, newStubGuard(), discardLogger)

	result, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1))
	if err != nil {
		t.Fatalf("change log failure must not fail the check: %v", err)
	}
	if !result.Applied {
		t.Error("expected check applied")
	}
}

// Scenario from the field: A1 unchecked -> operator sets ok -> store write
// succeeds -> marker shows ok; same check against a failing store leaves the
// record at unchecked.
func TestUpdateService_Apply_OptimisticRoundTrip(t *testing.T) {
	ok := &stubSiteRepo{sites: []*domain.Site{
		testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6),
	}}
	svc := NewUpdateService(ok, &stubChangeRepo{}, newStubGuard(), discardLogger)
	res, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1))
	if err != nil || res.Status != "ok" {
		t.Fatalf("expected committed ok, got %v / %+v", err, res)
	}

	failing := &stubSiteRepo{
		sites:    []*domain.Site{testSite("A1", "North Pad", domain.StatusUnchecked, 24.7, 46.6)},
		applyErr: errors.New("network error"),
	}
	svc = NewUpdateService(failing, &stubChangeRepo{}, newStubGuard(), discardLogger)
	if _, err := svc.Apply(context.Background(), checkInput("A1", "ok", 1)); err == nil {
		t.Fatal("expected failure to surface for rollback")
	}
	stored, _ := failing.FindByID(context.Background(), "A1")
	if stored.Status != domain.StatusUnchecked {
		t.Errorf("record must still show unchecked, got %q", stored.Status)
	}
}
