package noteledger_test

import (
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/noteledger"
	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/testutil"
)

func testLedger(t *testing.T) (*noteledger.Ledger, *store.DB, *models.Lead) {
	t.Helper()
	db := testutil.TestDB(t)
	testutil.SeedStages(t, db, "Contacted")
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")
	return noteledger.New(db), db, lead
}

func TestAdd_EmptyContentRejected(t *testing.T) {
	l, _, lead := testLedger(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := l.Add(lead.ID, content, ""); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Add(%q): err = %v, want ErrValidation", content, err)
		}
	}

	notes, err := l.List(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 0 {
		t.Errorf("rejected adds left %d notes behind", len(notes))
	}
}

func TestAdd_UnknownLead(t *testing.T) {
	l, _, _ := testLedger(t)
	if _, err := l.Add("ghost", "hello", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	l, _, lead := testLedger(t)

	for _, content := range []string{"first call", "sent brochure", "viewing booked"} {
		if _, err := l.Add(lead.ID, content, ""); err != nil {
			t.Fatal(err)
		}
	}

	notes, err := l.List(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 3 {
		t.Fatalf("notes = %d, want 3", len(notes))
	}
	want := []string{"viewing booked", "sent brochure", "first call"}
	for i, w := range want {
		if notes[i].Content != w {
			t.Errorf("notes[%d] = %q, want %q", i, notes[i].Content, w)
		}
	}
}

func TestEdit_ReplacesContentOnly(t *testing.T) {
	l, _, lead := testLedger(t)

	first, err := l.Add(lead.ID, "first call", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Add(lead.ID, "sent brochure", "https://rec.example/1")
	if err != nil {
		t.Fatal(err)
	}

	got, err := l.Edit(second.ID, "sent brochure and floor plans", "")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.Content != "sent brochure and floor plans" {
		t.Errorf("content = %q", got.Content)
	}
	if got.RecordingURL != "" {
		t.Errorf("recording URL not replaced: %q", got.RecordingURL)
	}

	notes, err := l.List(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	// The sibling is untouched and ordering by creation time is unchanged.
	if notes[1].ID != first.ID || notes[1].Content != "first call" {
		t.Errorf("sibling changed: %+v", notes[1])
	}
	if notes[0].ID != second.ID {
		t.Error("edit reordered the list")
	}
}

func TestEdit_EmptyContentRejected(t *testing.T) {
	l, _, lead := testLedger(t)
	n, err := l.Add(lead.ID, "first call", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Edit(n.ID, "  ", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	notes, _ := l.List(lead.ID)
	if notes[0].Content != "first call" {
		t.Errorf("rejected edit changed content: %q", notes[0].Content)
	}
}

func TestDelete_LeavesSiblings(t *testing.T) {
	l, _, lead := testLedger(t)

	var ids []string
	for _, content := range []string{"a", "b", "c"} {
		n, err := l.Add(lead.ID, content, "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}

	if err := l.Delete(ids[1]); err != nil {
		t.Fatal(err)
	}

	notes, err := l.List(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}
	if notes[0].Content != "c" || notes[1].Content != "a" {
		t.Errorf("siblings disturbed: %q, %q", notes[0].Content, notes[1].Content)
	}
}

func TestDelete_Missing(t *testing.T) {
	l, _, _ := testLedger(t)
	if err := l.Delete("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	l, _, lead := testLedger(t)
	notes, err := l.List(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if notes == nil {
		t.Error("List returned nil slice")
	}
}
