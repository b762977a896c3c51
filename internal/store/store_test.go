package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func TestSystemStagesSeeded(t *testing.T) {
	db := testutil.TestDB(t)

	for _, name := range []string{models.StageClosed, models.StageDead} {
		s, err := db.GetStageByName(name)
		if err != nil {
			t.Fatalf("GetStageByName(%s): %v", name, err)
		}
		if !s.IsSystem {
			t.Errorf("%s should be a system stage", name)
		}
	}
}

func TestStageUpsertAndOrdering(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedStages(t, db, "Contacted", "FollowUp")

	// Same order value: ties break by name.
	if err := db.UpsertStage(models.PipelineStage{Name: "Offer", DisplayName: "Offer", Order: 1, IsActive: true}); err != nil {
		t.Fatal(err)
	}

	stages, err := db.ListStages()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range stages {
		if !s.IsSystem {
			names = append(names, s.Name)
		}
	}
	want := []string{"Contacted", "Offer", "FollowUp"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	// Upsert by name updates in place.
	if err := db.UpsertStage(models.PipelineStage{Name: "Offer", DisplayName: "Final Offer", Order: 9, IsActive: false}); err != nil {
		t.Fatal(err)
	}
	s, err := db.GetStageByName("Offer")
	if err != nil {
		t.Fatal(err)
	}
	if s.DisplayName != "Final Offer" || s.Order != 9 || s.IsActive {
		t.Errorf("upsert did not update: %+v", s)
	}
}

func TestLeadRoundTrip(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	got, err := db.GetLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FirstName != "Ada" || got.Phone != "555-0100" || got.Stage != "Contacted" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestUpdateLeadStage_RefreshesUpdatedAt(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	ts := time.Now().Add(time.Hour)
	if err := db.UpdateLeadStage(lead.ID, "Offer", ts); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stage != "Offer" {
		t.Errorf("stage = %q, want Offer", got.Stage)
	}
	if !got.UpdatedAt.Equal(ts) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, ts)
	}
}

func TestUpdateLeadStage_Missing(t *testing.T) {
	db := testutil.TestDB(t)
	err := db.UpdateLeadStage("nope", "Offer", time.Now())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLeadStageNames_DistinctIncludingOrphans(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedLead(t, db, "A", "One", "1", "Contacted")
	testutil.SeedLead(t, db, "B", "Two", "2", "Contacted")
	testutil.SeedLead(t, db, "C", "Three", "3", "LegacyStage")

	names, err := db.LeadStageNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("names = %v, want 2 distinct", names)
	}
}

func TestNotesOrdering_NewestFirst(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	base := time.Now()
	for i, content := range []string{"first", "second", "third"} {
		n := &models.ClientNote{LeadID: lead.ID, Content: content, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := db.CreateNote(n); err != nil {
			t.Fatal(err)
		}
	}

	notes, err := db.ListNotesByLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 3 {
		t.Fatalf("len = %d, want 3", len(notes))
	}
	if notes[0].Content != "third" || notes[2].Content != "first" {
		t.Errorf("ordering wrong: %q, %q, %q", notes[0].Content, notes[1].Content, notes[2].Content)
	}
}

func TestNotesOrdering_TimestampTieBreaksByInsertion(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	ts := time.Now()
	for _, content := range []string{"older insert", "newer insert"} {
		n := &models.ClientNote{LeadID: lead.ID, Content: content, CreatedAt: ts}
		if err := db.CreateNote(n); err != nil {
			t.Fatal(err)
		}
	}

	notes, err := db.ListNotesByLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if notes[0].Content != "newer insert" {
		t.Errorf("tie should break by insertion order, got %q first", notes[0].Content)
	}
}

func TestDeleteLead_CascadesNotesAndSchedules(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	if err := db.CreateNote(&models.ClientNote{LeadID: lead.ID, Content: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateSchedule(&models.Schedule{
		LeadID: lead.ID, ScheduledDate: time.Now(), Type: models.ScheduleTypeCall, Status: models.StatusScheduled,
	}); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteLead(lead.ID); err != nil {
		t.Fatal(err)
	}
	notes, err := db.ListNotesByLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 0 {
		t.Errorf("notes should cascade, got %d", len(notes))
	}
	schedules, err := db.ListSchedulesByLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(schedules) != 0 {
		t.Errorf("schedules should cascade, got %d", len(schedules))
	}
}

func TestScheduleRoundTrip_ExactDate(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	date := time.Date(2026, 3, 14, 15, 9, 26, 0, time.FixedZone("UTC+5", 5*3600))
	s := &models.Schedule{
		LeadID:        lead.ID,
		ScheduledDate: date,
		Type:          models.ScheduleTypeAppointment,
		Status:        models.StatusScheduled,
	}
	if err := db.CreateSchedule(s); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetSchedule(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.ScheduledDate.Equal(date) {
		t.Errorf("date drift: stored %v, got %v", date, got.ScheduledDate)
	}
	if got.Status != models.StatusScheduled {
		t.Errorf("status = %q, want SCHEDULED", got.Status)
	}
}

func TestListOpenSchedules_ExcludesTerminal(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	for _, status := range []string{
		models.StatusScheduled, models.StatusCompleted, models.StatusCancelled, models.StatusRescheduled,
	} {
		s := &models.Schedule{LeadID: lead.ID, ScheduledDate: time.Now(), Type: models.ScheduleTypeCall, Status: status}
		if err := db.CreateSchedule(s); err != nil {
			t.Fatal(err)
		}
	}

	open, err := db.ListOpenSchedules()
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 2 {
		t.Fatalf("open = %d, want 2", len(open))
	}
	for _, s := range open {
		if s.Status == models.StatusCompleted || s.Status == models.StatusCancelled {
			t.Errorf("terminal status %q leaked into open list", s.Status)
		}
	}
}

func TestListSchedulesByLead_MixedPrecisionDatesSortChronologically(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	// Whole-second, half-second, and microsecond dates within the same
	// second. As text these only sort chronologically if the stored width
	// is fixed; trimmed fractions would put the whole-second value last.
	dates := []time.Time{
		time.Date(2026, 9, 1, 10, 0, 0, 500000000, time.UTC),
		time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 10, 0, 0, 120000, time.UTC),
	}
	for _, d := range dates {
		s := &models.Schedule{LeadID: lead.ID, ScheduledDate: d, Type: models.ScheduleTypeCall, Status: models.StatusScheduled}
		if err := db.CreateSchedule(s); err != nil {
			t.Fatal(err)
		}
	}

	items, err := db.ListSchedulesByLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].ScheduledDate.Before(items[i-1].ScheduledDate) {
			t.Errorf("ascending order broken: item %d is %v, after %v",
				i, items[i].ScheduledDate, items[i-1].ScheduledDate)
		}
	}
	if !items[0].ScheduledDate.Equal(dates[1]) {
		t.Errorf("first item is %v, want %v", items[0].ScheduledDate, dates[1])
	}

	open, err := db.ListOpenSchedules()
	if err != nil {
		t.Fatal(err)
	}
	if !open[0].ScheduledDate.Equal(dates[1]) {
		t.Errorf("open list first item is %v, want %v", open[0].ScheduledDate, dates[1])
	}
}

func TestNotesOrdering_MixedPrecisionTimestamps(t *testing.T) {
	db := testutil.TestDB(t)
	lead := testutil.SeedLead(t, db, "Ada", "Lovelace", "555-0100", "Contacted")

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	// The oldest lands exactly on a whole second, the newer ones carry
	// sub-second fractions within the same second.
	stamps := []struct {
		content string
		at      time.Time
	}{
		{"oldest", base},
		{"middle", base.Add(250 * time.Millisecond)},
		{"newest", base.Add(500 * time.Millisecond)},
	}
	for _, s := range stamps {
		n := &models.ClientNote{LeadID: lead.ID, Content: s.content, CreatedAt: s.at}
		if err := db.CreateNote(n); err != nil {
			t.Fatal(err)
		}
	}

	notes, err := db.ListNotesByLead(lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"newest", "middle", "oldest"}
	for i, w := range want {
		if notes[i].Content != w {
			t.Errorf("notes[%d] = %q, want %q", i, notes[i].Content, w)
		}
	}
}

func TestListLeads_MixedPrecisionTimestamps(t *testing.T) {
	db := testutil.TestDB(t)

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	stamps := []struct {
		first string
		at    time.Time
	}{
		{"First", base},
		{"Second", base.Add(500 * time.Millisecond)},
	}
	for _, s := range stamps {
		l := &models.Lead{FirstName: s.first, Stage: "Contacted", CreatedAt: s.at}
		if err := db.CreateLead(l); err != nil {
			t.Fatal(err)
		}
	}

	leads, err := db.ListLeads()
	if err != nil {
		t.Fatal(err)
	}
	if leads[0].FirstName != "First" || leads[1].FirstName != "Second" {
		t.Errorf("insertion-time order broken: %q, %q", leads[0].FirstName, leads[1].FirstName)
	}
}

func TestGetMissingRecordsReturnNotFound(t *testing.T) {
	db := testutil.TestDB(t)

	if _, err := db.GetLead("x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetLead err = %v", err)
	}
	if _, err := db.GetNote("x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetNote err = %v", err)
	}
	if _, err := db.GetSchedule("x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetSchedule err = %v", err)
	}
	if _, err := db.GetStageByName("x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetStageByName err = %v", err)
	}
}
