package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/chatdiary/chatdiary-go/internal/model"
)

var testScores = model.EmotionScores{Joy: 50, Anger: 5, Sadness: 15, Anxiety: 10, Relief: 20}

func TestCreateWithEmotions_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	repo := NewEntryRepository(db)

	entryID, err := repo.CreateWithEmotions(context.Background(), user.ID, "2024-10-25", "You: hi\nAI: hello", "calm day", testScores)
	if err != nil {
		t.Fatalf("CreateWithEmotions() unexpected error: %v", err)
	}
	if entryID <= 0 {
		t.Fatalf("CreateWithEmotions() should return a positive id, got %d", entryID)
	}

	details, err := repo.GetDetails(context.Background(), entryID)
	if err != nil {
		t.Fatalf("GetDetails() unexpected error: %v", err)
	}
	if details.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", details.UserID, user.ID)
	}
	if details.EntryDate != "2024-10-25" {
		t.Errorf("EntryDate = %q", details.EntryDate)
	}
	if details.ChatLog != "You: hi\nAI: hello" {
		t.Errorf("ChatLog = %q", details.ChatLog)
	}
	if details.Summary != "calm day" {
		t.Errorf("Summary = %q", details.Summary)
	}
	if details.Emotions != testScores {
		t.Errorf("Emotions = %+v, want %+v", details.Emotions, testScores)
	}
}

func TestCreateWithEmotions_Atomic(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	repo := NewEntryRepository(db)

	// Joy 150 violates the CHECK constraint, so the emotions insert fails
	// after the entry insert succeeded inside the transaction.
	bad := model.EmotionScores{Joy: 150, Anger: 5, Sadness: 15, Anxiety: 10, Relief: 20}
	if _, err := repo.CreateWithEmotions(context.Background(), user.ID, "2024-10-25", "log", "summary", bad); err == nil {
		t.Fatal("CreateWithEmotions() should fail for out-of-range score")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries WHERE user_id = ?", user.ID).Scan(&count); err != nil {
		t.Fatalf("counting entries: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no entry rows after rollback, got %d", count)
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	repo := NewEntryRepository(db)

	for _, date := range []string{"2024-10-25", "2024-12-27", "2024-11-26"} {
		if _, err := repo.CreateWithEmotions(context.Background(), user.ID, date, "log", "summary", testScores); err != nil {
			t.Fatalf("CreateWithEmotions(%s): %v", date, err)
		}
	}

	entries, err := repo.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []string{"2024-12-27", "2024-11-26", "2024-10-25"}
	for i, date := range want {
		if entries[i].EntryDate != date {
			t.Errorf("entries[%d].EntryDate = %q, want %q", i, entries[i].EntryDate, date)
		}
	}
}

func TestEmotionSeries_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	repo := NewEntryRepository(db)

	scores := []model.EmotionScores{
		{Joy: 80, Relief: 10},
		{Joy: 30, Sadness: 25},
	}
	if _, err := repo.CreateWithEmotions(context.Background(), user.ID, "2024-11-26", "log", "summary", scores[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateWithEmotions(context.Background(), user.ID, "2024-10-25", "log", "summary", scores[1]); err != nil {
		t.Fatal(err)
	}

	points, err := repo.EmotionSeries(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("EmotionSeries() unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}

	if points[0].EntryDate != "2024-10-25" || points[0].Joy != 30 || points[0].Sadness != 25 {
		t.Errorf("points[0] = %+v", points[0])
	}
	if points[1].EntryDate != "2024-11-26" || points[1].Joy != 80 || points[1].Relief != 10 {
		t.Errorf("points[1] = %+v", points[1])
	}
}

func TestEntriesArePerUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	repo := NewEntryRepository(db)

	if _, err := repo.CreateWithEmotions(context.Background(), alice.ID, "2024-10-25", "log", "summary", testScores); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.ListByUser(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("ListByUser() unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("bob should have no entries, got %d", len(entries))
	}

	points, err := repo.EmotionSeries(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("EmotionSeries() unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("bob should have no emotion points, got %d", len(points))
	}
}

func TestGetDetails_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	if _, err := repo.GetDetails(context.Background(), 9999); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestGetDetails_MissingEmotionRow(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	repo := NewEntryRepository(db)

	// An orphaned entry should never exist given the transactional create,
	// but a missing join row must still read as not found.
	result, err := db.Exec(
		"INSERT INTO entries (user_id, entry_date, chat_log, summary) VALUES (?, ?, ?, ?)",
		user.ID, "2024-10-25", "log", "summary",
	)
	if err != nil {
		t.Fatalf("inserting orphan entry: %v", err)
	}
	orphanID, _ := result.LastInsertId()

	if _, err := repo.GetDetails(context.Background(), orphanID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound for orphan entry, got %v", err)
	}
}
