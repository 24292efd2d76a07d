package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chatdiary/chatdiary-go/internal/ai"
	"github.com/chatdiary/chatdiary-go/internal/model"
	"github.com/chatdiary/chatdiary-go/internal/repository"
)

var (
	ErrTranscriptRequired = errors.New("at least one conversation turn is required")
	ErrSummaryRequired    = errors.New("summary is required")
	ErrInvalidDate        = errors.New("date must be in yyyy-mm-dd format")
	ErrEmotionOutOfRange  = errors.New("emotion scores must be integers in [0,100]")
	ErrEntryNotFound      = errors.New("diary entry not found")
	ErrStorage            = errors.New("storage operation failed")
)

const entryDateLayout = "2006-01-02"

// DiaryService handles diary conversation, analysis, and persistence logic.
type DiaryService struct {
	entries *repository.EntryRepository
	client  *ai.Client
}

// NewDiaryService creates a new DiaryService.
func NewDiaryService(entries *repository.EntryRepository, client *ai.Client) *DiaryService {
	return &DiaryService{
		entries: entries,
		client:  client,
	}
}

// Chat returns the assistant's reply to the transcript so far. The client owns
// the transcript; this call is a pure function of the turn history.
func (s *DiaryService) Chat(ctx context.Context, turns []model.Turn) (model.ChatResponse, error) {
	if len(turns) == 0 {
		return model.ChatResponse{}, ErrTranscriptRequired
	}

	reply, err := s.client.Converse(ctx, turns)
	if err != nil {
		return model.ChatResponse{}, err
	}

	return model.ChatResponse{Reply: reply}, nil
}

// Analyze summarizes the finished conversation and scores its emotional
// content. The result is fully validated before it is returned; a partially
// valid model response is an error, never a partial result.
func (s *DiaryService) Analyze(ctx context.Context, turns []model.Turn) (model.AnalyzeResponse, error) {
	if len(turns) == 0 {
		return model.AnalyzeResponse{}, ErrTranscriptRequired
	}

	result, err := s.client.Analyze(ctx, FormatTranscript(turns))
	if err != nil {
		return model.AnalyzeResponse{}, err
	}

	return model.AnalyzeResponse{
		Summary:  result.Summary,
		Emotions: result.Emotions,
	}, nil
}

// SaveEntry persists one analyzed diary session: the entry row and its
// emotion scores are written in a single transaction. Scores are re-validated
// here so nothing out of range reaches storage regardless of where the
// caller got them.
func (s *DiaryService) SaveEntry(ctx context.Context, userID int64, req model.SaveEntryRequest) (model.SaveEntryResponse, error) {
	if len(req.Turns) == 0 {
		return model.SaveEntryResponse{}, ErrTranscriptRequired
	}
	if strings.TrimSpace(req.Summary) == "" {
		return model.SaveEntryResponse{}, ErrSummaryRequired
	}
	if err := validateScores(req.Emotions); err != nil {
		return model.SaveEntryResponse{}, err
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format(entryDateLayout)
	} else if _, err := time.Parse(entryDateLayout, date); err != nil {
		return model.SaveEntryResponse{}, ErrInvalidDate
	}

	entryID, err := s.entries.CreateWithEmotions(ctx, userID, date, FormatTranscript(req.Turns), req.Summary, req.Emotions)
	if err != nil {
		slog.Error("saving diary entry failed", "user_id", userID, "error", err)
		return model.SaveEntryResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return model.SaveEntryResponse{EntryID: entryID}, nil
}

// ListEntries returns the user's entry list, newest first.
func (s *DiaryService) ListEntries(ctx context.Context, userID int64) ([]model.EntrySummary, error) {
	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if entries == nil {
		entries = []model.EntrySummary{}
	}
	return entries, nil
}

// GetEntry returns a full entry with its emotion scores. Another user's entry
// reads as not found.
func (s *DiaryService) GetEntry(ctx context.Context, userID, entryID int64) (*model.EntryDetails, error) {
	details, err := s.entries.GetDetails(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if details.UserID != userID {
		return nil, ErrEntryNotFound
	}
	return details, nil
}

// EmotionSeries returns the user's emotion scores ordered by date ascending,
// ready for charting.
func (s *DiaryService) EmotionSeries(ctx context.Context, userID int64) ([]model.EmotionPoint, error) {
	points, err := s.entries.EmotionSeries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if points == nil {
		points = []model.EmotionPoint{}
	}
	return points, nil
}

// FormatTranscript renders a turn history as the plain-text chat log stored
// with each entry and embedded in the analysis prompt.
func FormatTranscript(turns []model.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		speaker := "You"
		if turn.Role == model.RoleAssistant {
			speaker = "AI"
		}
		lines = append(lines, speaker+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

func validateScores(scores model.EmotionScores) error {
	for _, v := range []int{scores.Joy, scores.Anger, scores.Sadness, scores.Anxiety, scores.Relief} {
		if v < 0 || v > 100 {
			return ErrEmotionOutOfRange
		}
	}
	return nil
}
