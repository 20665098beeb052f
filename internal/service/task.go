package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"refusal-tracker/internal/dailytask"
	"refusal-tracker/internal/model"
	"refusal-tracker/internal/repository"
)

// TaskStatus is a task annotated with the user's progress for today.
type TaskStatus struct {
	dailytask.Task
	Progress decimal.Decimal `json:"progress"`
	Max      decimal.Decimal `json:"max"`
	// Ready means the condition is met; Claimed means the points were taken.
	Ready   bool `json:"ready"`
	Claimed bool `json:"claimed"`
}

// TaskBoard lists today's tasks.
type TaskBoard struct {
	Day     string       `json:"day"`
	Weekday string       `json:"weekday"`
	Tasks   []TaskStatus `json:"tasks"`
}

// TaskResult is the outcome of claiming a task.
type TaskResult struct {
	Code         string          `json:"code"`
	PointsEarned decimal.Decimal `json:"pointsEarned"`
	TotalPoints  decimal.Decimal `json:"totalPoints"`
}

// TaskService serves the weekday task board.
type TaskService struct {
	tasks    TaskStore
	entries  EntryStore
	users    UserStore
	calendar Calendar
}

// NewTaskService creates a new TaskService instance.
func NewTaskService(tasks TaskStore, entries EntryStore, users UserStore, calendar Calendar) *TaskService {
	return &TaskService{
		tasks:    tasks,
		entries:  entries,
		users:    users,
		calendar: calendar,
	}
}

// List returns today's tasks with progress.
func (s *TaskService) List(ctx context.Context, userID int64) (*TaskBoard, error) {
	now := s.calendar.now().In(s.calendar.loc())
	stats, err := s.stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	day := model.DayKey(now, s.calendar.loc())
	done, err := s.tasks.ListCompleted(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	claimed := make(map[string]bool, len(done))
	for _, c := range done {
		claimed[c.TaskCode] = true
	}

	board := &TaskBoard{Day: day, Weekday: now.Weekday().String()}
	for _, t := range dailytask.ForWeekday(now.Weekday()) {
		board.Tasks = append(board.Tasks, TaskStatus{
			Task:     t,
			Progress: t.Progress(stats),
			Max:      t.Max(),
			Ready:    t.Completed(stats),
			Claimed:  claimed[t.Code],
		})
	}
	return board, nil
}

// Complete claims a task's points for today.
func (s *TaskService) Complete(ctx context.Context, userID int64, code string) (*TaskResult, error) {
	task, ok := dailytask.Get(code)
	if !ok {
		return nil, ErrTaskNotFound
	}
	now := s.calendar.now().In(s.calendar.loc())
	if !dailytask.Offered(code, now.Weekday()) {
		return nil, ErrTaskNotFound
	}

	stats, err := s.stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !task.Completed(stats) {
		return nil, ErrTaskNotCompleted
	}

	earned := decimal.NewFromInt(task.Points)
	total, err := s.tasks.CompleteWithPoints(ctx, &model.TaskCompletion{
		UserID:       userID,
		TaskCode:     task.Code,
		Day:          model.DayKey(now, s.calendar.loc()),
		PointsEarned: earned,
		CompletedAt:  now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return nil, ErrTaskAlreadyCompleted
		}
		return nil, err
	}

	log.Info().Int64("user_id", userID).Str("code", task.Code).Str("points", earned.String()).Msg("Daily task completed")
	return &TaskResult{Code: task.Code, PointsEarned: earned, TotalPoints: total}, nil
}

func (s *TaskService) stats(ctx context.Context, userID int64) (dailytask.Stats, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return dailytask.Stats{}, err
	}

	entries, err := s.entries.ListByUser(ctx, userID, model.DateRange{})
	if err != nil {
		return dailytask.Stats{}, err
	}
	today := s.calendar.today()
	var todays []model.Entry
	for _, e := range entries {
		if today.Contains(e.CreatedAt) {
			todays = append(todays, e)
		}
	}

	referrals, err := s.users.CountReferrals(ctx, userID)
	if err != nil {
		return dailytask.Stats{}, err
	}
	return dailytask.NewStats(todays, streakOf(entries, s.calendar.loc()), referrals), nil
}
