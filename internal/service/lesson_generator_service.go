package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/timeutil"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

const (
	RangeTypeSemesterEnd     = "SEMESTER_END"
	RangeTypeAcademicYearEnd = "ACADEMIC_YEAR_END"
	RangeTypeCustom          = "CUSTOM"
)

type generatorLessonWriter interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lessons []models.Lesson) error
	CountOverlappingForClass(ctx context.Context, classID string, date time.Time, startTime, endTime string) (int, error)
}

type generatorCalendarReader interface {
	FindSemesterByID(ctx context.Context, id string) (*models.Semester, error)
	FindActiveSemester(ctx context.Context) (*models.Semester, error)
	ListHolidaysBetween(ctx context.Context, from, until time.Time) ([]models.Holiday, error)
}

type generatorClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// LessonGeneratorService expands a weekly schedule slot into concrete dated
// lessons over a resolved date range. All inserts for one run commit in a
// single transaction; a failed insert leaves nothing behind.
type LessonGeneratorService struct {
	lessons  generatorLessonWriter
	calendar generatorCalendarReader
	classes  generatorClassReader
	cfg      config.SchedulingConfig
	logger   *zap.Logger
	metrics  *MetricsService
	now      func() time.Time
}

// NewLessonGeneratorService instantiates LessonGeneratorService.
func NewLessonGeneratorService(lessons generatorLessonWriter, calendar generatorCalendarReader, classes generatorClassReader, cfg config.SchedulingConfig, logger *zap.Logger, metrics *MetricsService) *LessonGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonGeneratorService{
		lessons:  lessons,
		calendar: calendar,
		classes:  classes,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Generate expands the slot into lessons according to the options. Dates
// start at the later of the slot's effective-from date and today, and stop
// at the resolved range end.
func (s *LessonGeneratorService) Generate(ctx context.Context, slot *models.ScheduleSlot, opts dto.GenerationOptions) (*dto.GenerationSummary, error) {
	day, err := timeutil.ParseDay(slot.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot day of week")
	}
	window, err := timeutil.NewTimeRange(slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot time window")
	}

	class, err := s.classes.FindByID(ctx, slot.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	from, until, err := s.resolveRange(ctx, slot, opts)
	if err != nil {
		return nil, err
	}

	holidays := map[string]bool{}
	if opts.SkipHolidays {
		list, err := s.calendar.ListHolidaysBetween(ctx, from, until)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
		}
		for _, h := range list {
			holidays[timeutil.DateOnly(h.Date).Format("2006-01-02")] = true
		}
	}

	summary := &dto.GenerationSummary{}
	var pending []models.Lesson
	for _, date := range timeutil.DatesMatchingWeekday(from, until, day) {
		if holidays[date.Format("2006-01-02")] {
			summary.SkippedHolidays++
			continue
		}
		if opts.SkipConflicts {
			count, err := s.lessons.CountOverlappingForClass(ctx, slot.ClassID, date, window.Start.String(), window.End.String())
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check generation conflicts")
			}
			if count > 0 {
				summary.SkippedConflicts++
				continue
			}
		}
		pending = append(pending, models.Lesson{
			ClassID:       slot.ClassID,
			TeacherID:     class.TeacherID,
			Room:          class.Room,
			ScheduledDate: date,
			StartTime:     window.Start.String(),
			EndTime:       window.End.String(),
			Status:        models.LessonStatusScheduled,
		})
	}

	if len(pending) > 0 {
		tx, err := s.lessons.BeginTxx(ctx, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start generation transaction")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()
		if err = s.lessons.BulkCreateWithTx(ctx, tx, pending); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert generated lessons")
		}
		if err = tx.Commit(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit generated lessons")
		}
	}

	summary.TotalGenerated = len(pending)
	summary.Created = pending
	if s.metrics != nil {
		s.metrics.ObserveGeneration(summary.TotalGenerated, summary.SkippedConflicts, summary.SkippedHolidays)
	}
	s.logger.Info("generated lessons from slot",
		zap.String("slot_id", slot.ID),
		zap.String("class_id", slot.ClassID),
		zap.Int("generated", summary.TotalGenerated),
		zap.Int("skipped_conflicts", summary.SkippedConflicts),
		zap.Int("skipped_holidays", summary.SkippedHolidays))
	return summary, nil
}

// resolveRange turns the range type into concrete [from, until] dates.
func (s *LessonGeneratorService) resolveRange(ctx context.Context, slot *models.ScheduleSlot, opts dto.GenerationOptions) (time.Time, time.Time, error) {
	today := timeutil.DateOnly(s.now())
	from := today
	if effective := timeutil.DateOnly(slot.EffectiveFrom); effective.After(from) {
		from = effective
	}

	switch opts.RangeType {
	case RangeTypeCustom:
		if opts.CustomStart == "" || opts.CustomEnd == "" {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "custom range requires start and end dates")
		}
		start, err := time.Parse("2006-01-02", opts.CustomStart)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid custom start date")
		}
		end, err := time.Parse("2006-01-02", opts.CustomEnd)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid custom end date")
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "custom end date precedes start date")
		}
		maxWeeks := s.cfg.MaxCustomRangeWeeks
		if maxWeeks <= 0 {
			maxWeeks = 53
		}
		if end.Sub(start) > time.Duration(maxWeeks)*7*24*time.Hour {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("custom range exceeds %d weeks", maxWeeks))
		}
		if start.After(from) {
			from = timeutil.DateOnly(start)
		}
		return from, timeutil.DateOnly(end), nil

	case RangeTypeSemesterEnd, RangeTypeAcademicYearEnd:
		semester, err := s.resolveSemester(ctx, slot)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		until := semester.EndDate
		if opts.RangeType == RangeTypeAcademicYearEnd {
			until = semester.AcademicYearEnd
		}
		return from, timeutil.DateOnly(until), nil

	default:
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "unknown generation range type")
	}
}

// resolveSemester prefers the slot's bound semester and falls back to the
// active one.
func (s *LessonGeneratorService) resolveSemester(ctx context.Context, slot *models.ScheduleSlot) (*models.Semester, error) {
	if slot.SemesterID != nil && *slot.SemesterID != "" {
		semester, err := s.calendar.FindSemesterByID(ctx, *slot.SemesterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
		}
		return semester, nil
	}
	semester, err := s.calendar.FindActiveSemester(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active semester configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	return semester, nil
}
