package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"
	"tangle_backend/internal/domain/repository"
	"tangle_backend/internal/platform/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	dateLayout       = "2006-01-02"
	reportEmailBody  = "Please find your report attached."
	weeklyReportDays = 7
)

type DocumentWriter interface {
	WriteLines(path string, lines []string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body, attachmentPath string) error
}

type ReportService struct {
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	writer      DocumentWriter
	mailer      Mailer
	metrics     *metrics.Metrics
	reportDir   string
	loc         *time.Location
	now         func() time.Time
}

func NewReportService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	writer DocumentWriter,
	mailer Mailer,
	m *metrics.Metrics,
	reportDir string,
) *ReportService {
	return &ReportService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		writer:      writer,
		mailer:      mailer,
		metrics:     m,
		reportDir:   reportDir,
		loc:         time.Local,
		now:         time.Now,
	}
}

type GenerateReportRequest struct {
	Username  string `json:"username" validate:"required,safe_name"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	SendEmail bool   `json:"send_email"`
}

type WeeklyReportRequest struct {
	Username  string `json:"username" validate:"required,safe_name"`
	SendEmail bool   `json:"send_email"`
}

type ReportResponse struct {
	Msg     string `json:"msg"`
	Path    string `json:"path"`
	Emailed bool   `json:"emailed"`
}

// FormatAttemptLine is the per-attempt line of a report.
func FormatAttemptLine(a model.Attempt) string {
	return fmt.Sprintf("%s - Level %d - Attempt %d - %d pts", a.Category, a.Level, a.Attempt, a.Points)
}

// BuildReportLines returns the title, one line per attempt and the total line.
func BuildReportLines(title string, attempts []model.Attempt) []string {
	lines := make([]string, 0, len(attempts)+2)
	lines = append(lines, title)
	total := 0
	for _, a := range attempts {
		lines = append(lines, FormatAttemptLine(a))
		total += a.Points
	}
	return append(lines, fmt.Sprintf("Total Points: %d", total))
}

// Generate writes the report for attempts from start 00:00:00 through the whole
// of end, both dates in the server's location, and returns the file path.
func (s *ReportService) Generate(ctx context.Context, username, startDate, endDate string) (string, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, s.loc)
	if err != nil {
		return "", fmt.Errorf("%w: start_date must be YYYY-MM-DD", common.ErrValidation)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, s.loc)
	if err != nil {
		return "", fmt.Errorf("%w: end_date must be YYYY-MM-DD", common.ErrValidation)
	}
	if end.Before(start) {
		return "", fmt.Errorf("%w: start_date is after end_date", common.ErrValidation)
	}

	attempts, err := s.attemptRepo.ListInRange(ctx, username, start, end.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("%s Report (%s to %s)", username, startDate, endDate)
	filename := strings.ReplaceAll(fmt.Sprintf("%s_%s_%s.pdf", username, startDate, endDate), ":", "-")
	path := filepath.Join(s.reportDir, filename)
	if err := s.writer.WriteLines(path, BuildReportLines(title, attempts)); err != nil {
		return "", common.StorageErrorf("write report", err)
	}

	s.metrics.ObserveReport("range")
	return path, nil
}

// GenerateWeekly writes the report for the trailing seven days ending now.
func (s *ReportService) GenerateWeekly(ctx context.Context, username string) (string, error) {
	now := s.now()
	attempts, err := s.attemptRepo.ListInRange(ctx, username, now.AddDate(0, 0, -weeklyReportDays), now)
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("%s - Weekly Report", username)
	filename := strings.ReplaceAll(fmt.Sprintf("%s_week_%s.pdf", username, now.Format("20060102")), ":", "-")
	path := filepath.Join(s.reportDir, filename)
	if err := s.writer.WriteLines(path, BuildReportLines(title, attempts)); err != nil {
		return "", common.StorageErrorf("write weekly report", err)
	}

	s.metrics.ObserveReport("weekly")
	return path, nil
}

// GenerateAndDispatch generates the report and, when asked, mails it to the
// user's stored address. The recipient is looked up before anything is
// written, so an unknown user fails with ErrUserNotFound.
func (s *ReportService) GenerateAndDispatch(ctx context.Context, req GenerateReportRequest) (*ReportResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var recipient *model.User
	if req.SendEmail {
		u, err := s.userRepo.FindByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		recipient = u
	}

	path, err := s.Generate(ctx, req.Username, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if recipient != nil {
		subject := fmt.Sprintf("Your Puzzle Report (%s to %s)", req.StartDate, req.EndDate)
		if err := s.send(ctx, recipient.Email, subject, path); err != nil {
			return nil, err
		}
	}
	return &ReportResponse{Msg: "Report generated successfully", Path: path, Emailed: req.SendEmail}, nil
}

func (s *ReportService) GenerateWeeklyAndDispatch(ctx context.Context, req WeeklyReportRequest) (*ReportResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var recipient *model.User
	if req.SendEmail {
		u, err := s.userRepo.FindByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		recipient = u
	}

	path, err := s.GenerateWeekly(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if recipient != nil {
		if err := s.send(ctx, recipient.Email, WeeklySubject(s.now()), path); err != nil {
			return nil, err
		}
	}
	return &ReportResponse{Msg: "Report generated successfully", Path: path, Emailed: req.SendEmail}, nil
}

// SendWeekly is the worker entry point: generate and mail one user's weekly
// report.
func (s *ReportService) SendWeekly(ctx context.Context, username string) error {
	_, err := s.GenerateWeeklyAndDispatch(ctx, WeeklyReportRequest{Username: username, SendEmail: true})
	return err
}

func WeeklySubject(now time.Time) string {
	return fmt.Sprintf("Your Weekly Puzzle Report (%s)", now.Format(dateLayout))
}

func (s *ReportService) send(ctx context.Context, to, subject, path string) error {
	err := s.mailer.Send(ctx, to, subject, reportEmailBody, path)
	s.metrics.ObserveEmail(err)
	if err != nil {
		log.WithFields(log.Fields{"to": to, "path": path, "error": err.Error()}).Error("report email failed")
		return fmt.Errorf("failed to email report: %w", err)
	}
	return nil
}
