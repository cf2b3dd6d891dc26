package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	svc      *ReportService
	attempts *memAttemptRepo
	users    *memUserRepo
	writer   *recordingWriter
	mailer   *recordingMailer
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		attempts: &memAttemptRepo{},
		users:    newMemUserRepo(),
		writer:   newRecordingWriter(),
		mailer:   &recordingMailer{},
	}
	f.svc = NewReportService(f.attempts, f.users, f.writer, f.mailer, nil, "reports")
	f.svc.loc = time.UTC
	f.svc.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *reportFixture) addAttempt(t *testing.T, a model.Attempt) {
	t.Helper()
	require.NoError(t, f.attempts.Create(context.Background(), &a))
}

func TestReportService_Generate(t *testing.T) {
	f := newReportFixture(t)
	day := func(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }

	f.addAttempt(t, model.Attempt{Username: "alice", Category: "tangle", Level: 1, Attempt: 1, Points: 5, Timestamp: day(1, 9)})
	f.addAttempt(t, model.Attempt{Username: "alice", Category: "tangle", Level: 2, Attempt: 1, Points: 10, Timestamp: day(7, 23)})
	f.addAttempt(t, model.Attempt{Username: "alice", Category: "tangle", Level: 3, Attempt: 1, Points: 99, Timestamp: day(8, 0)})
	f.addAttempt(t, model.Attempt{Username: "bob", Category: "tangle", Level: 1, Attempt: 1, Points: 50, Timestamp: day(2, 9)})

	path, err := f.svc.Generate(context.Background(), "alice", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("reports", "alice_2024-01-01_2024-01-07.pdf"), path)
	assert.Equal(t, []string{
		"alice Report (2024-01-01 to 2024-01-07)",
		"tangle - Level 1 - Attempt 1 - 5 pts",
		"tangle - Level 2 - Attempt 1 - 10 pts",
		"Total Points: 15",
	}, f.writer.docs[path])
}

func TestReportService_GenerateEmpty(t *testing.T) {
	f := newReportFixture(t)

	path, err := f.svc.Generate(context.Background(), "alice", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"alice Report (2024-01-01 to 2024-01-07)",
		"Total Points: 0",
	}, f.writer.docs[path])
}

func TestReportService_GenerateInvalidRange(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, "alice", "2024-01-07", "2024-01-01")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Generate(ctx, "alice", "01/01/2024", "2024-01-07")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestReportService_GenerateWriteFailure(t *testing.T) {
	f := newReportFixture(t)
	f.writer.err = errors.New("disk full")

	_, err := f.svc.Generate(context.Background(), "alice", "2024-01-01", "2024-01-07")
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestReportService_GenerateWeekly(t *testing.T) {
	f := newReportFixture(t)
	f.addAttempt(t, model.Attempt{Username: "alice", Category: "tangle", Level: 4, Attempt: 2, Points: 8,
		Timestamp: time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)})
	f.addAttempt(t, model.Attempt{Username: "alice", Category: "tangle", Level: 1, Attempt: 1, Points: 30,
		Timestamp: time.Date(2023, 12, 30, 8, 0, 0, 0, time.UTC)})

	path, err := f.svc.GenerateWeekly(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("reports", "alice_week_20240110.pdf"), path)
	assert.Equal(t, []string{
		"alice - Weekly Report",
		"tangle - Level 4 - Attempt 2 - 8 pts",
		"Total Points: 8",
	}, f.writer.docs[path])
}

func TestReportService_GenerateAndDispatch(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &model.User{Username: "alice", Email: "alice@gmail.com"}))

	resp, err := f.svc.GenerateAndDispatch(ctx, GenerateReportRequest{
		Username: "alice", StartDate: "2024-01-01", EndDate: "2024-01-07", SendEmail: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Report generated successfully", resp.Msg)
	assert.True(t, resp.Emailed)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, sentMail{
		To:         "alice@gmail.com",
		Subject:    "Your Puzzle Report (2024-01-01 to 2024-01-07)",
		Body:       "Please find your report attached.",
		Attachment: resp.Path,
	}, f.mailer.sent[0])
}

func TestReportService_ColonUsernameEndToEnd(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	req := validRegistration("team:alpha")
	req.Email = "team.alpha@gmail.com"
	_, err := NewAuthService(f.users).Register(ctx, req)
	require.NoError(t, err)
	f.addAttempt(t, model.Attempt{Username: "team:alpha", Category: "tangle", Level: 1, Attempt: 1, Points: 7,
		Timestamp: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)})

	resp, err := f.svc.GenerateAndDispatch(ctx, GenerateReportRequest{
		Username: "team:alpha", StartDate: "2024-01-01", EndDate: "2024-01-07", SendEmail: true,
	})
	require.NoError(t, err)

	want := filepath.Join("reports", "team-alpha_2024-01-01_2024-01-07.pdf")
	assert.Equal(t, want, resp.Path)
	assert.Equal(t, []string{
		"team:alpha Report (2024-01-01 to 2024-01-07)",
		"tangle - Level 1 - Attempt 1 - 7 pts",
		"Total Points: 7",
	}, f.writer.docs[want])
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "team.alpha@gmail.com", f.mailer.sent[0].To)
}

func TestReportService_GenerateAndDispatch_UnknownUser(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.GenerateAndDispatch(context.Background(), GenerateReportRequest{
		Username: "ghost", StartDate: "2024-01-01", EndDate: "2024-01-07", SendEmail: true,
	})
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Empty(t, f.writer.docs)
	assert.Empty(t, f.mailer.sent)
}

func TestReportService_GenerateAndDispatch_NoEmail(t *testing.T) {
	f := newReportFixture(t)

	resp, err := f.svc.GenerateAndDispatch(context.Background(), GenerateReportRequest{
		Username: "ghost", StartDate: "2024-01-01", EndDate: "2024-01-07",
	})
	require.NoError(t, err)
	assert.False(t, resp.Emailed)
	assert.Empty(t, f.mailer.sent)
}

func TestReportService_GenerateAndDispatch_MailFailure(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &model.User{Username: "alice", Email: "alice@gmail.com"}))
	f.mailer.err = common.ErrServiceUnavailable

	_, err := f.svc.GenerateAndDispatch(ctx, GenerateReportRequest{
		Username: "alice", StartDate: "2024-01-01", EndDate: "2024-01-07", SendEmail: true,
	})
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestReportService_SendWeekly(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &model.User{Username: "alice", Email: "alice@gmail.com"}))

	require.NoError(t, f.svc.SendWeekly(ctx, "alice"))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Your Weekly Puzzle Report (2024-01-10)", f.mailer.sent[0].Subject)

	assert.ErrorIs(t, f.svc.SendWeekly(ctx, "ghost"), common.ErrUserNotFound)
}
