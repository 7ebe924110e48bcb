package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/raza141/SchedulerBooker/internal/repository"
	"go.uber.org/zap"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestBookingServiceCreatesSessionAndDerivesPayment(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	booking, _ := newIntegrationServices(pool, &fakeGateway{ref: "pi_fake"})

	studentID := createTestStudent(t, ctx, pool, 40.00)
	tutorID := createTestTutor(t, ctx, pool, 35.00)
	t.Cleanup(func() { cleanupTestRecords(t, ctx, pool, []int64{studentID}, []int64{tutorID}) })

	startAt := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	endAt := startAt.Add(90 * time.Minute)
	detail, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: studentID,
		TutorID:   tutorID,
		StartAt:   startAt,
		EndAt:     &endAt,
		Location:  "Library room 2",
		Topic:     "calculus",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if detail.Status != "pending" {
		t.Fatalf("expected pending session, got %q", detail.Status)
	}
	if detail.Payment == nil || detail.Payment.Status != "pending" {
		t.Fatalf("expected pending payment, got %+v", detail.Payment)
	}
	// 1.5h at the student's 40.00 rate.
	if detail.Payment.Amount != 60.00 {
		t.Fatalf("expected amount 60.00, got %.2f", detail.Payment.Amount)
	}

	student, err := repository.NewStudentRepository(pool).GetByID(ctx, studentID)
	if err != nil {
		t.Fatalf("GetByID student: %v", err)
	}
	if student.TotalSessions != 1 {
		t.Fatalf("expected total_sessions 1, got %d", student.TotalSessions)
	}
}

func TestBookingServiceRejectsOverlapAndAllowsTouchingWindows(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	booking, _ := newIntegrationServices(pool, &fakeGateway{ref: "pi_fake"})

	firstStudentID := createTestStudent(t, ctx, pool, 30.00)
	secondStudentID := createTestStudent(t, ctx, pool, 30.00)
	tutorID := createTestTutor(t, ctx, pool, 50.00)
	t.Cleanup(func() {
		cleanupTestRecords(t, ctx, pool, []int64{firstStudentID, secondStudentID}, []int64{tutorID})
	})

	startAt := time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	if _, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: firstStudentID,
		TutorID:   tutorID,
		StartAt:   startAt,
		EndAt:     &endAt,
	}); err != nil {
		t.Fatalf("first CreateSession: %v", err)
	}

	overlapStart := startAt.Add(30 * time.Minute)
	overlapEnd := overlapStart.Add(time.Hour)
	_, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: secondStudentID,
		TutorID:   tutorID,
		StartAt:   overlapStart,
		EndAt:     &overlapEnd,
	})
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}

	// Half-open windows: a session starting exactly when the previous one
	// ends is not a conflict.
	touchingEnd := endAt.Add(time.Hour)
	if _, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: secondStudentID,
		TutorID:   tutorID,
		StartAt:   endAt,
		EndAt:     &touchingEnd,
	}); err != nil {
		t.Fatalf("touching CreateSession: %v", err)
	}
}

func TestBookingServiceRejectsSecondConfirm(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	booking, _ := newIntegrationServices(pool, &fakeGateway{ref: "pi_fake"})

	studentID := createTestStudent(t, ctx, pool, 25.00)
	tutorID := createTestTutor(t, ctx, pool, 25.00)
	t.Cleanup(func() { cleanupTestRecords(t, ctx, pool, []int64{studentID}, []int64{tutorID}) })

	startAt := time.Date(2030, 5, 2, 14, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	detail, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: studentID,
		TutorID:   tutorID,
		StartAt:   startAt,
		EndAt:     &endAt,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	confirmed, err := booking.ConfirmSession(ctx, detail.ID)
	if err != nil {
		t.Fatalf("ConfirmSession: %v", err)
	}
	if confirmed.Status != "confirmed" {
		t.Fatalf("expected confirmed session, got %q", confirmed.Status)
	}

	if _, err := booking.ConfirmSession(ctx, detail.ID); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState on second confirm, got %v", err)
	}
}

func TestBookingServiceSetEndTimeCreatesAndReprices(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	booking, _ := newIntegrationServices(pool, &fakeGateway{ref: "pi_fake"})

	studentID := createTestStudent(t, ctx, pool, 50.00)
	tutorID := createTestTutor(t, ctx, pool, 50.00)
	t.Cleanup(func() { cleanupTestRecords(t, ctx, pool, []int64{studentID}, []int64{tutorID}) })

	startAt := time.Date(2030, 6, 10, 16, 0, 0, 0, time.UTC)
	detail, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: studentID,
		TutorID:   tutorID,
		StartAt:   startAt,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if detail.Payment != nil {
		t.Fatalf("expected no payment for an open-ended session, got %+v", detail.Payment)
	}

	ended, err := booking.SetEndTime(ctx, detail.ID, startAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("SetEndTime: %v", err)
	}
	if ended.Payment == nil || ended.Payment.Amount != 50.00 {
		t.Fatalf("expected payment of 50.00 after first end time, got %+v", ended.Payment)
	}

	// Moving the end time reprices the same pending payment row.
	repriced, err := booking.SetEndTime(ctx, detail.ID, startAt.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("SetEndTime reprice: %v", err)
	}
	if repriced.Payment == nil || repriced.Payment.Amount != 100.00 {
		t.Fatalf("expected repriced payment of 100.00, got %+v", repriced.Payment)
	}
	if repriced.Payment.ID != ended.Payment.ID {
		t.Fatalf("expected the same payment row, got %d then %d", ended.Payment.ID, repriced.Payment.ID)
	}
}

func TestBookingServiceRejectsInactiveStudent(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	booking, _ := newIntegrationServices(pool, &fakeGateway{ref: "pi_fake"})

	studentID := createTestStudent(t, ctx, pool, 30.00)
	tutorID := createTestTutor(t, ctx, pool, 30.00)
	t.Cleanup(func() { cleanupTestRecords(t, ctx, pool, []int64{studentID}, []int64{tutorID}) })

	if _, err := repository.NewStudentRepository(pool).UpdateStatus(ctx, studentID, "inactive"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	startAt := time.Date(2030, 7, 1, 10, 0, 0, 0, time.UTC)
	_, err := booking.CreateSession(ctx, CreateSessionInput{
		StudentID: studentID,
		TutorID:   tutorID,
		StartAt:   startAt,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inactive student, got %v", err)
	}
}

type fakeGateway struct {
	ref          string
	err          error
	calls        int
	lastAmount   int64
	lastCurrency string
}

func (g *fakeGateway) SubmitPayment(_ context.Context, amountMinorUnits int64, currency string) (string, error) {
	g.calls++
	g.lastAmount = amountMinorUnits
	g.lastCurrency = currency
	if g.err != nil {
		return "", g.err
	}
	return g.ref, nil
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationServices(pool *pgxpool.Pool, gateway PaymentGateway) (*BookingService, *PaymentService) {
	sessionRepo := repository.NewSessionRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	payments := NewPaymentService(pool, sessionRepo, paymentRepo, gateway, "usd", 5*time.Second, zap.NewNop())
	booking := NewBookingService(
		pool,
		sessionRepo,
		paymentRepo,
		repository.NewStudentRepository(pool),
		repository.NewTutorRepository(pool),
		payments,
		zap.NewNop(),
	)
	return booking, payments
}

func createTestStudent(t *testing.T, ctx context.Context, pool *pgxpool.Pool, billingRate float64) int64 {
	t.Helper()

	student, err := repository.NewStudentRepository(pool).Create(ctx, repository.CreateStudentInput{
		FullName:    "Test Student",
		BillingRate: billingRate,
		Email:       fmt.Sprintf("booking-test-student-%d@example.com", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("Create student: %v", err)
	}
	return student.ID
}

func createTestTutor(t *testing.T, ctx context.Context, pool *pgxpool.Pool, hourlyRate float64) int64 {
	t.Helper()

	tutor, err := repository.NewTutorRepository(pool).Create(ctx, repository.CreateTutorInput{
		FullName:   "Test Tutor",
		Expertise:  "mathematics",
		HourlyRate: hourlyRate,
		Email:      fmt.Sprintf("booking-test-tutor-%d@example.com", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("Create tutor: %v", err)
	}
	return tutor.ID
}

func cleanupTestRecords(t *testing.T, ctx context.Context, pool *pgxpool.Pool, studentIDs, tutorIDs []int64) {
	t.Helper()

	// Sessions and payments cascade off the student rows.
	if len(studentIDs) > 0 {
		if _, err := pool.Exec(ctx, "DELETE FROM students WHERE id = ANY($1)", studentIDs); err != nil {
			t.Fatalf("cleanup students: %v", err)
		}
	}
	if len(tutorIDs) > 0 {
		if _, err := pool.Exec(ctx, "DELETE FROM tutors WHERE id = ANY($1)", tutorIDs); err != nil {
			t.Fatalf("cleanup tutors: %v", err)
		}
	}
}
