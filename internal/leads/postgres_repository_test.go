package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresCreateReturnsStoredRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(
			pgxmock.AnyArg(), // id, generated in Create
			"Ana Ruiz",
			"ana@example.com",
			"Quiero más información sobre sus servicios",
			[]string{"neural-crane"},
			(*string)(nil), (*string)(nil), (*string)(nil),
			"203.0.113.9",
			"Mozilla/5.0",
			"direct",
			SourceLandingForm,
			StatusNew,
			DefaultPriority,
			true,
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	repo := NewPostgresRepository(mock)
	lead := NewLead(&SubmissionInput{
		Name:             "Ana Ruiz",
		Email:            "ana@example.com",
		Message:          "Quiero más información sobre sus servicios",
		ProductsInterest: []string{"neural-crane"},
	}, RequestContext{IPAddress: "203.0.113.9", UserAgent: "Mozilla/5.0"})

	stored, err := repo.Create(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected generated id")
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Errorf("expected store-assigned created_at, got %v", stored.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateWrapsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO leads").
		WillReturnError(errors.New("connection refused"))

	repo := NewPostgresRepository(mock)
	lead := NewLead(&SubmissionInput{
		Name:    "Ana Ruiz",
		Email:   "ana@example.com",
		Message: "Quiero más información sobre sus servicios",
	}, RequestContext{})

	if _, err := repo.Create(context.Background(), lead); err == nil {
		t.Fatal("expected error")
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM leads").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	if _, err := repo.GetByID(context.Background(), "missing-id"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPostgresListWithStatusFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "name", "email", "message", "products_interest",
		"utm_source", "utm_medium", "utm_campaign",
		"ip_address", "user_agent", "page_url",
		"source", "status", "priority", "gdpr_consent", "created_at",
	}).AddRow(
		"lead-1", "Ana Ruiz", "ana@example.com", "Quiero más información sobre sus servicios",
		[]string{"neural-crane"}, nil, nil, nil,
		"203.0.113.9", "Mozilla/5.0", "direct",
		SourceLandingForm, StatusNew, DefaultPriority, true, time.Now().UTC(),
	)

	mock.ExpectQuery("SELECT(.+)FROM leads WHERE status").
		WithArgs(StatusNew, 50, 0).
		WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	result, err := repo.List(context.Background(), ListFilter{Status: StatusNew})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].ID != "lead-1" {
		t.Fatalf("unexpected result: %v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("UPDATE leads SET status").
		WithArgs("lead-1", StatusContacted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepository(mock)
	if err := repo.UpdateStatus(context.Background(), "lead-1", StatusContacted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateStatusNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("UPDATE leads SET status").
		WithArgs("missing", StatusLost).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	if err := repo.UpdateStatus(context.Background(), "missing", StatusLost); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPostgresUpdateStatusRejectsUnknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	if err := repo.UpdateStatus(context.Background(), "lead-1", "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
