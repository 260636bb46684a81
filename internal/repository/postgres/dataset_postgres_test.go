package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"motifapi/internal/model"
	"motifapi/internal/repository"
)

var datasetCols = []string{"id", "name", "filename", "storage_path", "size", "content_type", "layout", "dimensions", "length", "labels", "created_at"}

func TestDatasetPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDatasetPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ds := &model.Dataset{
		ID:          "test-uuid",
		Name:        "physio",
		Filename:    "physio.csv",
		StoragePath: "datasets/test-uuid.csv",
		Size:        123,
		ContentType: "text/csv",
		Layout:      "columns",
		Dimensions:  2,
		Length:      500,
		Labels:      []string{"X-Acc", "Y-Acc"},
		CreatedAt:   now,
	}

	rows := sqlmock.NewRows(datasetCols).
		AddRow(ds.ID, ds.Name, ds.Filename, ds.StoragePath, ds.Size, ds.ContentType, ds.Layout, ds.Dimensions, ds.Length, []byte(`["X-Acc","Y-Acc"]`), ds.CreatedAt)

	mock.ExpectQuery("INSERT INTO datasets").
		WithArgs(ds.ID, ds.Name, ds.Filename, ds.StoragePath, ds.Size, ds.ContentType, ds.Layout, ds.Dimensions, ds.Length, `["X-Acc","Y-Acc"]`, ds.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, ds)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, ds, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDatasetPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(datasetCols).
			AddRow("test-id", "name", "file.csv", "datasets/test-id.csv", 100, "text/csv", "rows", 3, 1000, []byte(`["a","b","c"]`), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM datasets WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		ds, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, ds)
		assert.Equal(t, "test-id", ds.ID)
		assert.Equal(t, []string{"a", "b", "c"}, ds.Labels)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM datasets WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		ds, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, ds)
	})

	t.Run("corrupt labels", func(t *testing.T) {
		rows := sqlmock.NewRows(datasetCols).
			AddRow("bad", "name", "file.csv", "datasets/bad.csv", 100, "text/csv", "rows", 1, 10, []byte(`{`), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM datasets WHERE id = ?").
			WithArgs("bad").
			WillReturnRows(rows)

		_, err := repo.FindByID(ctx, "bad")
		assert.ErrorContains(t, err, "decode labels")
	})
}

func TestDatasetPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDatasetPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM datasets").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(datasetCols).
			AddRow("test-id", "name", "file.csv", "datasets/test-id.csv", 100, "text/csv", "columns", 1, 100, []byte(`["0"]`), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM datasets ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM datasets").
			WillReturnError(errors.New("db down"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDatasetPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM datasets WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
