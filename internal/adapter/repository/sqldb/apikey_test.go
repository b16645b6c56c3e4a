package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type APIKeyRepositoryTestSuite struct {
	suite.Suite
	errUnknown error
	mock       sqlmock.Sqlmock
	repo       *APIKeyRepository
}

func (suite *APIKeyRepositoryTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *APIKeyRepositoryTestSuite) SetupSubTest() {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		suite.T().Fatalf("Failed to create mock database: %v", err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	suite.T().Cleanup(func() {
		db.Close()
	})

	suite.mock = mock
	suite.repo = NewAPIKeyRepository(db)
}

func (suite *APIKeyRepositoryTestSuite) TearDownSubTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *APIKeyRepositoryTestSuite) TestGet() {
	suite.Run("no key", func() {
		suite.mock.ExpectQuery(`SELECT digest FROM api_key`).
			WillReturnError(sql.ErrNoRows)

		digest, err := suite.repo.Get(context.Background())

		suite.ErrorIs(err, entity.ErrAPIKeyNotFound)
		suite.Empty(digest)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT digest FROM api_key`).
			WillReturnError(suite.errUnknown)

		digest, err := suite.repo.Get(context.Background())

		suite.ErrorIs(err, suite.errUnknown)
		suite.Empty(digest)
	})

	suite.Run("success", func() {
		suite.mock.ExpectQuery(`SELECT digest FROM api_key`).
			WillReturnRows(sqlmock.NewRows([]string{"digest"}).AddRow("d1gest"))

		digest, err := suite.repo.Get(context.Background())

		suite.NoError(err)
		suite.Equal("d1gest", digest)
	})
}

func (suite *APIKeyRepositoryTestSuite) TestPut() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`INSERT INTO api_key`).
			WithArgs("d1gest").
			WillReturnError(suite.errUnknown)

		err := suite.repo.Put(context.Background(), "d1gest")

		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("success", func() {
		suite.mock.ExpectExec(`INSERT INTO api_key(.+)ON CONFLICT`).
			WithArgs("d1gest").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.Put(context.Background(), "d1gest")

		suite.NoError(err)
	})
}

func (suite *APIKeyRepositoryTestSuite) TestClear() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`DELETE FROM api_key`).
			WillReturnError(suite.errUnknown)

		err := suite.repo.Clear(context.Background())

		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("success", func() {
		suite.mock.ExpectExec(`DELETE FROM api_key`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := suite.repo.Clear(context.Background())

		suite.NoError(err)
	})
}

func TestAPIKeyRepository(t *testing.T) {
	suite.Run(t, new(APIKeyRepositoryTestSuite))
}
