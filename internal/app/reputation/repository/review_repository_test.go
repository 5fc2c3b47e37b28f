package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"wafflemarket/internal/app/reputation/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ReviewRepositoryTestSuite тестовый suite для PostgreSQL repository
type ReviewRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ReviewRepository
	sqlDB *sql.DB
}

func TestReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewRepositoryTestSuite))
}

func (s *ReviewRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err)

	s.repo = NewReviewRepository(s.db)
}

func (s *ReviewRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func (s *ReviewRepositoryTestSuite) sellerReview() *entity.Review {
	reviewerID := uuid.New()
	articleID := uuid.New()
	return &entity.Review{
		ID:          uuid.New(),
		ReviewType:  entity.ReviewTypeSeller,
		ReviewerID:  &reviewerID,
		ReviewyeeID: uuid.New(),
		ArticleID:   &articleID,
		MannerType:  entity.MannerGood,
		Manner:      "10000100",
		CreatedAt:   time.Now(),
	}
}

// ===================== Create Tests =====================

func (s *ReviewRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()
	review := s.sellerReview()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	err := s.repo.Create(ctx, review)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_DuplicateKey() {
	ctx := context.Background()
	review := s.sellerReview()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnError(gorm.ErrDuplicatedKey)
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, review)

	s.ErrorIs(err, ErrDuplicateReview)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_DBError() {
	ctx := context.Background()
	review := s.sellerReview()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, review)

	s.Error(err)
	s.NotErrorIs(err, ErrDuplicateReview)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Get / Exists Tests =====================

func (s *ReviewRepositoryTestSuite) TestGetByArticleAndReviewer_Success() {
	ctx := context.Background()
	articleID := uuid.New()
	reviewerID := uuid.New()
	reviewID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "review_type", "reviewer_id", "reviewyee_id", "article_id", "manner_type", "manner"}).
		AddRow(reviewID, "seller", reviewerID, uuid.New(), articleID, "good", "10000100")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE article_id = $1 AND reviewer_id = $2`)).
		WithArgs(articleID, reviewerID, 1).
		WillReturnRows(rows)

	review, err := s.repo.GetByArticleAndReviewer(ctx, articleID, reviewerID)

	s.NoError(err)
	s.NotNil(review)
	s.Equal(reviewID, review.ID)
	s.Equal(entity.ReviewTypeSeller, review.ReviewType)
	s.Equal("10000100", review.Manner)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestGetByArticleAndReviewer_NotFound() {
	ctx := context.Background()
	articleID := uuid.New()
	reviewerID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE article_id = $1 AND reviewer_id = $2`)).
		WithArgs(articleID, reviewerID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	review, err := s.repo.GetByArticleAndReviewer(ctx, articleID, reviewerID)

	s.ErrorIs(err, ErrReviewNotFound)
	s.Nil(review)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestExistsByArticleAndReviewer() {
	ctx := context.Background()
	articleID := uuid.New()
	reviewerID := uuid.New()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reviews" WHERE article_id = $1 AND reviewer_id = $2`)).
		WithArgs(articleID, reviewerID).
		WillReturnRows(rows)

	exists, err := s.repo.ExistsByArticleAndReviewer(ctx, articleID, reviewerID)

	s.NoError(err)
	s.True(exists)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestExistsByArticleAndReviewyee_Empty() {
	ctx := context.Background()
	articleID := uuid.New()
	reviewyeeID := uuid.New()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(0)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reviews" WHERE article_id = $1 AND reviewyee_id = $2`)).
		WithArgs(articleID, reviewyeeID).
		WillReturnRows(rows)

	exists, err := s.repo.ExistsByArticleAndReviewyee(ctx, articleID, reviewyeeID)

	s.NoError(err)
	s.False(exists)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *ReviewRepositoryTestSuite) TestDeleteByArticleAndReviewer_Success() {
	ctx := context.Background()
	articleID := uuid.New()
	reviewerID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews" WHERE article_id = $1 AND reviewer_id = $2`)).
		WithArgs(articleID, reviewerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.DeleteByArticleAndReviewer(ctx, articleID, reviewerID)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestDeleteByArticleAndReviewer_NothingDeleted() {
	ctx := context.Background()
	articleID := uuid.New()
	reviewerID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews" WHERE article_id = $1 AND reviewer_id = $2`)).
		WithArgs(articleID, reviewerID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.DeleteByArticleAndReviewer(ctx, articleID, reviewerID)

	s.ErrorIs(err, ErrReviewNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== UpsertPeer Tests =====================

func (s *ReviewRepositoryTestSuite) TestUpsertPeer_Inserted() {
	ctx := context.Background()
	reviewerID := uuid.New()
	review := &entity.Review{
		ID:          uuid.New(),
		ReviewType:  entity.ReviewTypePeer,
		ReviewerID:  &reviewerID,
		ReviewyeeID: uuid.New(),
		MannerType:  entity.MannerGood,
		Manner:      "110",
		CreatedAt:   time.Now(),
	}

	rows := sqlmock.NewRows([]string{"id", "created_at", "created"}).
		AddRow(review.ID, review.CreatedAt, true)

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WillReturnRows(rows)

	created, err := s.repo.UpsertPeer(ctx, review)

	s.NoError(err)
	s.True(created)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestUpsertPeer_Replaced() {
	ctx := context.Background()
	reviewerID := uuid.New()
	review := &entity.Review{
		ID:          uuid.New(),
		ReviewType:  entity.ReviewTypePeer,
		ReviewerID:  &reviewerID,
		ReviewyeeID: uuid.New(),
		MannerType:  entity.MannerGood,
		Manner:      "001",
		CreatedAt:   time.Now(),
	}

	// При замещении возвращаются id и created_at исходной строки
	originalID := uuid.New()
	originalCreatedAt := time.Now().Add(-48 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "created_at", "created"}).
		AddRow(originalID, originalCreatedAt, false)

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WillReturnRows(rows)

	created, err := s.repo.UpsertPeer(ctx, review)

	s.NoError(err)
	s.False(created)
	s.Equal(originalID, review.ID)
	s.WithinDuration(originalCreatedAt, review.CreatedAt, time.Second)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestUpsertPeer_DBError() {
	ctx := context.Background()
	reviewerID := uuid.New()
	review := &entity.Review{
		ID:          uuid.New(),
		ReviewType:  entity.ReviewTypePeer,
		ReviewerID:  &reviewerID,
		ReviewyeeID: uuid.New(),
		MannerType:  entity.MannerBad,
		Manner:      "10",
		CreatedAt:   time.Now(),
	}

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WillReturnError(sql.ErrConnDone)

	_, err := s.repo.UpsertPeer(ctx, review)

	s.Error(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Aggregation Tests =====================

func (s *ReviewRepositoryTestSuite) TestSumMannerBits() {
	ctx := context.Background()
	reviewyeeID := uuid.New()

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow(5)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(LENGTH(REPLACE(manner, '0', ''))), 0) FROM "reviews" WHERE reviewyee_id = $1 AND review_type = $2 AND manner_type = $3`)).
		WithArgs(reviewyeeID, "peer", "good").
		WillReturnRows(rows)

	total, err := s.repo.SumMannerBits(ctx, reviewyeeID, entity.ReviewTypePeer, entity.MannerGood)

	s.NoError(err)
	s.Equal(5, total)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestSumMannerBits_NoReviews() {
	ctx := context.Background()
	reviewyeeID := uuid.New()

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow(0)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(LENGTH(REPLACE(manner, '0', ''))), 0) FROM "reviews"`)).
		WithArgs(reviewyeeID, "buyer", "bad").
		WillReturnRows(rows)

	total, err := s.repo.SumMannerBits(ctx, reviewyeeID, entity.ReviewTypeBuyer, entity.MannerBad)

	s.NoError(err)
	s.Equal(0, total)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestListByReviewyee() {
	ctx := context.Background()
	reviewyeeID := uuid.New()
	reviewerID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "review_type", "reviewer_id", "reviewyee_id", "manner_type", "manner"}).
		AddRow(uuid.New(), "peer", reviewerID, reviewyeeID, "good", "110").
		AddRow(uuid.New(), "peer", nil, reviewyeeID, "good", "100")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE reviewyee_id = $1 AND review_type = $2 AND manner_type = $3 ORDER BY created_at DESC`)).
		WithArgs(reviewyeeID, "peer", "good").
		WillReturnRows(rows)

	reviews, err := s.repo.ListByReviewyee(ctx, reviewyeeID, entity.ReviewTypePeer, entity.MannerGood)

	s.NoError(err)
	s.Len(reviews, 2)
	s.Equal(reviewerID, *reviews[0].ReviewerID)
	s.Nil(reviews[1].ReviewerID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestRecentReviewyees() {
	ctx := context.Background()
	since := time.Now().Add(-24 * time.Hour)
	first := uuid.New()
	second := uuid.New()

	rows := sqlmock.NewRows([]string{"reviewyee_id"}).
		AddRow(first).
		AddRow(second)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT "reviewyee_id" FROM "reviews" WHERE created_at >= $1`)).
		WithArgs(since).
		WillReturnRows(rows)

	ids, err := s.repo.RecentReviewyees(ctx, since)

	s.NoError(err)
	s.Equal([]uuid.UUID{first, second}, ids)
	s.NoError(s.mock.ExpectationsWereMet())
}
