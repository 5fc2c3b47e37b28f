package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/internal/app/reputation/infrastructure"
	"wafflemarket/internal/app/reputation/manner"
	"wafflemarket/internal/app/reputation/repository"
	"wafflemarket/pkg/logger"
	"wafflemarket/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService обрабатывает жизненный цикл отзывов:
// создание и просмотр отзывов по сделкам (протокол sent/received),
// удаление своего отзыва и peer-оценки манер
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	articles      infrastructure.ArticleProvider
	users         infrastructure.UserProvider
	scoreCache    infrastructure.ScoreCache
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	articles infrastructure.ArticleProvider,
	users infrastructure.UserProvider,
	scoreCache infrastructure.ScoreCache,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		articles:      articles,
		users:         users,
		scoreCache:    scoreCache,
		kafkaProducer: kafkaProducer,
	}
}

// transactionVocabulary выбирает словарь для отзыва по сделке
func transactionVocabulary(mannerType entity.MannerType) *manner.Vocabulary {
	if mannerType == entity.MannerGood {
		return manner.TransactionGood
	}
	return manner.TransactionBad
}

// peerVocabulary выбирает словарь для peer-оценки
func peerVocabulary(mannerType entity.MannerType) *manner.Vocabulary {
	if mannerType == entity.MannerGood {
		return manner.PeerGood
	}
	return manner.PeerBad
}

// vocabularyFor подбирает словарь по типу отзыва и полярности
func vocabularyFor(reviewType entity.ReviewType, mannerType entity.MannerType) *manner.Vocabulary {
	if reviewType.IsTransaction() {
		return transactionVocabulary(mannerType)
	}
	return peerVocabulary(mannerType)
}

// CreateArticleReview создает отзыв по сделке от имени продавца или покупателя.
// Вся валидация выполняется до единственной вставки, частичных записей не бывает:
// проверка дубликата - это уникальный индекс внутри той же вставки
func (s *ReviewService) CreateArticleReview(ctx context.Context, articleID, callerID uuid.UUID, role entity.ReviewType, req *entity.CreateArticleReviewRequest) (*entity.ArticleReviewResponse, error) {
	if !role.IsTransaction() {
		return nil, ErrForbidden
	}

	article, err := s.articles.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, infrastructure.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	// Автор должен быть заявленной стороной сделки.
	// Продавец дополнительно ждет завершения сделки: пока sold_at пуст,
	// покупателя оценивать не за что
	var reviewyeeID uuid.UUID
	switch role {
	case entity.ReviewTypeSeller:
		if article.SellerID != callerID || article.SoldAt == nil || article.BuyerID == nil {
			return nil, ErrForbidden
		}
		reviewyeeID = *article.BuyerID
	case entity.ReviewTypeBuyer:
		if article.BuyerID == nil || *article.BuyerID != callerID {
			return nil, ErrForbidden
		}
		reviewyeeID = article.SellerID
	}

	mannerType := entity.MannerType(req.MannerType)
	vocab := transactionVocabulary(mannerType)

	vec, err := vocab.Encode(req.MannerList)
	if err != nil {
		return nil, err
	}

	// Район автора сохраняется только вместе со свободным текстом
	var freeText *string
	var reviewLocation *string
	if req.FreeText != "" {
		freeText = &req.FreeText

		location, err := s.users.GetLocation(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get reviewer location: %w", err)
		}
		reviewLocation = location
	}

	review := &entity.Review{
		ID:             uuid.New(),
		ReviewType:     role,
		ReviewerID:     &callerID,
		ReviewyeeID:    reviewyeeID,
		ArticleID:      &article.ID,
		FreeText:       freeText,
		ReviewLocation: reviewLocation,
		MannerType:     mannerType,
		Manner:         vec.String(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.WithLabelValues(string(role), string(mannerType)).Inc()
	s.invalidateScore(ctx, reviewyeeID)
	s.publishReviewEvent(ctx, entity.EventReviewCreated, review)

	received, err := s.reviewRepo.ExistsByArticleAndReviewyee(ctx, article.ID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check counterpart review: %w", err)
	}

	evaluation, err := vocab.Decode(vec)
	if err != nil {
		return nil, err
	}

	return &entity.ArticleReviewResponse{
		FreeText:   review.FreeText,
		Evaluation: evaluation,
		Type:       "sent",
		ToView:     entity.ToView{Kind: "received", Exists: received},
	}, nil
}

// GetSentReview возвращает отзыв, который автор сам оставил по сделке
func (s *ReviewService) GetSentReview(ctx context.Context, articleID, callerID uuid.UUID) (*entity.ArticleReviewResponse, error) {
	article, err := s.requireParty(ctx, articleID, callerID)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByArticleAndReviewer(ctx, article.ID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get sent review: %w", err)
	}

	received, err := s.reviewRepo.ExistsByArticleAndReviewyee(ctx, article.ID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check counterpart review: %w", err)
	}

	return s.articleReviewResponse(review, "sent", entity.ToView{Kind: "received", Exists: received})
}

// DeleteSentReview удаляет отзыв автора по сделке.
// Удаление направлений независимо: встречный отзыв второй стороны остается
func (s *ReviewService) DeleteSentReview(ctx context.Context, articleID, callerID uuid.UUID) error {
	article, err := s.requireParty(ctx, articleID, callerID)
	if err != nil {
		return err
	}

	review, err := s.reviewRepo.GetByArticleAndReviewer(ctx, article.ID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get sent review: %w", err)
	}

	if err := s.reviewRepo.DeleteByArticleAndReviewer(ctx, article.ID, callerID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewsDeleted.Inc()
	s.invalidateScore(ctx, review.ReviewyeeID)
	s.publishReviewEvent(ctx, entity.EventReviewDeleted, review)

	return nil
}

// GetReceivedReview возвращает отзыв, который встречная сторона оставила о вызывающем
func (s *ReviewService) GetReceivedReview(ctx context.Context, articleID, callerID uuid.UUID) (*entity.ArticleReviewResponse, error) {
	article, err := s.requireParty(ctx, articleID, callerID)
	if err != nil {
		return nil, err
	}

	// Продавец читает отзыв покупателя и наоборот
	var counterpartID uuid.UUID
	if article.SellerID == callerID {
		if article.BuyerID == nil {
			return nil, ErrReviewNotFound
		}
		counterpartID = *article.BuyerID
	} else {
		counterpartID = article.SellerID
	}

	review, err := s.reviewRepo.GetByArticleAndReviewer(ctx, article.ID, counterpartID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get received review: %w", err)
	}

	sent, err := s.reviewRepo.ExistsByArticleAndReviewer(ctx, article.ID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check sent review: %w", err)
	}

	return s.articleReviewResponse(review, "received", entity.ToView{Kind: "sent", Exists: sent})
}

// UpsertPeerReview создает или замещает peer-оценку манер.
// "Уже существует" здесь не ошибка: повторная оценка целиком
// перезаписывает прежний битовый вектор той же полярности
func (s *ReviewService) UpsertPeerReview(ctx context.Context, callerID, targetID uuid.UUID, req *entity.PeerReviewRequest) (*entity.PeerReviewResponse, bool, error) {
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check target user: %w", err)
	}
	if !exists {
		return nil, false, ErrUserNotFound
	}

	mannerType := entity.MannerType(req.MannerType)
	vocab := peerVocabulary(mannerType)

	vec, err := vocab.Encode(req.MannerList)
	if err != nil {
		return nil, false, err
	}

	review := &entity.Review{
		ID:          uuid.New(),
		ReviewType:  entity.ReviewTypePeer,
		ReviewerID:  &callerID,
		ReviewyeeID: targetID,
		MannerType:  mannerType,
		Manner:      vec.String(),
		CreatedAt:   time.Now(),
	}

	created, err := s.reviewRepo.UpsertPeer(ctx, review)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert peer review: %w", err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.PeerReviewUpserts.WithLabelValues(outcome).Inc()

	s.invalidateScore(ctx, targetID)
	s.publishReviewEvent(ctx, entity.EventPeerReviewUpsert, review)

	evaluation, err := vocab.Decode(vec)
	if err != nil {
		return nil, false, err
	}

	return &entity.PeerReviewResponse{
		MannerType: mannerType,
		Evaluation: evaluation,
	}, created, nil
}

// requireParty загружает сделку и проверяет, что вызывающий - одна из ее сторон
func (s *ReviewService) requireParty(ctx context.Context, articleID, callerID uuid.UUID) (*entity.Article, error) {
	article, err := s.articles.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, infrastructure.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	if article.SellerID != callerID && (article.BuyerID == nil || *article.BuyerID != callerID) {
		return nil, ErrForbidden
	}

	return article, nil
}

// articleReviewResponse расшифровывает сохраненный битовый вектор в список фраз
func (s *ReviewService) articleReviewResponse(review *entity.Review, viewType string, toView entity.ToView) (*entity.ArticleReviewResponse, error) {
	vocab := vocabularyFor(review.ReviewType, review.MannerType)

	vec, err := vocab.Parse(review.Manner)
	if err != nil {
		return nil, err
	}

	evaluation, err := vocab.Decode(vec)
	if err != nil {
		return nil, err
	}

	return &entity.ArticleReviewResponse{
		FreeText:   review.FreeText,
		Evaluation: evaluation,
		Type:       viewType,
		ToView:     toView,
	}, nil
}

// invalidateScore сбрасывает кеш температуры субъекта отзыва.
// Температура деривативна, поэтому любая мутация отзыва делает кеш устаревшим
func (s *ReviewService) invalidateScore(ctx context.Context, userID uuid.UUID) {
	if err := s.scoreCache.Invalidate(ctx, userID); err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to invalidate trust score cache")
		return
	}
	metrics.ScoreCacheInvalidations.WithLabelValues("review_mutation").Inc()
}

// publishReviewEvent отправляет событие об отзыве в Kafka.
// Ошибки логируются и не прерывают операцию: отзыв уже записан
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType:   eventType,
		ReviewID:    review.ID,
		ReviewType:  review.ReviewType,
		ReviewerID:  review.ReviewerID,
		ReviewyeeID: review.ReviewyeeID,
		ArticleID:   review.ArticleID,
		MannerType:  review.MannerType,
		Timestamp:   time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, review.ID.String(), eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish review event")
	}
}
