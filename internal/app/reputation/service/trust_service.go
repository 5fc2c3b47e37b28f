package service

import (
	"context"
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

const (
	// baseScore - температура нового пользователя без единого отзыва и сделки
	baseScore = 36.5

	minScore = 0.0
	maxScore = 99.0

	// refreshWindow - за какой период брать субъектов отзывов при прогреве кеша
	refreshWindow = 24 * time.Hour
)

// scoreTier - одна ступень активности внутри блока формулы.
// Ступени перебираются сверху вниз, срабатывает первая подходящая
type scoreTier struct {
	Threshold  int     // Минимум сделок нужного вида для этой ступени
	Bonus      float64 // Фиксированная надбавка ступени
	GoodWeight float64
	BadWeight  float64

	// GateOnListed - ступень ключуется на числе выставленных объявлений,
	// а не на счетчике своего блока
	GateOnListed bool
}

// Веса жалоб везде вчетверо тяжелее похвал:
// одна жалоба перевешивает четыре похвалы той же ступени
var (
	peerTiers = []scoreTier{
		{Threshold: 7, Bonus: 30, GoodWeight: 1.2, BadWeight: 4.8},
		{Threshold: 5, Bonus: 20, GoodWeight: 0.6, BadWeight: 2.4},
		{Threshold: 3, Bonus: 10, GoodWeight: 0.3, BadWeight: 1.2},
		{Threshold: 2, Bonus: 5, GoodWeight: 0.15, BadWeight: 0.6},
		{Threshold: 1, Bonus: 2.5, GoodWeight: 0.075, BadWeight: 0.3},
	}

	sellerTiers = []scoreTier{
		{Threshold: 7, Bonus: 30, GoodWeight: 2.4, BadWeight: 9.6, GateOnListed: true},
		{Threshold: 5, Bonus: 20, GoodWeight: 1.2, BadWeight: 4.8},
		{Threshold: 3, Bonus: 10, GoodWeight: 0.6, BadWeight: 2.4},
		{Threshold: 2, Bonus: 5, GoodWeight: 0.3, BadWeight: 1.2},
		{Threshold: 1, Bonus: 2.5, GoodWeight: 0.15, BadWeight: 0.6},
	}

	buyerTiers = []scoreTier{
		{Threshold: 7, Bonus: 30, GoodWeight: 2.4, BadWeight: 9.6},
		{Threshold: 5, Bonus: 20, GoodWeight: 1.2, BadWeight: 4.8},
		{Threshold: 3, Bonus: 10, GoodWeight: 0.6, BadWeight: 2.4},
		{Threshold: 2, Bonus: 5, GoodWeight: 0.3, BadWeight: 1.2},
		{Threshold: 1, Bonus: 2.5, GoodWeight: 0.15, BadWeight: 0.6},
	}
)

// TrustService вычисляет температуру доверия и сводку манер пользователя
type TrustService struct {
	reviewRepo repository.ReviewRepository
	articles   infrastructure.ArticleProvider
	scoreCache infrastructure.ScoreCache
}

// NewTrustService создает новый сервис температуры доверия
func NewTrustService(
	reviewRepo repository.ReviewRepository,
	articles infrastructure.ArticleProvider,
	scoreCache infrastructure.ScoreCache,
) *TrustService {
	return &TrustService{
		reviewRepo: reviewRepo,
		articles:   articles,
		scoreCache: scoreCache,
	}
}

// TrustScore возвращает температуру доверия пользователя.
// Сначала проверяется Redis, при промахе температура вычисляется
// из счетчиков сделок и сумм битов манер и кладется обратно в кеш
func (s *TrustService) TrustScore(ctx context.Context, userID uuid.UUID) (float64, error) {
	score, ok, err := s.scoreCache.Get(ctx, userID)
	if err != nil {
		// Недоступный Redis не должен ломать чтение температуры
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to read trust score cache")
	}
	if ok {
		return score, nil
	}

	return s.computeAndCache(ctx, userID)
}

// computeAndCache вычисляет температуру с нуля и сохраняет результат в кеш
func (s *TrustService) computeAndCache(ctx context.Context, userID uuid.UUID) (float64, error) {
	counts, err := s.articles.GetTradeCounts(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get trade counts: %w", err)
	}

	peerGood, peerBad, err := s.mannerSums(ctx, userID, entity.ReviewTypePeer)
	if err != nil {
		return 0, err
	}

	// Репутация продавца складывается из отзывов, написанных покупателями,
	// и наоборот: тип отзыва - это роль автора, не субъекта
	sellerGood, sellerBad, err := s.mannerSums(ctx, userID, entity.ReviewTypeBuyer)
	if err != nil {
		return 0, err
	}

	buyerGood, buyerBad, err := s.mannerSums(ctx, userID, entity.ReviewTypeSeller)
	if err != nil {
		return 0, err
	}

	score := baseScore +
		blockScore(counts.Listed, counts.Listed, peerGood, peerBad, peerTiers) +
		blockScore(counts.Sold, counts.Listed, sellerGood, sellerBad, sellerTiers) +
		blockScore(counts.Bought, counts.Listed, buyerGood, buyerBad, buyerTiers)

	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}

	metrics.TrustScoreComputed.Observe(score)

	if err := s.scoreCache.Set(ctx, userID, score); err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to cache trust score")
	}

	return score, nil
}

// mannerSums возвращает суммы битов похвал и жалоб отзывов данного типа
func (s *TrustService) mannerSums(ctx context.Context, userID uuid.UUID, reviewType entity.ReviewType) (good, bad int, err error) {
	good, err = s.reviewRepo.SumMannerBits(ctx, userID, reviewType, entity.MannerGood)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum %s good manner bits: %w", reviewType, err)
	}

	bad, err = s.reviewRepo.SumMannerBits(ctx, userID, reviewType, entity.MannerBad)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum %s bad manner bits: %w", reviewType, err)
	}

	return good, bad, nil
}

// blockScore считает вклад одного блока формулы.
// Ниже первой ступени блок не дает ничего, даже штрафов
func blockScore(count, listed, goodBits, badBits int, tiers []scoreTier) float64 {
	for _, tier := range tiers {
		key := count
		if tier.GateOnListed {
			key = listed
		}
		if key >= tier.Threshold {
			return tier.Bonus + float64(goodBits)*tier.GoodWeight - float64(badBits)*tier.BadWeight
		}
	}
	return 0
}

// MannerTally возвращает, сколько разных людей отметили каждую
// положительную черту манер пользователя. Отсутствующие черты
// присутствуют в ответе с нулем
func (s *TrustService) MannerTally(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	reviews, err := s.reviewRepo.ListByReviewyee(ctx, userID, entity.ReviewTypePeer, entity.MannerGood)
	if err != nil {
		return nil, fmt.Errorf("failed to list peer reviews: %w", err)
	}

	voters := make(map[string]map[uuid.UUID]struct{}, manner.PeerGood.Width())
	for _, phrase := range manner.PeerGood.Phrases() {
		voters[phrase] = make(map[uuid.UUID]struct{})
	}

	for _, review := range reviews {
		vec, err := manner.PeerGood.Parse(review.Manner)
		if err != nil {
			return nil, fmt.Errorf("corrupt manner vector in review %s: %w", review.ID, err)
		}

		phrases, err := manner.PeerGood.Decode(vec)
		if err != nil {
			return nil, err
		}

		// Отзывы удаленных авторов считаются одним анонимным голосом
		voterID := uuid.Nil
		if review.ReviewerID != nil {
			voterID = *review.ReviewerID
		}

		for _, phrase := range phrases {
			voters[phrase][voterID] = struct{}{}
		}
	}

	tally := make(map[string]int, len(voters))
	for phrase, ids := range voters {
		tally[phrase] = len(ids)
	}

	return tally, nil
}

// RefreshRecentScores пересчитывает температуру всех, кого недавно оценивали.
// Запускается по cron-расписанию, держит кеш теплым для активных пользователей
func (s *TrustService) RefreshRecentScores(ctx context.Context) error {
	since := time.Now().Add(-refreshWindow)

	userIDs, err := s.reviewRepo.RecentReviewyees(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to list recent reviewyees: %w", err)
	}

	var failed int
	for _, userID := range userIDs {
		if err := s.scoreCache.Invalidate(ctx, userID); err != nil {
			logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to invalidate score before refresh")
		}
		metrics.ScoreCacheInvalidations.WithLabelValues("cron_refresh").Inc()

		if _, err := s.computeAndCache(ctx, userID); err != nil {
			logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to refresh trust score")
			failed++
		}
	}

	logger.Info().
		Int("total", len(userIDs)).
		Int("failed", failed).
		Msg("Trust score refresh completed")

	if failed > 0 {
		return fmt.Errorf("failed to refresh %d of %d trust scores", failed, len(userIDs))
	}
	return nil
}

// InvalidateScore сбрасывает кешированную температуру по внешнему событию
func (s *TrustService) InvalidateScore(ctx context.Context, userID uuid.UUID, reason string) error {
	if err := s.scoreCache.Invalidate(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate trust score: %w", err)
	}

	metrics.ScoreCacheInvalidations.WithLabelValues(reason).Inc()
	return nil
}
