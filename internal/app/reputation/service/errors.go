package service

import "errors"

// Ошибки бизнес-логики для обработки в handlers.
// Ни одна из них не транзиентна: ядро не делает сетевых вызовов,
// которые имело бы смысл ретраить
var (
	ErrArticleNotFound = errors.New("article not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrReviewNotFound  = errors.New("review not found")

	// ErrForbidden - не та роль, не сторона сделки, либо сделка еще не завершена
	ErrForbidden = errors.New("not allowed to perform this review action")

	// ErrDuplicateReview - по сделке уже есть отзыв этого автора
	ErrDuplicateReview = errors.New("only one review per article per author")
)
