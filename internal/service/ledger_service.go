package service

import (
	"context"
	"fmt"

	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/repository"
	"go.uber.org/zap"
)

// LedgerService предоставляет баланс и историю кредитов пользователя.
// Списания и возвраты пишутся только транзакциями бронирования,
// здесь доступно лишь пополнение.
type LedgerService struct {
	ledgerRepo *repository.LedgerRepository
	logger     *zap.Logger
}

func NewLedgerService(ledgerRepo *repository.LedgerRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Balance возвращает текущий баланс пользователя
func (s *LedgerService) Balance(ctx context.Context, userID int64) (int, error) {
	return s.ledgerRepo.Balance(ctx, userID)
}

// History возвращает историю операций пользователя
func (s *LedgerService) History(ctx context.Context, userID int64) ([]*model.LedgerEntry, error) {
	return s.ledgerRepo.GetByUserID(ctx, userID)
}

// TopUp пополняет баланс пользователя
func (s *LedgerService) TopUp(ctx context.Context, userID int64, amount int) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("top up amount must be positive, got %d", amount)
	}

	entry := &model.LedgerEntry{
		UserID: userID,
		Amount: amount,
		Type:   model.LedgerEntryEarn,
	}

	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append earn entry: %w", err)
	}

	s.logger.Info("Credits topped up",
		zap.Int64("user_id", userID),
		zap.Int("amount", amount),
	)

	return entry, nil
}
