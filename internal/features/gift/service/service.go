package service

import (
	"context"
	"strings"
	"time"

	apperrors "giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/logger"
	"giftwise-backend/internal/common/validation"
	"giftwise-backend/internal/features/gift/models"
	"giftwise-backend/internal/features/gift/repository"
	listmodels "giftwise-backend/internal/features/list/models"
	listrepository "giftwise-backend/internal/features/list/repository"
)

// notifyTimeout bounds the fire-and-forget claim notification.
const notifyTimeout = 10 * time.Second

// ClaimNotifier tells a list owner that one of their gifts was claimed.
// Notification failures are logged, never surfaced to the gifter.
type ClaimNotifier interface {
	NotifyClaim(ctx context.Context, ownerID, listTitle, giftTitle, claimedBy string) error
}

type GiftService interface {
	// Owner-gated operations.
	CreateGift(ctx context.Context, listID, callerID string, input models.GiftCreate) (*models.Gift, error)
	GetListGifts(ctx context.Context, listID, callerID string) ([]*models.Gift, error)
	UpdateGift(ctx context.Context, giftID, callerID string, update models.GiftUpdate) (*models.Gift, error)
	DeleteGift(ctx context.Context, giftID, callerID string) error
	UnclaimGift(ctx context.Context, giftID, callerID string) (*models.Gift, error)

	// Anonymous operations, reachable only through a valid share code.
	GetSharedList(ctx context.Context, shareCode string) (*models.SharedListResponse, error)
	ClaimGift(ctx context.Context, shareCode, giftID string, req models.ClaimRequest) (*models.PublicGift, error)
}

type giftService struct {
	gifts    repository.GiftRepository
	lists    listrepository.ListRepository
	notifier ClaimNotifier
}

// NewGiftService wires the gift service; notifier may be nil to disable
// claim notifications.
func NewGiftService(gifts repository.GiftRepository, lists listrepository.ListRepository, notifier ClaimNotifier) GiftService {
	return &giftService{
		gifts:    gifts,
		lists:    lists,
		notifier: notifier,
	}
}

func validateGiftCreate(input *models.GiftCreate) error {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.ValidateGiftTitle(input.Title); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := validation.ValidateDescription(input.Description); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := validation.ValidateGiftURL(input.URL); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := validation.ValidateSortOrder(input.SortOrder); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

func validateGiftUpdate(update models.GiftUpdate) error {
	if update.IsEmpty() {
		return apperrors.Validation("no fields to update")
	}
	if update.Title != nil {
		if err := validation.ValidateGiftTitle(strings.TrimSpace(*update.Title)); err != nil {
			return apperrors.Validation(err.Error())
		}
	}
	if update.Description != nil {
		if err := validation.ValidateDescription(*update.Description); err != nil {
			return apperrors.Validation(err.Error())
		}
	}
	if update.URL != nil {
		if err := validation.ValidateGiftURL(*update.URL); err != nil {
			return apperrors.Validation(err.Error())
		}
	}
	if update.SortOrder != nil {
		if err := validation.ValidateSortOrder(*update.SortOrder); err != nil {
			return apperrors.Validation(err.Error())
		}
	}
	return nil
}

func (s *giftService) CreateGift(ctx context.Context, listID, callerID string, input models.GiftCreate) (*models.Gift, error) {
	if err := validateGiftCreate(&input); err != nil {
		return nil, err
	}

	gift, err := s.gifts.Create(ctx, listID, callerID, input)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("gift_id", gift.ID).
		Str("list_id", listID).
		Msg("Gift created")

	return gift, nil
}

func (s *giftService) GetListGifts(ctx context.Context, listID, callerID string) ([]*models.Gift, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != callerID {
		return nil, apperrors.Forbidden("only the list owner may view gift details")
	}
	return s.gifts.GetByList(ctx, listID)
}

func (s *giftService) UpdateGift(ctx context.Context, giftID, callerID string, update models.GiftUpdate) (*models.Gift, error) {
	if err := validateGiftUpdate(update); err != nil {
		return nil, err
	}
	return s.gifts.Update(ctx, giftID, callerID, update)
}

func (s *giftService) DeleteGift(ctx context.Context, giftID, callerID string) error {
	return s.gifts.Delete(ctx, giftID, callerID)
}

func (s *giftService) UnclaimGift(ctx context.Context, giftID, callerID string) (*models.Gift, error) {
	gift, err := s.gifts.Unclaim(ctx, giftID, callerID)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("gift_id", giftID).
		Msg("Gift unclaimed")

	return gift, nil
}

// redact applies the list's display policy for anonymous callers: with
// hide_claimed_gifts set, claimed gifts disappear entirely; otherwise they
// appear but without any claimant detail.
func redact(list *listmodels.List, gifts []*models.Gift) []models.PublicGift {
	public := make([]models.PublicGift, 0, len(gifts))
	for _, gift := range gifts {
		if list.HideClaimedGifts && gift.Status == models.GiftStatusClaimed {
			continue
		}
		public = append(public, models.PublicGift{
			ID:          gift.ID,
			Title:       gift.Title,
			Description: gift.Description,
			URL:         gift.URL,
			Status:      gift.Status,
		})
	}
	return public
}

func (s *giftService) GetSharedList(ctx context.Context, shareCode string) (*models.SharedListResponse, error) {
	list, err := s.lists.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	gifts, err := s.gifts.GetByList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return &models.SharedListResponse{
		Title:            list.Title,
		HideClaimedGifts: list.HideClaimedGifts,
		Gifts:            redact(list, gifts),
	}, nil
}

func (s *giftService) ClaimGift(ctx context.Context, shareCode, giftID string, req models.ClaimRequest) (*models.PublicGift, error) {
	claimedBy := strings.TrimSpace(req.ClaimedBy)
	if err := validation.ValidateClaimedBy(claimedBy); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validation.ValidateClaimerMessage(req.ClaimerMessage); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	// The share code is the gifter's only credential; a gift id from a
	// different list resolves to NotFound, not Forbidden.
	list, err := s.lists.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	gift, err := s.gifts.GetByID(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if gift.ListID != list.ID {
		return nil, apperrors.NotFound("gift not found")
	}

	claimed, err := s.gifts.Claim(ctx, giftID, claimedBy, req.ClaimerMessage)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("gift_id", giftID).
		Str("list_id", list.ID).
		Msg("Gift claimed")

	if s.notifier != nil {
		go s.notifyClaim(list.OwnerID, list.Title, claimed.Title, claimedBy)
	}

	return &models.PublicGift{
		ID:          claimed.ID,
		Title:       claimed.Title,
		Description: claimed.Description,
		URL:         claimed.URL,
		Status:      claimed.Status,
	}, nil
}

func (s *giftService) notifyClaim(ownerID, listTitle, giftTitle, claimedBy string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyClaim(ctx, ownerID, listTitle, giftTitle, claimedBy); err != nil {
		logger.Warn().
			Err(err).
			Str("owner_id", ownerID).
			Msg("Failed to notify list owner about claim")
	}
}
