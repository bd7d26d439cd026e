package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/logger"
	"giftwise-backend/internal/common/validation"
	"giftwise-backend/internal/features/list/models"
	"giftwise-backend/internal/features/list/repository"
)

type ListService interface {
	CreateList(ctx context.Context, ownerID string, req models.ListCreateRequest) (*models.ListResponse, error)
	GetMyLists(ctx context.Context, ownerID string) ([]*models.ListResponse, error)
	GetList(ctx context.Context, listID, callerID string) (*models.ListResponse, error)
	UpdateList(ctx context.Context, listID, callerID string, update models.ListUpdate) (*models.ListResponse, error)
	DeleteList(ctx context.Context, listID, callerID string) error
}

type listService struct {
	repo          repository.ListRepository
	publicBaseURL string
}

func NewListService(repo repository.ListRepository, publicBaseURL string) ListService {
	return &listService{
		repo:          repo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *listService) shareURL(shareCode string) string {
	return fmt.Sprintf("%s/share/%s", s.publicBaseURL, shareCode)
}

func (s *listService) toResponse(list *models.List) *models.ListResponse {
	return &models.ListResponse{
		ID:               list.ID,
		Title:            list.Title,
		HideClaimedGifts: list.HideClaimedGifts,
		ShareCode:        list.ShareCode,
		ShareURL:         s.shareURL(list.ShareCode),
		CreatedAt:        list.CreatedAt,
		UpdatedAt:        list.UpdatedAt,
	}
}

func (s *listService) CreateList(ctx context.Context, ownerID string, req models.ListCreateRequest) (*models.ListResponse, error) {
	if err := validation.ValidateListTitle(req.Title); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	list, err := s.repo.Create(ctx, ownerID, strings.TrimSpace(req.Title), req.HideClaimedGifts)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("list_id", list.ID).
		Str("owner_id", ownerID).
		Msg("List created")

	return s.toResponse(list), nil
}

func (s *listService) GetMyLists(ctx context.Context, ownerID string) ([]*models.ListResponse, error) {
	lists, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ListResponse, 0, len(lists))
	for _, list := range lists {
		resp := s.toResponse(&list.List)
		resp.GiftCount = list.GiftCount
		resp.ClaimedCount = list.ClaimedCount
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *listService) GetList(ctx context.Context, listID, callerID string) (*models.ListResponse, error) {
	list, err := s.repo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != callerID {
		return nil, apperrors.Forbidden("only the list owner may view the list")
	}
	return s.toResponse(list), nil
}

func (s *listService) UpdateList(ctx context.Context, listID, callerID string, update models.ListUpdate) (*models.ListResponse, error) {
	if update.IsEmpty() {
		return nil, apperrors.Validation("no fields to update")
	}
	if update.Title != nil {
		if err := validation.ValidateListTitle(*update.Title); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
	}

	list, err := s.repo.Update(ctx, listID, callerID, update)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("list_id", listID).
		Msg("List updated")

	return s.toResponse(list), nil
}

func (s *listService) DeleteList(ctx context.Context, listID, callerID string) error {
	if err := s.repo.Delete(ctx, listID, callerID); err != nil {
		return err
	}

	logger.Info().
		Str("list_id", listID).
		Msg("List deleted with its gifts")

	return nil
}
