package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// ClubService exposes read access to clubs
type ClubService interface {
	List(ctx context.Context, filter *dto.ClubFilterRequest) (*dto.ClubListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClubResponse, error)
	ListPresided(ctx context.Context, actor auth.Actor) ([]dto.ClubResponse, error)
}

type clubServiceImpl struct {
	clubs       ClubStore
	memberships MembershipStore
	authz       *auth.AuthorizationService
	logger      zerolog.Logger
}

// NewClubService creates a new ClubService
func NewClubService(stores Stores, authz *auth.AuthorizationService, logger zerolog.Logger) ClubService {
	return &clubServiceImpl{
		clubs:       stores.Clubs,
		memberships: stores.Memberships,
		authz:       authz,
		logger:      logger,
	}
}

// List returns a page of active clubs
func (s *clubServiceImpl) List(ctx context.Context, filter *dto.ClubFilterRequest) (*dto.ClubListResponse, error) {
	if filter == nil {
		filter = &dto.ClubFilterRequest{}
	}
	offset, limit, page := pageOf(filter.PageRequest)
	clubs, total, err := s.clubs.List(ctx, models.ClubFilter{
		Search:     strings.TrimSpace(filter.Search),
		ActiveOnly: true,
	}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing clubs: %w", err)
	}

	items, err := s.withCounts(ctx, clubs)
	if err != nil {
		return nil, err
	}
	return &dto.ClubListResponse{
		Clubs:      items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Get returns a club with its approved member count
func (s *clubServiceImpl) Get(ctx context.Context, id uuid.UUID) (*dto.ClubResponse, error) {
	if err := requireID(id, "Club ID"); err != nil {
		return nil, err
	}
	club, err := s.clubs.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Club not found")
	}
	count, err := s.memberships.CountApproved(ctx, club.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting members: %w", err)
	}
	resp := dto.NewClubResponse(club, count)
	return &resp, nil
}

// ListPresided returns the active clubs the actor presides over
func (s *clubServiceImpl) ListPresided(ctx context.Context, actor auth.Actor) ([]dto.ClubResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	clubs, err := s.authz.PresidedClubs(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, clubs)
}

func (s *clubServiceImpl) withCounts(ctx context.Context, clubs []*models.Club) ([]dto.ClubResponse, error) {
	items := make([]dto.ClubResponse, 0, len(clubs))
	for _, c := range clubs {
		count, err := s.memberships.CountApproved(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("error counting members: %w", err)
		}
		items = append(items, dto.NewClubResponse(c, count))
	}
	return items, nil
}
