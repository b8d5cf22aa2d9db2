package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devmate-be/internal/entity"
	"devmate-be/internal/repository/specification"
	"devmate-be/internal/repository/unitofwork"
	"devmate-be/internal/websocket"
	"devmate-be/pkg/events"
	pktNats "devmate-be/pkg/nats"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrRequestNotFound   = errors.New("connection request not found")
	ErrNotRequestTarget  = errors.New("request is not addressed to this user")
	ErrRequestNotPending = errors.New("request is not pending review")
	ErrSelfRequest       = errors.New("cannot send a request to yourself")
	ErrDuplicateRequest  = errors.New("a request already exists between these users")
	ErrUserNotFound      = errors.New("user not found")
)

type PendingRequest struct {
	Request  *entity.ConnectionRequest
	FromUser *entity.User
}

type IConnectionService interface {
	SendRequest(ctx context.Context, fromID, toID uuid.UUID, status entity.ConnectionStatus) (*entity.ConnectionRequest, error)
	Review(ctx context.Context, reviewerID, requestID uuid.UUID, status entity.ConnectionStatus) (*entity.ConnectionRequest, error)
	Pending(ctx context.Context, userID uuid.UUID) ([]PendingRequest, error)
	Connections(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
	AreConnected(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
}

type connectionService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher

	// rosterCache memoizes AreConnected per pair. The websocket hub hits this
	// on every join, so the check must not reach the database each time.
	rosterCache *gocache.Cache
}

func NewConnectionService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher, rosterTTL time.Duration) IConnectionService {
	return &connectionService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		rosterCache:    gocache.New(rosterTTL, 2*rosterTTL),
	}
}

func (s *connectionService) SendRequest(ctx context.Context, fromID, toID uuid.UUID, status entity.ConnectionStatus) (*entity.ConnectionRequest, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}
	if status != entity.ConnectionStatusInterested && status != entity.ConnectionStatusIgnored {
		return nil, fmt.Errorf("invalid request status %q", status)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	target, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: toID})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := uow.ConnectionRepository().FindOne(ctx, specification.ByPair{UserA: fromID, UserB: toID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	request := &entity.ConnectionRequest{
		Id:         uuid.New(),
		FromUserId: fromID,
		ToUserId:   toID,
		Status:     status,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := uow.ConnectionRepository().Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *connectionService) Review(ctx context.Context, reviewerID, requestID uuid.UUID, status entity.ConnectionStatus) (*entity.ConnectionRequest, error) {
	if !status.IsReviewOutcome() {
		return nil, fmt.Errorf("invalid review status %q", status)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.ConnectionRepository().FindOne(ctx, specification.ByID{ID: requestID})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.ToUserId != reviewerID {
		return nil, ErrNotRequestTarget
	}
	if request.Status != entity.ConnectionStatusInterested {
		return nil, ErrRequestNotPending
	}

	request.Status = status
	request.UpdatedAt = time.Now()
	if err := uow.ConnectionRepository().Update(ctx, request); err != nil {
		return nil, err
	}

	// A fresh accept must be visible to the hub immediately.
	s.rosterCache.Delete(rosterCacheKey(request.FromUserId, request.ToUserId))

	if status == entity.ConnectionStatusAccepted && s.eventPublisher != nil {
		event := events.BaseEvent{
			Type: "CONNECTION_ACCEPTED",
			Data: map[string]interface{}{
				"request_id":   request.Id,
				"from_user_id": request.FromUserId,
				"to_user_id":   request.ToUserId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish CONNECTION_ACCEPTED event: %v\n", err)
		}
	}

	return request, nil
}

func (s *connectionService) Pending(ctx context.Context, userID uuid.UUID) ([]PendingRequest, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	requests, err := uow.ConnectionRepository().FindAll(ctx,
		specification.ByToUser{UserID: userID},
		specification.ByStatus{Status: string(entity.ConnectionStatusInterested)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]PendingRequest, 0, len(requests))
	for _, req := range requests {
		from, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.FromUserId})
		if err != nil {
			return nil, err
		}
		if from == nil {
			continue
		}
		result = append(result, PendingRequest{Request: req, FromUser: from})
	}
	return result, nil
}

func (s *connectionService) Connections(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	requests, err := uow.ConnectionRepository().FindAll(ctx,
		specification.InvolvingUser{UserID: userID},
		specification.ByStatus{Status: string(entity.ConnectionStatusAccepted)},
	)
	if err != nil {
		return nil, err
	}

	peers := make([]*entity.User, 0, len(requests))
	for _, req := range requests {
		peerID := req.FromUserId
		if peerID == userID {
			peerID = req.ToUserId
		}
		peer, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: peerID})
		if err != nil {
			return nil, err
		}
		if peer == nil {
			continue
		}
		peers = append(peers, peer)
	}
	return peers, nil
}

// AreConnected implements the hub's roster check with a short-lived cache.
func (s *connectionService) AreConnected(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	key := rosterCacheKey(userID, targetID)
	if cached, found := s.rosterCache.Get(key); found {
		return cached.(bool), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ConnectionRepository().Count(ctx,
		specification.ByPair{UserA: userID, UserB: targetID},
		specification.ByStatus{Status: string(entity.ConnectionStatusAccepted)},
	)
	if err != nil {
		return false, err
	}

	connected := count > 0
	s.rosterCache.SetDefault(key, connected)
	return connected, nil
}

func rosterCacheKey(a, b uuid.UUID) string {
	return websocket.RoomID(a, b)
}
