package trip

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fkhayef/tripsplit/internal/activity"
)

// Common errors
var (
	ErrTripNotFound        = errors.New("trip not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this trip")
	ErrNotMember           = errors.New("you are not a member of this trip")
	ErrInsufficientRole    = errors.New("your role does not allow this action")
	ErrLastOwner           = errors.New("a trip must keep at least one owner")
)

// Store is the persistence the trip service needs; *Repository implements it
type Store interface {
	CreateWithOwner(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id string) (*Trip, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Trip, int, error)
	Update(ctx context.Context, t *Trip) error
	Delete(ctx context.Context, id string) error
	GetMember(ctx context.Context, tripID, userID string) (*Member, error)
	ListMembers(ctx context.Context, tripID string) ([]*Member, error)
	AddMember(ctx context.Context, m *Member) error
	UpdateMemberRole(ctx context.Context, tripID, userID string, role Role) error
	RemoveMember(ctx context.Context, tripID, userID string) error
}

// ActivityRecorder logs a mutation without blocking or failing the caller
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry)
}

// Service handles trip and membership business logic
type Service struct {
	repo            Store
	activity        ActivityRecorder
	defaultCurrency string
}

// NewService creates a new trip service
func NewService(repo Store, recorder ActivityRecorder, defaultCurrency string) *Service {
	return &Service{repo: repo, activity: recorder, defaultCurrency: defaultCurrency}
}

// Create creates a new trip and makes the creator its owner
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateTripRequest) (*Trip, error) {
	t, err := req.toTrip(s.defaultCurrency)
	if err != nil {
		return nil, err
	}
	t.ID = uuid.NewString()
	t.CreatedBy = creatorID

	if err := s.repo.CreateWithOwner(ctx, t); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		TripID:     t.ID,
		UserID:     creatorID,
		Action:     activity.ActionCreatedTrip,
		EntityType: activity.EntityTrip,
		EntityID:   t.ID,
		Metadata:   map[string]any{"name": t.Name},
	})
	return t, nil
}

// GetByID retrieves a trip by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTripNotFound
	}
	return t, nil
}

// GetWithMembers retrieves a trip with all its members
func (s *Service) GetWithMembers(ctx context.Context, id string) (*Trip, []*Member, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return t, members, nil
}

// ListForUser retrieves a page of the trips a user belongs to
func (s *Service) ListForUser(ctx context.Context, userID string, page, perPage int) ([]*Trip, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUser(ctx, userID, perPage, offset)
}

// Update modifies an existing trip
func (s *Service) Update(ctx context.Context, id string, req *UpdateTripRequest) (*Trip, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.apply(t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a trip and everything recorded on it
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Members retrieves all members of a trip
func (s *Service) Members(ctx context.Context, tripID string) ([]*Member, error) {
	return s.repo.ListMembers(ctx, tripID)
}

// MemberIDs returns the user IDs on a trip
func (s *Service) MemberIDs(ctx context.Context, tripID string) ([]string, error) {
	members, err := s.repo.ListMembers(ctx, tripID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

// TripCurrency returns the currency a trip records amounts in
func (s *Service) TripCurrency(ctx context.Context, tripID string) (string, error) {
	t, err := s.GetByID(ctx, tripID)
	if err != nil {
		return "", err
	}
	return t.Currency, nil
}

// AddMember adds a user to a trip, as a viewer unless a role is given
func (s *Service) AddMember(ctx context.Context, tripID, actorID string, req *AddMemberRequest) (*Member, error) {
	if req.UserID == "" {
		return nil, ErrUserIDRequired
	}
	role := req.Role
	if role == "" {
		role = RoleViewer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	m := &Member{TripID: tripID, UserID: req.UserID, Role: role}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     actorID,
		Action:     activity.ActionAddedMember,
		EntityType: activity.EntityMember,
		EntityID:   m.UserID,
		Metadata:   map[string]any{"role": string(role)},
	})
	return m, nil
}

// UpdateMemberRole changes a member's role. The last owner cannot be demoted.
func (s *Service) UpdateMemberRole(ctx context.Context, tripID, actorID, userID string, req *UpdateMemberRequest) (*Member, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	m, err := s.repo.GetMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	if m.Role == RoleOwner && req.Role != RoleOwner {
		if err := s.ensureAnotherOwner(ctx, tripID, userID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateMemberRole(ctx, tripID, userID, req.Role); err != nil {
		return nil, err
	}
	from := m.Role
	m.Role = req.Role

	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     actorID,
		Action:     activity.ActionUpdatedMemberRole,
		EntityType: activity.EntityMember,
		EntityID:   userID,
		Metadata:   map[string]any{"from": string(from), "to": string(req.Role)},
	})
	return m, nil
}

// RemoveMember removes a user from a trip. The last owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, tripID, actorID, userID string) error {
	m, err := s.repo.GetMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMemberNotFound
	}
	if m.Role == RoleOwner {
		if err := s.ensureAnotherOwner(ctx, tripID, userID); err != nil {
			return err
		}
	}

	if err := s.repo.RemoveMember(ctx, tripID, userID); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     actorID,
		Action:     activity.ActionRemovedMember,
		EntityType: activity.EntityMember,
		EntityID:   userID,
	})
	return nil
}

// RequireRole checks that userID is on the trip with at least min and
// returns their role
func (s *Service) RequireRole(ctx context.Context, tripID, userID string, min Role) (Role, error) {
	m, err := s.repo.GetMember(ctx, tripID, userID)
	if err != nil {
		return "", err
	}
	if m == nil {
		t, err := s.repo.GetByID(ctx, tripID)
		if err != nil {
			return "", err
		}
		if t == nil {
			return "", ErrTripNotFound
		}
		return "", ErrNotMember
	}
	if !m.Role.AtLeast(min) {
		return m.Role, ErrInsufficientRole
	}
	return m.Role, nil
}

func (s *Service) ensureAnotherOwner(ctx context.Context, tripID, userID string) error {
	members, err := s.repo.ListMembers(ctx, tripID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.Role == RoleOwner && m.UserID != userID {
			return nil
		}
	}
	return ErrLastOwner
}
