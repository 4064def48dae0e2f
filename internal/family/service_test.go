package family

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/user"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, parentID, athleteID int, rel Relationship) (*Link, error) {
	args := m.Called(ctx, parentID, athleteID, rel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Link), args.Error(1)
}

func (m *MockRepository) ListByParent(ctx context.Context, parentID int) ([]Link, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Link), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Link), args.Error(1)
}

func (m *MockRepository) ListPendingForAthlete(ctx context.Context, athleteID int) ([]Link, error) {
	args := m.Called(ctx, athleteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Link), args.Error(1)
}

func (m *MockRepository) Confirm(ctx context.Context, id int) (*Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Link), args.Error(1)
}

func (m *MockRepository) ConfirmedAthleteIDs(ctx context.Context, parentID int) ([]int, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockRepository) IsLinked(ctx context.Context, parentID, athleteID int) (bool, error) {
	args := m.Called(ctx, parentID, athleteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Deactivate(ctx context.Context, parentID, athleteID int) error {
	args := m.Called(ctx, parentID, athleteID)
	return args.Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

var parent = auth.Actor{ID: 10, Role: auth.RoleParent}

func TestService_Link(t *testing.T) {
	repo := new(MockRepository)
	users := new(mockUsers)
	users.On("FindByID", mock.Anything, 21).Return(&user.User{ID: 21, Name: "Timur", Role: auth.RoleAthlete}, nil)
	repo.On("Upsert", mock.Anything, 10, 21, RelationshipFather).Return(&Link{
		ID: 1, ParentID: 10, AthleteID: 21, Relationship: RelationshipFather, IsActive: true,
	}, nil)

	svc := NewService(repo, users)
	link, err := svc.Link(context.Background(), parent, CreateLinkRequest{AthleteID: 21, Relationship: "father"})

	require.NoError(t, err)
	assert.Equal(t, "Timur", link.AthleteName)
	assert.True(t, link.IsActive)
	assert.False(t, link.Confirmed(), "a new link waits for the athlete")
	repo.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestService_Link_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   auth.Actor
		req     CreateLinkRequest
		setup   func(*mockUsers)
		wantErr error
	}{
		{
			name:    "athlete cannot link",
			actor:   auth.Actor{ID: 21, Role: auth.RoleAthlete},
			req:     CreateLinkRequest{AthleteID: 22, Relationship: "guardian"},
			setup:   func(*mockUsers) {},
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "unknown relationship",
			actor:   parent,
			req:     CreateLinkRequest{AthleteID: 21, Relationship: "uncle"},
			setup:   func(*mockUsers) {},
			wantErr: apperr.ErrInvalidInput,
		},
		{
			name:  "target is a coach",
			actor: parent,
			req:   CreateLinkRequest{AthleteID: 5, Relationship: "mother"},
			setup: func(m *mockUsers) {
				m.On("FindByID", mock.Anything, 5).Return(&user.User{ID: 5, Role: auth.RoleCoach}, nil)
			},
			wantErr: ErrNotAnAthlete,
		},
		{
			name:  "target does not exist",
			actor: parent,
			req:   CreateLinkRequest{AthleteID: 99, Relationship: "mother"},
			setup: func(m *mockUsers) {
				m.On("FindByID", mock.Anything, 99).Return(nil, user.ErrUserNotFound)
			},
			wantErr: apperr.ErrEntityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			users := new(mockUsers)
			tt.setup(users)

			_, err := NewService(repo, users).Link(context.Background(), tt.actor, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Unlink(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Deactivate", mock.Anything, 10, 21).Return(nil).Once()
	repo.On("Deactivate", mock.Anything, 10, 21).Return(ErrLinkNotFound).Once()

	svc := NewService(repo, new(mockUsers))

	require.NoError(t, svc.Unlink(context.Background(), parent, 21))
	err := svc.Unlink(context.Background(), parent, 21)
	assert.ErrorIs(t, err, apperr.ErrEntityNotFound)

	err = svc.Unlink(context.Background(), auth.Actor{ID: 3, Role: auth.RoleCoach}, 21)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	repo.AssertExpectations(t)
}

func TestService_List_ParentsOnly(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByParent", mock.Anything, 10).Return([]Link{{ID: 1, ParentID: 10, AthleteID: 21}}, nil)

	svc := NewService(repo, new(mockUsers))

	links, err := svc.List(context.Background(), parent)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	_, err = svc.List(context.Background(), auth.Actor{ID: 21, Role: auth.RoleAthlete})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRelationship_Valid(t *testing.T) {
	assert.True(t, RelationshipFather.Valid())
	assert.True(t, RelationshipMother.Valid())
	assert.True(t, RelationshipGuardian.Valid())
	assert.False(t, Relationship("uncle").Valid())
}

var (
	athlete = auth.Actor{ID: 21, Role: auth.RoleAthlete}
	pending = &Link{ID: 7, ParentID: 10, AthleteID: 21, Relationship: RelationshipMother, IsActive: true}
)

func TestService_Confirm(t *testing.T) {
	confirmedAt := time.Now()
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(pending, nil)
	repo.On("Confirm", mock.Anything, 7).Return(&Link{
		ID: 7, ParentID: 10, AthleteID: 21, Relationship: RelationshipMother, IsActive: true, ConfirmedAt: &confirmedAt,
	}, nil)

	link, err := NewService(repo, new(mockUsers)).Confirm(context.Background(), athlete, 7)

	require.NoError(t, err)
	assert.True(t, link.Confirmed())
	repo.AssertExpectations(t)
}

func TestService_Confirm_AlreadyConfirmed(t *testing.T) {
	confirmedAt := time.Now()
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(&Link{
		ID: 7, ParentID: 10, AthleteID: 21, IsActive: true, ConfirmedAt: &confirmedAt,
	}, nil)

	link, err := NewService(repo, new(mockUsers)).Confirm(context.Background(), athlete, 7)

	require.NoError(t, err)
	assert.True(t, link.Confirmed())
	repo.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestService_Confirm_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   auth.Actor
		link    *Link
		wantErr error
	}{
		{
			name:    "parent cannot confirm own request",
			actor:   parent,
			link:    pending,
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "coach cannot confirm",
			actor:   auth.Actor{ID: 3, Role: auth.RoleCoach},
			link:    pending,
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "another athlete",
			actor:   auth.Actor{ID: 22, Role: auth.RoleAthlete},
			link:    pending,
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "link was withdrawn",
			actor:   athlete,
			link:    &Link{ID: 7, ParentID: 10, AthleteID: 21, IsActive: false},
			wantErr: ErrLinkNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetByID", mock.Anything, 7).Return(tt.link, nil).Maybe()

			_, err := NewService(repo, new(mockUsers)).Confirm(context.Background(), tt.actor, 7)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Confirm_LostRace(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(pending, nil)
	repo.On("Confirm", mock.Anything, 7).Return(nil, apperr.ErrConflictingUpdate)

	_, err := NewService(repo, new(mockUsers)).Confirm(context.Background(), athlete, 7)

	assert.ErrorIs(t, err, apperr.ErrConflictingUpdate)
}

func TestService_Reject(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(pending, nil)
	repo.On("Deactivate", mock.Anything, 10, 21).Return(nil)

	svc := NewService(repo, new(mockUsers))

	require.NoError(t, svc.Reject(context.Background(), athlete, 7))
	assert.ErrorIs(t, svc.Reject(context.Background(), parent, 7), apperr.ErrUnauthorized)
	repo.AssertNumberOfCalls(t, "Deactivate", 1)
}

func TestService_PendingRequests_AthletesOnly(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListPendingForAthlete", mock.Anything, 21).Return([]Link{*pending}, nil)

	svc := NewService(repo, new(mockUsers))

	links, err := svc.PendingRequests(context.Background(), athlete)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	_, err = svc.PendingRequests(context.Background(), parent)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestService_AthleteIDs_ConfirmedOnly(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ConfirmedAthleteIDs", mock.Anything, 10).Return([]int{22}, nil)

	ids, err := NewService(repo, new(mockUsers)).AthleteIDs(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []int{22}, ids)
}
