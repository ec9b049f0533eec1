package mocks

import (
	"context"

	"doctrack/internal/model"
	"doctrack/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTeamService struct {
	mock.Mock
}

var _ service.TeamService = (*MockTeamService)(nil)

func (m *MockTeamService) Create(ctx context.Context, actor model.User, name string) (*model.Team, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamService) ListForUser(ctx context.Context, actor model.User) ([]model.Team, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Team), args.Error(1)
}

func (m *MockTeamService) Members(ctx context.Context, actor model.User, teamID string) ([]model.TeamMember, error) {
	args := m.Called(ctx, actor, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamMember), args.Error(1)
}

func (m *MockTeamService) AddMemberByEmail(ctx context.Context, actor model.User, teamID, email string, role model.TeamRole) (*model.TeamMember, error) {
	args := m.Called(ctx, actor, teamID, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamMember), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, actor model.User, teamID, targetUserID string) error {
	args := m.Called(ctx, actor, teamID, targetUserID)
	return args.Error(0)
}

func (m *MockTeamService) Leave(ctx context.Context, actor model.User, teamID string) error {
	args := m.Called(ctx, actor, teamID)
	return args.Error(0)
}

func (m *MockTeamService) TransferOwnership(ctx context.Context, actor model.User, teamID, targetUserID string) error {
	args := m.Called(ctx, actor, teamID, targetUserID)
	return args.Error(0)
}

func (m *MockTeamService) Delete(ctx context.Context, actor model.User, teamID string) error {
	args := m.Called(ctx, actor, teamID)
	return args.Error(0)
}
