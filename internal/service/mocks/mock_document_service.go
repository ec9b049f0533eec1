package mocks

import (
	"context"

	"doctrack/internal/model"
	"doctrack/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) Create(ctx context.Context, actor model.User, in service.CreateDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor model.User, id string) (*model.Document, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) History(ctx context.Context, actor model.User, id string) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}

func (m *MockDocumentService) ListOwned(ctx context.Context, actor model.User) ([]model.Document, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) ListShared(ctx context.Context, actor model.User) ([]model.Document, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) UpdateStatus(ctx context.Context, actor model.User, id string, status model.DocumentStatus, comment string) error {
	args := m.Called(ctx, actor, id, status, comment)
	return args.Error(0)
}

func (m *MockDocumentService) AddComment(ctx context.Context, actor model.User, id, text string) error {
	args := m.Called(ctx, actor, id, text)
	return args.Error(0)
}

func (m *MockDocumentService) UpdateTeam(ctx context.Context, actor model.User, id, teamID string) error {
	args := m.Called(ctx, actor, id, teamID)
	return args.Error(0)
}

func (m *MockDocumentService) UpdateAssignment(ctx context.Context, actor model.User, id, assigneeID string) error {
	args := m.Called(ctx, actor, id, assigneeID)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor model.User, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, actor model.User, id string) (string, error) {
	args := m.Called(ctx, actor, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Open(ctx context.Context, actor model.User, id string) (*service.File, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.File), args.Error(1)
}
