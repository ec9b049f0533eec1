package mocks

import (
	"context"
	"time"

	"doctrack/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) NextTrackingSequence(ctx context.Context, ownerID string, year int) (int, error) {
	args := m.Called(ctx, ownerID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) CreateWithHistory(ctx context.Context, doc *model.Document, entry *model.HistoryEntry) (*model.Document, error) {
	args := m.Called(ctx, doc, entry)
	if f, ok := args.Get(0).(func(context.Context, *model.Document, *model.HistoryEntry) *model.Document); ok {
		return f(ctx, doc, entry), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByTeams(ctx context.Context, teamIDs []string) ([]model.Document, error) {
	args := m.Called(ctx, teamIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, at time.Time, entry *model.HistoryEntry) error {
	args := m.Called(ctx, id, status, at, entry)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateTeam(ctx context.Context, id, teamID string, at time.Time) error {
	args := m.Called(ctx, id, teamID, at)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateAssignment(ctx context.Context, id, assigneeID, assigneeName string, at time.Time) error {
	args := m.Called(ctx, id, assigneeID, assigneeName, at)
	return args.Error(0)
}

func (m *MockDocumentRepository) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListHistory(ctx context.Context, documentID string) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
