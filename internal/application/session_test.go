package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/infrastructure/storage"
)

func TestSessionService_Flow(t *testing.T) {
	svc := NewSessionService(storage.NewMemorySessionRepository())
	ctx := context.Background()

	session, err := svc.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)

	session, err = svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, session.State)

	session, err = svc.BeginProcessing(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, session.State)

	session, err = svc.Reset(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)

	other, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, other.State)
}

func TestSessionService_PhotoWithoutCheck(t *testing.T) {
	svc := NewSessionService(storage.NewMemorySessionRepository())
	ctx := context.Background()

	session, err := svc.BeginProcessing(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, entity.StateMainMenu, session.State)

	stored, err := svc.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State)
}

func TestSessionService_BusyWhileProcessing(t *testing.T) {
	svc := NewSessionService(storage.NewMemorySessionRepository())
	ctx := context.Background()

	_, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.BeginProcessing(ctx, 1, 10)
	require.NoError(t, err)

	// второе фото или /check не должны перехватить идущую проверку
	session, err := svc.BeginProcessing(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, entity.StateProcessing, session.State)

	session, err = svc.BeginCheck(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, entity.StateProcessing, session.State)

	session, err = svc.Reset(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
}
