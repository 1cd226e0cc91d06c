package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(rm *fakeRepoManager, n int) {
	for i := range n {
		rm.u.add(&models.User{
			UserName: fmt.Sprintf("user%02d", i),
			Email:    fmt.Sprintf("user%02d@example.com", i),
			IsActive: true,
		})
	}
}

func TestUserService_List(t *testing.T) {
	rm := newFakeRepoManager()
	seedUsers(rm, 25)
	svc := NewUserService(nil, rm, logging.Nop{})

	tests := []struct {
		name      string
		page      int
		size      int
		wantCount int
		wantFirst string
	}{
		{"first page", 1, 10, 10, "user00"},
		{"last partial page", 3, 10, 5, "user20"},
		{"beyond the end", 4, 10, 0, ""},
		{"max size", 1, MaxPageSize, 25, "user00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(context.Background(), tt.page, tt.size)
			require.NoError(t, err)
			assert.Equal(t, 25, page.Total)
			assert.Equal(t, tt.page, page.Page)
			assert.Equal(t, tt.size, page.Size)
			require.Len(t, page.Users, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, page.Users[0].UserName)
			}
		})
	}
}

func TestUserService_ListValidation(t *testing.T) {
	svc := NewUserService(nil, newFakeRepoManager(), logging.Nop{})

	for _, tc := range []struct{ page, size int }{{0, 10}, {1, 0}, {1, MaxPageSize + 1}, {-1, -1}} {
		_, err := svc.List(context.Background(), tc.page, tc.size)
		assert.ErrorIs(t, err, common.ErrorValidation, "page=%d size=%d", tc.page, tc.size)
	}
}

func TestUserService_Get(t *testing.T) {
	rm := newFakeRepoManager()
	alice := rm.u.add(&models.User{UserName: "alice", Email: "alice@example.com", IsActive: true})
	svc := NewUserService(nil, rm, logging.Nop{})

	got, err := svc.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.Get(context.Background(), "11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserService_SetActive(t *testing.T) {
	rm := newFakeRepoManager()
	alice := rm.u.add(&models.User{UserName: "alice", Email: "alice@example.com", IsActive: true})
	svc := NewUserService(nil, rm, logging.Nop{})
	ctx := context.Background()

	msg, err := svc.SetActive(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "User disabled successfully", msg)
	assert.False(t, rm.u.stored(alice.ID).IsActive)

	msg, err = svc.SetActive(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "User enabled successfully", msg)
	assert.True(t, rm.u.stored(alice.ID).IsActive)

	_, err = svc.SetActive(ctx, "11111111-1111-1111-1111-111111111111", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserService_Delete(t *testing.T) {
	rm := newFakeRepoManager()
	alice := rm.u.add(&models.User{UserName: "alice", Email: "alice@example.com", IsActive: true})
	svc := NewUserService(nil, rm, logging.Nop{})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, alice.ID))
	assert.Nil(t, rm.u.stored(alice.ID))

	assert.ErrorIs(t, svc.Delete(ctx, alice.ID), common.ErrorNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "x"), common.ErrorNotFound)
}

func TestUserService_StorageErrorsAreInternal(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.err = errors.New("db down")
	svc := NewUserService(nil, rm, logging.Nop{})

	_, err := svc.List(context.Background(), 1, 10)
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = svc.Get(context.Background(), "11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
