package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/backend/internal/models"
	"todo-tracker/backend/internal/repositories"
	"todo-tracker/backend/internal/testutil"
)

func TestTaskRepository_Insert(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)
	owner := uuid.Must(uuid.NewV4())

	task, err := repo.Insert(context.Background(), owner, "Buy milk", "2%")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2%", task.Description)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskRepository_InsertValidates(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)

	_, err := repo.Insert(context.Background(), uuid.Must(uuid.NewV4()), "", "x")
	assert.True(t, models.IsValidationError(err))

	_, err = repo.Insert(context.Background(), uuid.Nil, "x", "y")
	assert.True(t, models.IsValidationError(err))
}

func TestTaskRepository_FindAllByOwner(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)
	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	ctx := context.Background()

	_, err := repo.Insert(ctx, alice, "A", "a")
	require.NoError(t, err)
	_, err = repo.Insert(ctx, alice, "B", "b")
	require.NoError(t, err)
	_, err = repo.Insert(ctx, bob, "C", "c")
	require.NoError(t, err)

	tasks, err := repo.FindAllByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "A", tasks[0].Title)
	assert.Equal(t, "B", tasks[1].Title)
	for _, task := range tasks {
		assert.Equal(t, alice, task.UserID)
	}
}

func TestTaskRepository_FindAllByOwnerEmpty(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)

	tasks, err := repo.FindAllByOwner(context.Background(), uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_DeleteByID(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	task, err := repo.Insert(ctx, owner, "A", "a")
	require.NoError(t, err)

	deleted, err := repo.DeleteByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)
	assert.Equal(t, "A", deleted.Title)

	tasks, err := repo.FindAllByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = repo.DeleteByID(ctx, task.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTaskRepository_UpdateByID(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)
	ctx := context.Background()
	task, err := repo.Insert(ctx, uuid.Must(uuid.NewV4()), "A", "a")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	updated, err := repo.UpdateByID(ctx, task.ID, models.TaskUpdate{Title: "B", Description: "b"})
	require.NoError(t, err)

	assert.Equal(t, task.ID, updated.ID)
	assert.Equal(t, task.UserID, updated.UserID)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "b", updated.Description)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt), "updatedAt should advance")
}

func TestTaskRepository_UpdateByIDMissing(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)

	_, err := repo.UpdateByID(context.Background(), uuid.Must(uuid.NewV4()), models.TaskUpdate{Title: "B", Description: "b"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTaskRepository_UpdateByIDValidates(t *testing.T) {
	repo := repositories.NewTaskRepository(testutil.NewTestPool(t).DB)

	_, err := repo.UpdateByID(context.Background(), uuid.Must(uuid.NewV4()), models.TaskUpdate{Title: "B"})
	assert.True(t, models.IsValidationError(err))
}

func TestTaskRepository_ClosedDatabase(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := repositories.NewTaskRepository(pool.DB)
	require.NoError(t, pool.Close())
	ctx := context.Background()

	_, err := repo.Insert(ctx, uuid.Must(uuid.NewV4()), "A", "a")
	assert.ErrorIs(t, err, models.ErrInfrastructure)

	_, err = repo.FindAllByOwner(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, models.ErrInfrastructure)

	_, err = repo.DeleteByID(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, models.ErrInfrastructure)
}
