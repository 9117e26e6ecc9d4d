package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedList(t *testing.T, titles ...string) TaskList {
	t.Helper()

	var list TaskList
	for _, title := range titles {
		task, err := NewTask("alice", title, testNow)
		require.NoError(t, err)
		list, err = list.Add(task)
		require.NoError(t, err)
	}
	return list
}

func TestNewTask(t *testing.T) {
	task, err := NewTask("alice", "buy milk", testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "alice", task.Owner)
	assert.Equal(t, "buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.Equal(t, testNow, task.UpdatedAt)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := NewTask("alice", title, testNow)
		assert.ErrorIs(t, err, ErrEmptyTitle, "title %q", title)
	}
}

func TestTaskList_Add(t *testing.T) {
	list := seedList(t, "one")

	task, err := NewTask("alice", "two", testNow)
	require.NoError(t, err)

	updated, err := list.Add(task)
	require.NoError(t, err)
	assert.Len(t, updated, 2)
	assert.Len(t, list, 1, "receiver must not change")

	_, err = updated.Add(task)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = list.Add(Task{ID: "x", Title: " "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestTaskList_Toggle(t *testing.T) {
	list := seedList(t, "one", "two")
	later := testNow.Add(time.Minute)

	updated, task, err := list.Toggle(list[1].ID, later)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, later, task.UpdatedAt)
	assert.True(t, updated[1].Completed)
	assert.False(t, list[1].Completed, "receiver must not change")

	again, task, err := updated.Toggle(list[1].ID, later)
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.False(t, again[1].Completed)

	_, _, err = list.Toggle("missing", later)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskList_UpdateTitle(t *testing.T) {
	list := seedList(t, "one")

	updated, task, err := list.UpdateTitle(list[0].ID, "renamed", testNow)
	require.NoError(t, err)
	assert.Equal(t, "renamed", task.Title)
	assert.Equal(t, "renamed", updated[0].Title)
	assert.Equal(t, "one", list[0].Title)

	_, _, err = list.UpdateTitle(list[0].ID, "  ", testNow)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, _, err = list.UpdateTitle("missing", "x", testNow)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskList_Replace(t *testing.T) {
	list := seedList(t, "one")

	_, task, err := list.Replace(Task{ID: list[0].ID, Title: "done", Completed: true}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "done", task.Title)
	assert.True(t, task.Completed)
	assert.Equal(t, list[0].CreatedAt, task.CreatedAt)

	_, _, err = list.Replace(Task{ID: "missing", Title: "x"}, testNow)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskList_Delete(t *testing.T) {
	list := seedList(t, "one", "two", "three")

	updated, err := list.Delete(list[1].ID)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, "one", updated[0].Title)
	assert.Equal(t, "three", updated[1].Title)
	assert.Len(t, list, 3)
	assert.Equal(t, "two", list[1].Title)

	_, err = list.Delete("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, ok := updated.Find(list[1].ID)
	assert.False(t, ok)
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, Credentials{Identifier: "alice", Password: "pw"}.Validate())
	assert.ErrorIs(t, Credentials{Identifier: "", Password: "pw"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Credentials{Password: "pw"}.Validate(), ErrInvalidInput)

	// whitespace counts as a value in both fields
	assert.NoError(t, Credentials{Identifier: " ", Password: "pw"}.Validate())
	assert.NoError(t, Credentials{Identifier: "alice", Password: " "}.Validate())
	assert.ErrorIs(t, Credentials{Identifier: "alice"}.Validate(), ErrInvalidInput)
}
