package media

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, string) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	return NewService(NewRepository(db), store), mock, dir
}

func expectMembership(mock sqlmock.Sqlmock, groupID, userID int64, isMember bool) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(groupID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(isMember))
}

func storedFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestUpload(t *testing.T) {
	svc, mock, dir := newTestService(t)

	expectMembership(mock, 5, 1, true)
	mock.ExpectQuery(`INSERT INTO media`).
		WithArgs(int64(5), int64(1), "trip.jpg", sqlmock.AnyArg(), "image/jpeg").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(77, time.Now()))

	m, err := svc.Upload(context.Background(), 1, 5, strings.NewReader("fake image bytes"), "trip.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, int64(77), m.ID)
	assert.Equal(t, "trip.jpg", m.FileName)

	files := storedFiles(t, dir)
	require.Len(t, files, 1)
	content, err := os.ReadFile(m.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(content))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadForbiddenForNonMember(t *testing.T) {
	svc, mock, dir := newTestService(t)

	expectMembership(mock, 5, 9, false)

	_, err := svc.Upload(context.Background(), 9, 5, strings.NewReader("data"), "x.png", "image/png")
	assert.ErrorIs(t, err, ErrNotMember)
	assert.Empty(t, storedFiles(t, dir), "no bytes may be stored for a rejected upload")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadCleansUpWhenInsertFails(t *testing.T) {
	svc, mock, dir := newTestService(t)

	expectMembership(mock, 5, 1, true)
	mock.ExpectQuery(`INSERT INTO media`).
		WithArgs(int64(5), int64(1), "x.png", sqlmock.AnyArg(), "image/png").
		WillReturnError(errors.New("connection reset"))

	_, err := svc.Upload(context.Background(), 1, 5, strings.NewReader("data"), "x.png", "image/png")
	require.Error(t, err)
	assert.Empty(t, storedFiles(t, dir), "stored file must be removed when the metadata insert fails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByGroup(t *testing.T) {
	svc, mock, _ := newTestService(t)

	expectMembership(mock, 5, 1, true)
	mock.ExpectQuery(`FROM media`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "user_id", "file_name", "file_path", "file_type", "uploaded_at"}).
			AddRow(1, 5, 1, "a.jpg", "/tmp/a", "image/jpeg", time.Now()).
			AddRow(2, 5, 2, "b.mp4", "/tmp/b", "video/mp4", time.Now()))

	items, err := svc.ListByGroup(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b.mp4", items[1].FileName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByGroupForbidden(t *testing.T) {
	svc, mock, _ := newTestService(t)

	expectMembership(mock, 5, 9, false)

	_, err := svc.ListByGroup(context.Background(), 9, 5)
	assert.ErrorIs(t, err, ErrNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForDownload(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`JOIN group_members gm ON m.group_id = gm.group_id`).
		WithArgs(int64(77), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "user_id", "file_name", "file_path", "file_type", "uploaded_at"}).
			AddRow(77, 5, 2, "trip.jpg", "/tmp/trip", "image/jpeg", time.Now()))

	m, err := svc.GetForDownload(context.Background(), 1, 77)
	require.NoError(t, err)
	assert.Equal(t, "trip.jpg", m.FileName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForDownloadForbidden(t *testing.T) {
	svc, mock, _ := newTestService(t)

	// The membership join returns nothing both for unknown media and for a
	// caller outside the owning group; either way the answer is forbidden.
	mock.ExpectQuery(`JOIN group_members gm ON m.group_id = gm.group_id`).
		WithArgs(int64(77), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "user_id", "file_name", "file_path", "file_type", "uploaded_at"}))

	_, err := svc.GetForDownload(context.Background(), 9, 77)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
