package inquiry

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campworks/internal/auth"
	"campworks/pkg/database"
	"campworks/pkg/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	// inquiries reference users
	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	users := auth.NewRepo(db)
	require.NoError(t, users.Create(context.Background(), auth.User{
		ID:           id,
		LoginID:      id + "-login",
		PasswordHash: "x",
		Name:         name,
		UserType:     auth.UserTypeCustomer,
	}))
}

func seedInquiry(t *testing.T, r *Repo, authorID, title string) *models.Inquiry {
	t.Helper()
	q := &models.Inquiry{
		Title:      title,
		Content:    "some question",
		AuthorID:   authorID,
		AuthorName: "Author",
		Phone:      "010-0000-0000",
	}
	require.NoError(t, r.Create(context.Background(), q))
	return q
}

func TestCreateDefaultsPending(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Kim")
	r := NewRepo(db)

	q := seedInquiry(t, r, "u1", "water tank sizing")

	got, err := r.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.InquiryStatusPending, got.Status)
	assert.Equal(t, 0, got.Views)
	assert.Nil(t, got.Answer)
	assert.Nil(t, got.AnsweredAt)
}

func TestIncrementViews(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Kim")
	r := NewRepo(db)
	q := seedInquiry(t, r, "u1", "views")

	require.NoError(t, r.IncrementViews(context.Background(), q.ID))
	require.NoError(t, r.IncrementViews(context.Background(), q.ID))

	got, err := r.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestAnswerLifecycle(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Kim")
	seedUser(t, db, "admin1", "Boss")
	r := NewRepo(db)
	q := seedInquiry(t, r, "u1", "insulation question")

	ok, err := r.Answer(context.Background(), q.ID, "use closed-cell foam", "admin1")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusAnswered, got.Status)
	require.NotNil(t, got.Answer)
	assert.Equal(t, "use closed-cell foam", *got.Answer)
	require.NotNil(t, got.AnsweredBy)
	assert.Equal(t, "admin1", *got.AnsweredBy)
	assert.NotNil(t, got.AnsweredAt)

	// removing the answer resets the inquiry to pending
	ok, err = r.ClearAnswer(context.Background(), q.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = r.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusPending, got.Status)
	assert.Nil(t, got.Answer)
	assert.Nil(t, got.AnsweredAt)
	assert.Nil(t, got.AnsweredBy)
}

func TestAnswerMissingInquiry(t *testing.T) {
	r := NewRepo(testDB(t))
	ok, err := r.Answer(context.Background(), "nope", "answer", "admin1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateStatus(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Kim")
	r := NewRepo(db)
	q := seedInquiry(t, r, "u1", "status flip")

	ok, err := r.UpdateStatus(context.Background(), q.ID, models.InquiryStatusAnswered)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusAnswered, got.Status)
}

func TestListAndCount(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Kim")
	r := NewRepo(db)

	for _, title := range []string{"one", "two", "three"} {
		seedInquiry(t, r, "u1", title)
	}

	total, err := r.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	inquiries, err := r.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, inquiries, 2)
}

func TestDeleteInquiry(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Kim")
	r := NewRepo(db)
	q := seedInquiry(t, r, "u1", "doomed")

	ok, err := r.Delete(context.Background(), q.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(context.Background(), q.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
