package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewStore(sqlx.NewDb(raw, "postgres")), mock
}

func TestGetDonationInfo_CreatesDefaultsWhenAbsent(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "bank_name", "account_number", "account_name", "qris_image", "confirmation_phone"}

	mock.ExpectQuery(`SELECT .* FROM donation_info ORDER BY id LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(cols))
	def := model.DefaultDonationInfo()
	mock.ExpectQuery(`INSERT INTO donation_info`).
		WithArgs(def.BankName, def.AccountNumber, def.AccountName, nil, def.ConfirmationPhone).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, def.BankName, def.AccountNumber, def.AccountName, nil, def.ConfirmationPhone))

	info, err := store.GetDonationInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.ID)
	assert.Equal(t, def.BankName, info.BankName)
	assert.True(t, info.QrisImage.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertContactInfo_UpdatesExistingRow(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "address", "map_embed_link", "phone", "email", "operational_hours", "facebook", "instagram", "youtube"}

	mock.ExpectQuery(`SELECT .* FROM contact_info`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(4, "old", "", "", "", "", "", "", ""))
	mock.ExpectQuery(`UPDATE contact_info`).
		WithArgs(int64(4), "Jl. Baru", "", "021", "", "", "", "", "").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(4, "Jl. Baru", "", "021", "", "", "", "", ""))

	out, err := store.UpsertContactInfo(model.ContactInfo{Address: "Jl. Baru", Phone: "021"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.ID)
	assert.Equal(t, "Jl. Baru", out.Address)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePrayerTime_OnlyProvidedFields(t *testing.T) {
	store, mock := newMockStore(t)
	clock := "05:00"

	mock.ExpectQuery(`UPDATE prayer_times`).
		WithArgs(int64(1), "05:00", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "time", "is_active"}).AddRow(1, "Subuh", "05:00", true))

	p, err := store.UpdatePrayerTime(1, model.PrayerTimePatch{Time: &clock})
	require.NoError(t, err)
	assert.Equal(t, "05:00", p.Time)
	assert.True(t, p.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePrayerTime_Missing(t *testing.T) {
	store, mock := newMockStore(t)
	active := false

	mock.ExpectQuery(`UPDATE prayer_times`).
		WithArgs(int64(42), nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "time", "is_active"}))

	_, err := store.UpdatePrayerTime(42, model.PrayerTimePatch{IsActive: &active})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteEvent_MissingIsNoRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.DeleteEvent(9), sql.ErrNoRows)
}

func TestListEvents_ScansDateVariants(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	cols := []string{"id", "title", "date", "time", "description", "image", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT .* FROM events ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Kajian", "Setiap Sabtu", "09:00", "", nil, now, now).
			AddRow(2, "Tabligh", "2025-04-01", "19:30", "", "/uploads/tabligh.png", now, now))

	events, err := store.ListEvents()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Date.IsRecurring())
	assert.True(t, events[1].Date.IsExact())
	assert.Equal(t, model.ImageUpload, events[1].Image.Kind())
}

func TestListEvents_RecurringBeforeExactDates(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	cols := []string{"id", "title", "date", "time", "description", "image", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT .* FROM events ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Tabligh", "2025-04-01", "19:30", "", nil, now, now).
			AddRow(2, "Maulid", "2025-02-10", "19:30", "", nil, now, now).
			AddRow(3, "Kajian", "Setiap Sabtu", "09:00", "", nil, now, now).
			AddRow(4, "Tahsin", "Ahad Pagi", "06:00", "", nil, now, now))

	events, err := store.ListEvents()
	require.NoError(t, err)
	require.Len(t, events, 4)

	var ids []int64
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{3, 4, 2, 1}, ids)
}

func TestListTransactions_ScansNumericAmount(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "title", "amount", "type", "date", "category", "created_at"}

	mock.ExpectQuery(`SELECT .* FROM transactions ORDER BY date DESC, created_at DESC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, "Listrik", []byte("500000.00"), "expense", "2025-01-10", "Operasional", time.Now()).
			AddRow(1, "Infaq", []byte("2500000.50"), "income", "2025-01-03", nil, time.Now()))

	txs, err := store.ListTransactions()
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.NewMoney(500000), txs[0].Amount)
	assert.Equal(t, model.Expense, txs[0].Type)
	require.NotNil(t, txs[0].Category)
	assert.Nil(t, txs[1].Category)
	assert.Equal(t, model.Money(250000050), txs[1].Amount)
}

func TestRunMigrations_AppliesUpFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0002_more.up.sql"), []byte("CREATE TABLE b (id INT);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_init.up.sql"), []byte("CREATE TABLE a (id INT);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_init.down.sql"), []byte("DROP TABLE a;"), 0o644))

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	mock.ExpectExec(`CREATE TABLE a`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE b`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, RunMigrations(sqlx.NewDb(raw, "postgres"), dir))
	require.NoError(t, mock.ExpectationsWereMet())
}
