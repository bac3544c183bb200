package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/notify"
	"github.com/Nixie-Tech-LLC/masjid/internal/state"
)

func TestRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", rupiah(0))
	assert.Equal(t, "Rp 500.000", rupiah(model.NewMoney(500000)))
	assert.Equal(t, "Rp 2.500.000", rupiah(model.NewMoney(2500000)))
	assert.Equal(t, "-Rp 1.000", rupiah(model.NewMoney(-1000)))
}

func TestCountdown(t *testing.T) {
	assert.Equal(t, "00:00:00", countdown(-time.Second))
	assert.Equal(t, "01:02:03", countdown(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "00:00:01", countdown(200*time.Millisecond))
}

func TestRenderBoard(t *testing.T) {
	subuh := model.PrayerTime{ID: 1, Name: "Subuh", Time: "04:30", IsActive: true}
	isya := model.PrayerTime{ID: 5, Name: "Isya", Time: "19:00", IsActive: true}
	var buf bytes.Buffer

	renderBoard(&buf, boardFrame{
		Page: model.BoardPage{
			Date:    "AUGUST 5, 2025",
			Prayers: []model.PrayerTime{subuh, isya},
			Next:    &model.UpcomingPrayer{Prayer: isya, Remaining: 90 * time.Minute},
			Events:  []model.Event{{Title: "Kajian Rutin Sabtu", Date: model.ParseEventDate("Setiap Sabtu")}},
			Finance: model.FinanceSummary{Balance: model.NewMoney(3000000)},
		},
		Status: state.Status{Stale: true, LastSyncedAt: time.Date(2025, 8, 5, 17, 10, 0, 0, time.UTC)},
		Note:   notify.Notification{Kind: notify.Success, Message: "Event created"},
		Now:    time.Date(2025, 8, 5, 17, 30, 0, 0, time.UTC),
	})

	out := buf.String()
	assert.Contains(t, out, "AUGUST 5, 2025  17:30:00")
	assert.Contains(t, out, "(last synced 17:10)")
	assert.Contains(t, out, ">  Isya")
	assert.Contains(t, out, "Next: Isya in 01:30:00")
	assert.Contains(t, out, "Setiap Sabtu")
	assert.Contains(t, out, "Balance: Rp 3.000.000")
	assert.Contains(t, out, "[success] Event created")
}

func TestFindPrayerIgnoresCase(t *testing.T) {
	prayers := []model.PrayerTime{{ID: 2, Name: "Dzuhur"}}
	p, ok := findPrayer(prayers, " dzuhur ")
	require.True(t, ok)
	assert.Equal(t, int64(2), p.ID)

	_, ok = findPrayer(prayers, "Tahajud")
	assert.False(t, ok)
}

func TestImageArg(t *testing.T) {
	ref, file, err := imageArg("https://cdn.example/poster.png")
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Equal(t, model.ImageAbsolute, ref.Kind())

	ref, file, err = imageArg("")
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.True(t, ref.IsZero())

	path := filepath.Join(t.TempDir(), "qris.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o600))

	ref, file, err = imageArg(path)
	require.NoError(t, err)
	assert.Nil(t, ref)
	require.NotNil(t, file)
	assert.Equal(t, "qris.png", file.Name)
	assert.Equal(t, "image/png", file.ContentType)

	inline, err := inlineImageArg(path)
	require.NoError(t, err)
	assert.Equal(t, model.ImageInline, inline.Kind())
	assert.Equal(t, "data:image/png;base64,iVBORw==", inline.String())

	_, _, err = imageArg(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}
