package model

import "time"

// Defaults shared by server seeding and the client's offline fallback.

func DefaultDonationInfo() DonationInfo {
	return DonationInfo{
		BankName:          "Bank Syariah Indonesia (BSI)",
		AccountNumber:     "1234 5678 90",
		AccountName:       "DKM Masjid Raya",
		ConfirmationPhone: "+62 812-3456-7890",
	}
}

func DefaultContactInfo() ContactInfo {
	return ContactInfo{
		Address:          "Jl. Ahmad Yani No. 123, Kota Sejahtera, Indonesia 40123",
		Phone:            "+62 812-3456-7890",
		Email:            "info@masjidraya.com",
		OperationalHours: "Senin - Minggu: 08:00 - 20:00 WIB",
	}
}

func DefaultAbout() AboutContent {
	return AboutContent{
		History: "Masjid Raya didirikan pada tahun 1990 sebagai pusat kegiatan ibadah dan sosial masyarakat setempat.",
		Vision:  "Menjadi pusat peradaban Islam yang memakmurkan masjid.",
		Mission: "Menyelenggarakan ibadah sholat berjamaah yang khusyuk.",
	}
}

var defaultClock = map[string]string{
	"Imsak":   "04:20",
	"Subuh":   "04:30",
	"Dzuhur":  "12:00",
	"Jumat":   "12:00",
	"Ashar":   "15:15",
	"Maghrib": "18:00",
	"Berbuka": "18:00",
	"Isya":    "19:15",
	"Sahur":   "03:30",
}

// DefaultPrayerTime is the seed row for one name of the fixed set.
func DefaultPrayerTime(name string) PrayerTime {
	clock, ok := defaultClock[name]
	if !ok {
		clock = "00:00"
	}
	return PrayerTime{Name: name, Time: clock, IsActive: !IsOptionalPrayer(name)}
}

// DefaultPrayerTimes numbers the required prayers from 1, as a fresh database would.
func DefaultPrayerTimes() []PrayerTime {
	out := make([]PrayerTime, 0, len(RequiredPrayers))
	for i, name := range RequiredPrayers {
		p := DefaultPrayerTime(name)
		p.ID = int64(i + 1)
		out = append(out, p)
	}
	return out
}

// FallbackEvents is shown when the backend cannot be reached at all.
func FallbackEvents(today time.Time) []Event {
	return []Event{{
		ID:          1,
		Title:       "Kajian Rutin Sabtu (Offline Mode)",
		Date:        ExactDate(today),
		Time:        "09:00",
		Description: "Data ini muncul karena server backend tidak terjangkau. Silakan nyalakan server.",
		Image:       AbsoluteImage("https://images.unsplash.com/photo-1542359489-35a165b4c514?q=80&w=1000"),
	}}
}
