package model

// AppState is the client's last-known-good snapshot of every resource.
type AppState struct {
	PrayerTimes  []PrayerTime  `json:"prayerTimes"`
	Events       []Event       `json:"events"`
	Transactions []Transaction `json:"transactions"`
	DonationInfo DonationInfo  `json:"donationInfo"`
	ContactInfo  ContactInfo   `json:"contactInfo"`
	About        AboutContent  `json:"about"`
	Loading      bool          `json:"loading"`
}

// Clone copies the collections so the result shares no backing arrays with s.
func (s AppState) Clone() AppState {
	out := s
	out.PrayerTimes = cloneSlice(s.PrayerTimes)
	out.Events = cloneSlice(s.Events)
	out.Transactions = cloneSlice(s.Transactions)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// FallbackState is the fixed built-in snapshot used when the initial load fails.
func FallbackState(events []Event) AppState {
	return AppState{
		PrayerTimes:  DefaultPrayerTimes(),
		Events:       events,
		Transactions: []Transaction{},
		DonationInfo: DefaultDonationInfo(),
		ContactInfo:  DefaultContactInfo(),
		About:        DefaultAbout(),
	}
}
