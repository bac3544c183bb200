package model

// DonationInfo, ContactInfo and AboutContent are singletons: at most one row exists.

type DonationInfo struct {
	ID                int64    `db:"id"                 json:"id,omitempty"`
	BankName          string   `db:"bank_name"          json:"bankName"`
	AccountNumber     string   `db:"account_number"     json:"accountNumber"`
	AccountName       string   `db:"account_name"       json:"accountName"`
	QrisImage         ImageRef `db:"qris_image"         json:"qrisImage"`
	ConfirmationPhone string   `db:"confirmation_phone" json:"confirmationPhone"`
	QrisURL           string   `db:"-"                  json:"-"`
}

type ContactInfo struct {
	ID               int64  `db:"id"                json:"id,omitempty"`
	Address          string `db:"address"           json:"address"`
	MapEmbedLink     string `db:"map_embed_link"    json:"mapEmbedLink"`
	Phone            string `db:"phone"             json:"phone"`
	Email            string `db:"email"             json:"email"`
	OperationalHours string `db:"operational_hours" json:"operationalHours"`
	Facebook         string `db:"facebook"          json:"facebook"`
	Instagram        string `db:"instagram"         json:"instagram"`
	Youtube          string `db:"youtube"           json:"youtube"`
}

type AboutContent struct {
	ID       int64    `db:"id"      json:"id,omitempty"`
	History  string   `db:"history" json:"history"`
	Vision   string   `db:"vision"  json:"vision"`
	Mission  string   `db:"mission" json:"mission"`
	Image    ImageRef `db:"image"   json:"image"`
	ImageURL string   `db:"-"       json:"-"`
}
