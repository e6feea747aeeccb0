package game

import "time"

// FundsAmount names a currency-tagged amount inside a transfer payload.
type FundsAmount struct {
	Currency     string `json:"currency"`
	AmountMicros int64  `json:"amount_micros"`
}

// TransferAmounts is the two-component money payload used by deposits,
// withdrawals and donations. Either component may be absent, but at least
// one must be present and positive.
type TransferAmounts struct {
	GoldMicros int64        `json:"gold_micros"`
	Funds      *FundsAmount `json:"funds,omitempty"`
}

func (t TransferAmounts) validate() error {
	if t.GoldMicros < 0 {
		return ErrInvalidRequest
	}
	if t.Funds != nil {
		if t.Funds.AmountMicros <= 0 {
			return ErrInvalidRequest
		}
		if err := ValidateCurrency(t.Funds.Currency); err != nil {
			return err
		}
	}
	if t.GoldMicros == 0 && t.Funds == nil {
		return ErrInvalidRequest
	}
	return nil
}

// DonationFunds addresses the sender side by wallet-balance row id, the way
// the donate surface exposes it.
type DonationFunds struct {
	BalanceID    int64 `json:"balance_id"`
	AmountMicros int64 `json:"amount_micros"`
}

type DonateInput struct {
	ActorID    int64
	ProfileID  int64
	GoldMicros int64
	Funds      *DonationFunds
}

type GiftItem struct {
	InvItemID int64 `json:"id"`
	Quantity  int64 `json:"quantity"`
}

type GoodsOfferInput struct {
	ItemID      int32  `json:"item_id"`
	Quantity    int64  `json:"quantity"`
	PriceMicros int64  `json:"price_micros"`
	Currency    string `json:"currency"`
}

type GoodsOfferEdit struct {
	OfferID     int64 `json:"id"`
	Quantity    int64 `json:"quantity"`
	PriceMicros int64 `json:"price_micros"`
}

type JobOfferInput struct {
	Title      string `json:"title"`
	Quantity   int64  `json:"quantity"`
	WageMicros int64  `json:"wage_micros"`
}

type JobOfferEdit struct {
	OfferID    int64  `json:"id"`
	Title      string `json:"title"`
	Quantity   int64  `json:"quantity"`
	WageMicros int64  `json:"wage_micros"`
}

type WalletBalanceView struct {
	ID           int64  `json:"id"`
	Currency     string `json:"currency"`
	AmountMicros int64  `json:"amount_micros"`
	FlagCode     string `json:"flag_code"`
}

type InvItemView struct {
	ID       int64 `json:"id"`
	ItemID   int32 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

type ProfileView struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Level        int32  `json:"level"`
	XP           int32  `json:"xp"`
	Health       int32  `json:"health"`
	Strength     int32  `json:"strength"`
	SuperSoldier int32  `json:"super_soldier"`
	GoldMicros   int64  `json:"gold_micros"`
	LocationID   int64  `json:"location_id"`
	ResidenceID  int64  `json:"residence_id"`
}

type AccountView struct {
	ProfileView
	Email             string    `json:"email"`
	CanTrain          time.Time `json:"can_train"`
	CanWork           time.Time `json:"can_work"`
	CanHeal           time.Time `json:"can_heal"`
	CanCollectRewards time.Time `json:"can_collect_rewards"`
}

type CompanyView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Type       int32  `json:"type"`
	CEOID      int64  `json:"ceo_id"`
	LocationID int64  `json:"location_id"`
	GoldMicros int64  `json:"gold_micros"`
}

type FundsBalanceView struct {
	ID           int64  `json:"id"`
	Currency     string `json:"currency"`
	AmountMicros int64  `json:"amount_micros"`
}

type StorageItemView struct {
	ID       int64 `json:"id"`
	ItemID   int32 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

type ProductOfferView struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	ItemID      int32  `json:"item_id"`
	Quantity    int64  `json:"quantity"`
	PriceMicros int64  `json:"price_micros"`
	Currency    string `json:"currency"`
}

type JobOfferView struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	Quantity    int64  `json:"quantity"`
	WageMicros  int64  `json:"wage_micros"`
}

type CompanyDetails struct {
	CompanyView
	Funds     []FundsBalanceView `json:"funds"`
	Storage   []StorageItemView  `json:"storage"`
	Offers    []ProductOfferView `json:"product_offers"`
	JobOffers []JobOfferView     `json:"job_offers"`
	Employees []EmployeeView     `json:"employees"`
}

type EmployeeView struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Title      string `json:"title"`
	WageMicros int64  `json:"wage_micros"`
}

type JobView struct {
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	WageMicros  int64  `json:"wage_micros"`
}

type AlertView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	From      *int64    `json:"from,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FriendView struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type MailView struct {
	ID        int64     `json:"id"`
	FromID    int64     `json:"from_id"`
	FromName  string    `json:"from_name"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NewspaperView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
}

type CountryView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FlagCode string `json:"flag_code"`
	Currency string `json:"currency"`
}

type RegionView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}
