package models

type Credentials struct {
	UserID       int64
	PasswordHash string // bcrypt hash, never leaves the service layer
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Potion is a row of the potions table as stored.
type Potion struct {
	ID         int64  `json:"id"`
	Potion     string `json:"potion"`
	SpellLevel int    `json:"spell_level"`
	Tasty      bool   `json:"tasty"`
	BrandID    int64  `json:"brand_id"`
	OwnerID    int64  `json:"owner_id"`
}

// PotionView is a potion joined with the name of its brand.
type PotionView struct {
	ID         int64  `json:"id"`
	Potion     string `json:"potion"`
	SpellLevel int    `json:"spell_level"`
	Brand      string `json:"brand"`
}

// PotionInput is the body accepted when creating or replacing a potion.
// Brand is an older alias for BrandID.
type PotionInput struct {
	Potion     string `json:"potion"`
	SpellLevel int    `json:"spell_level"`
	Tasty      bool   `json:"tasty"`
	BrandID    int64  `json:"brand_id"`
	Brand      int64  `json:"brand"`
	OwnerID    int64  `json:"owner_id"`
}

func (in PotionInput) ResolvedBrandID() int64 {
	if in.BrandID != 0 {
		return in.BrandID
	}
	return in.Brand
}
