package storage

import (
	"context"
	"fmt"

	"potion_service/internal/models"
)

type SeedUser struct {
	Email    string
	Password string
}

type SeedPotion struct {
	Potion     string
	SpellLevel int
	Tasty      bool
	BrandID    int64
}

type SeedData struct {
	Users   []SeedUser
	Brands  []string
	Potions []SeedPotion
}

// DefaultSeed is the fixture loaded by the seed command. Brand ids follow
// slice order; every potion belongs to the first user.
var DefaultSeed = SeedData{
	Users: []SeedUser{
		{Email: "john@arbuckle.com", Password: "1234"},
	},
	Brands: []string{
		"Ismelda's Elixir's",
		"Davan's Draughts",
		"Arkex Brews",
		"Wild Tonics",
	},
	Potions: []SeedPotion{
		{Potion: "heal", SpellLevel: 1, Tasty: true, BrandID: 1},
		{Potion: "sleep", SpellLevel: 3, Tasty: false, BrandID: 2},
		{Potion: "fly", SpellLevel: 5, Tasty: true, BrandID: 3},
		{Potion: "eagle eyes", SpellLevel: 2, Tasty: false, BrandID: 4},
	},
}

type PasswordHashFunc func(ctx context.Context, password string) (string, error)

// Seed inserts data in order: users, then brands, then potions owned by the
// first seeded user. It expects an empty store.
func Seed(ctx context.Context, st Storage, data SeedData, hash PasswordHashFunc) error {
	const op = "storage.Seed"

	if len(data.Users) == 0 && len(data.Potions) > 0 {
		return fmt.Errorf("%s: potions need an owner", op)
	}

	var ownerID int64
	for i, u := range data.Users {
		h, err := hash(ctx, u.Password)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		id, err := st.CreateUser(ctx, u.Email, h)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if i == 0 {
			ownerID = id
		}
	}

	for _, name := range data.Brands {
		if _, err := st.CreateBrand(ctx, name); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, p := range data.Potions {
		in := models.PotionInput{
			Potion:     p.Potion,
			SpellLevel: p.SpellLevel,
			Tasty:      p.Tasty,
			BrandID:    p.BrandID,
			OwnerID:    ownerID,
		}
		if _, err := st.CreatePotion(ctx, in); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
