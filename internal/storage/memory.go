package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"potion_service/internal/models"
)

// MemoryStorage is a process-local Storage that mirrors the constraints of
// the Postgres schema: unique emails and brand/owner foreign keys.
type MemoryStorage struct {
	mu sync.RWMutex

	users    map[int64]memUser
	brands   map[int64]models.Brand
	potions  map[int64]models.Potion
	emailIdx map[string]int64

	nextUser, nextBrand, nextPotion int64
}

type memUser struct {
	email string
	hash  string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[int64]memUser),
		brands:   make(map[int64]models.Brand),
		potions:  make(map[int64]models.Potion),
		emailIdx: make(map[string]int64),
	}
}

func (m *MemoryStorage) CreateUser(_ context.Context, email, passwordHash string) (int64, error) {
	const op = "storage.CreateUser"

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emailIdx[email]; ok {
		return 0, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}

	m.nextUser++
	id := m.nextUser
	m.users[id] = memUser{email: email, hash: passwordHash}
	m.emailIdx[email] = id

	return id, nil
}

func (m *MemoryStorage) GetUserByID(_ context.Context, userID int64) (models.User, error) {
	const op = "storage.GetUserByID"

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return models.User{ID: userID, Email: u.email}, nil
}

func (m *MemoryStorage) GetCredentialsByEmail(_ context.Context, email string) (models.Credentials, error) {
	const op = "storage.GetCredentialsByEmail"

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emailIdx[email]
	if !ok {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return models.Credentials{UserID: id, PasswordHash: m.users[id].hash}, nil
}

func (m *MemoryStorage) ListPotions(_ context.Context) ([]models.PotionView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]models.PotionView, 0, len(m.potions))
	for _, p := range m.potions {
		views = append(views, m.view(p))
	}

	sort.Slice(views, func(i, j int) bool {
		if c := strings.Compare(views[i].Brand, views[j].Brand); c != 0 {
			return c < 0
		}
		return views[i].ID < views[j].ID
	})

	return views, nil
}

func (m *MemoryStorage) GetPotion(_ context.Context, id int64) (models.PotionView, error) {
	const op = "storage.GetPotion"

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.potions[id]
	if !ok {
		return models.PotionView{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return m.view(p), nil
}

func (m *MemoryStorage) CreatePotion(_ context.Context, in models.PotionInput) (models.Potion, error) {
	const op = "storage.CreatePotion"

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRefs(in); err != nil {
		return models.Potion{}, fmt.Errorf("%s: %w", op, err)
	}

	m.nextPotion++
	p := potionFromInput(m.nextPotion, in)
	m.potions[p.ID] = p

	return p, nil
}

func (m *MemoryStorage) UpdatePotion(_ context.Context, id int64, in models.PotionInput) (models.Potion, error) {
	const op = "storage.UpdatePotion"

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.potions[id]; !ok {
		return models.Potion{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err := m.checkRefs(in); err != nil {
		return models.Potion{}, fmt.Errorf("%s: %w", op, err)
	}

	p := potionFromInput(id, in)
	m.potions[id] = p

	return p, nil
}

func (m *MemoryStorage) DeletePotion(_ context.Context, id int64) (models.Potion, error) {
	const op = "storage.DeletePotion"

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.potions[id]
	if !ok {
		return models.Potion{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	delete(m.potions, id)

	return p, nil
}

func (m *MemoryStorage) ListBrands(_ context.Context) ([]models.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	brands := make([]models.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i].ID < brands[j].ID })

	return brands, nil
}

func (m *MemoryStorage) GetBrand(_ context.Context, id int64) (models.Brand, error) {
	const op = "storage.GetBrand"

	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.brands[id]
	if !ok {
		return models.Brand{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return b, nil
}

func (m *MemoryStorage) CreateBrand(_ context.Context, name string) (models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBrand++
	b := models.Brand{ID: m.nextBrand, Name: name}
	m.brands[b.ID] = b

	return b, nil
}

func (m *MemoryStorage) Close() {}

// caller holds m.mu
func (m *MemoryStorage) checkRefs(in models.PotionInput) error {
	if _, ok := m.brands[in.ResolvedBrandID()]; !ok {
		return fmt.Errorf("brand %d does not exist", in.ResolvedBrandID())
	}
	if _, ok := m.users[in.OwnerID]; !ok {
		return fmt.Errorf("owner %d does not exist", in.OwnerID)
	}
	return nil
}

// caller holds m.mu
func (m *MemoryStorage) view(p models.Potion) models.PotionView {
	return models.PotionView{
		ID:         p.ID,
		Potion:     p.Potion,
		SpellLevel: p.SpellLevel,
		Brand:      m.brands[p.BrandID].Name,
	}
}

func potionFromInput(id int64, in models.PotionInput) models.Potion {
	return models.Potion{
		ID:         id,
		Potion:     in.Potion,
		SpellLevel: in.SpellLevel,
		Tasty:      in.Tasty,
		BrandID:    in.ResolvedBrandID(),
		OwnerID:    in.OwnerID,
	}
}
