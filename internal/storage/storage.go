package storage

import (
	"context"
	"errors"
	"fmt"

	"potion_service/internal/models"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	usersTable   = "users"
	brandsTable  = "brands"
	potionsTable = "potions"

	uniqueViolationCode = "23505"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already exists")
)

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (userID int64, err error)
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (models.Credentials, error)
}

type PotionStore interface {
	ListPotions(ctx context.Context) ([]models.PotionView, error)
	GetPotion(ctx context.Context, id int64) (models.PotionView, error)
	CreatePotion(ctx context.Context, in models.PotionInput) (models.Potion, error)
	UpdatePotion(ctx context.Context, id int64, in models.PotionInput) (models.Potion, error)
	DeletePotion(ctx context.Context, id int64) (models.Potion, error)
}

type BrandStore interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	GetBrand(ctx context.Context, id int64) (models.Brand, error)
	CreateBrand(ctx context.Context, name string) (models.Brand, error)
}

type Storage interface {
	UserStore
	PotionStore
	BrandStore

	Close()
}

type PostgresStorage struct {
	db *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, DbURL string) (*PostgresStorage, error) {
	const op = "storage.NewPostgresStorage"

	conn, err := pgxpool.Connect(ctx, DbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresStorage{
		db: conn,
	}, nil
}

func (p *PostgresStorage) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	const op = "storage.CreateUser"

	var userID int64
	query := fmt.Sprintf("INSERT INTO %s(email, hash) VALUES ($1, $2) RETURNING id;", usersTable)

	err := p.db.QueryRow(ctx, query, email, passwordHash).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return userID, nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	const op = "storage.GetUserByID"

	var user models.User
	query := fmt.Sprintf("SELECT id, email FROM %s WHERE id=$1;", usersTable)

	err := p.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Email)
	if err != nil {
		return user, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return user, nil
}

func (p *PostgresStorage) GetCredentialsByEmail(ctx context.Context, email string) (models.Credentials, error) {
	const op = "storage.GetCredentialsByEmail"

	var cred models.Credentials
	query := fmt.Sprintf("SELECT id, hash FROM %s WHERE email=$1;", usersTable)

	err := p.db.QueryRow(ctx, query, email).Scan(&cred.UserID, &cred.PasswordHash)
	if err != nil {
		return cred, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return cred, nil
}

const potionViewColumns = `
	potions.id,
	potions.potion,
	potions.spell_level,
	brands.name AS brand`

const potionRowColumns = "id, potion, spell_level, tasty, brand_id, owner_id"

func (p *PostgresStorage) ListPotions(ctx context.Context) ([]models.PotionView, error) {
	const op = "storage.ListPotions"

	query := fmt.Sprintf(`SELECT %s
	FROM %s
	JOIN %s ON brands.id = potions.brand_id
	ORDER BY brands.name ASC, potions.id ASC;`, potionViewColumns, potionsTable, brandsTable)

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	potions := make([]models.PotionView, 0)
	for rows.Next() {
		var v models.PotionView

		if err := rows.Scan(&v.ID, &v.Potion, &v.SpellLevel, &v.Brand); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		potions = append(potions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}

	return potions, nil
}

func (p *PostgresStorage) GetPotion(ctx context.Context, id int64) (models.PotionView, error) {
	const op = "storage.GetPotion"

	var v models.PotionView
	query := fmt.Sprintf(`SELECT %s
	FROM %s
	JOIN %s ON brands.id = potions.brand_id
	WHERE potions.id=$1;`, potionViewColumns, potionsTable, brandsTable)

	err := p.db.QueryRow(ctx, query, id).Scan(&v.ID, &v.Potion, &v.SpellLevel, &v.Brand)
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return v, nil
}

func (p *PostgresStorage) CreatePotion(ctx context.Context, in models.PotionInput) (models.Potion, error) {
	const op = "storage.CreatePotion"

	query := fmt.Sprintf(`INSERT INTO %s(potion, spell_level, tasty, brand_id, owner_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING %s;`, potionsTable, potionRowColumns)

	row := p.db.QueryRow(ctx, query, in.Potion, in.SpellLevel, in.Tasty, in.ResolvedBrandID(), in.OwnerID)

	potion, err := scanPotion(row)
	if err != nil {
		return potion, fmt.Errorf("%s: %w", op, err)
	}

	return potion, nil
}

func (p *PostgresStorage) UpdatePotion(ctx context.Context, id int64, in models.PotionInput) (models.Potion, error) {
	const op = "storage.UpdatePotion"

	query := fmt.Sprintf(`UPDATE %s
	SET potion = $1,
		spell_level = $2,
		tasty = $3,
		brand_id = $4,
		owner_id = $5
	WHERE id = $6
	RETURNING %s;`, potionsTable, potionRowColumns)

	row := p.db.QueryRow(ctx, query, in.Potion, in.SpellLevel, in.Tasty, in.ResolvedBrandID(), in.OwnerID, id)

	potion, err := scanPotion(row)
	if err != nil {
		return potion, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return potion, nil
}

func (p *PostgresStorage) DeletePotion(ctx context.Context, id int64) (models.Potion, error) {
	const op = "storage.DeletePotion"

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING %s;", potionsTable, potionRowColumns)

	potion, err := scanPotion(p.db.QueryRow(ctx, query, id))
	if err != nil {
		return potion, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return potion, nil
}

func (p *PostgresStorage) ListBrands(ctx context.Context) ([]models.Brand, error) {
	const op = "storage.ListBrands"

	query := fmt.Sprintf("SELECT id, name FROM %s ORDER BY id;", brandsTable)

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	brands := make([]models.Brand, 0)
	for rows.Next() {
		var b models.Brand

		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}

	return brands, nil
}

func (p *PostgresStorage) GetBrand(ctx context.Context, id int64) (models.Brand, error) {
	const op = "storage.GetBrand"

	var b models.Brand
	query := fmt.Sprintf("SELECT id, name FROM %s WHERE id=$1;", brandsTable)

	if err := p.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name); err != nil {
		return b, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return b, nil
}

func (p *PostgresStorage) CreateBrand(ctx context.Context, name string) (models.Brand, error) {
	const op = "storage.CreateBrand"

	b := models.Brand{Name: name}
	query := fmt.Sprintf("INSERT INTO %s(name) VALUES ($1) RETURNING id;", brandsTable)

	if err := p.db.QueryRow(ctx, query, name).Scan(&b.ID); err != nil {
		return models.Brand{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (p *PostgresStorage) Close() {
	p.db.Close()
}

func scanPotion(row pgx.Row) (models.Potion, error) {
	var potion models.Potion

	err := row.Scan(
		&potion.ID,
		&potion.Potion,
		&potion.SpellLevel,
		&potion.Tasty,
		&potion.BrandID,
		&potion.OwnerID,
	)

	return potion, err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
