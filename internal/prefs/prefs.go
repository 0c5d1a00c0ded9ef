package prefs

import (
	"errors"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sistemaos/webapp/internal/api"
)

// Preference holds one operator's presentation settings: theme, profession
// palette and which payment methods the add-payment form offers. These are
// frontend-only; the OS backend never sees them.
type Preference struct {
	ID              uint   `gorm:"primaryKey"`
	Username        string `gorm:"uniqueIndex;size:150"`
	Theme           string `gorm:"size:16"`
	Paleta          string `gorm:"size:32"`
	FormasPagamento string `gorm:"size:64"` // comma-separated method codes
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const (
	DefaultTheme  = "dark"
	DefaultPaleta = "geral"
)

// Paletas are the selectable profession palettes for the layout accent.
var Paletas = []struct{ Key, Label string }{
	{"geral", "Geral"},
	{"eletricista", "Eletricista"},
	{"encanador", "Encanador"},
	{"pintor", "Pintor"},
	{"marceneiro", "Marceneiro"},
}

func defaultFormas() string {
	codes := make([]string, 0, len(api.FormasPagamento))
	for _, f := range api.FormasPagamento {
		codes = append(codes, f.Code)
	}
	return strings.Join(codes, ",")
}

// FormasList returns the enabled payment-method codes in backend order.
func (p Preference) FormasList() []string {
	if strings.TrimSpace(p.FormasPagamento) == "" {
		return nil
	}
	parts := strings.Split(p.FormasPagamento, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p Preference) FormaEnabled(code string) bool {
	for _, c := range p.FormasList() {
		if c == code {
			return true
		}
	}
	return false
}

type Store struct {
	db *gorm.DB
}

// Open connects to the preference database. A postgres:// DSN selects the
// postgres driver; anything else is treated as a sqlite path/URI.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("prefs: empty dsn")
	}
	var dial gorm.Dialector
	lower := strings.ToLower(dsn)
	isPostgres := strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
	if isPostgres {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	// MIGRATIONS=1 runs versioned SQL migrations (postgres only); otherwise
	// AutoMigrate keeps the dev and sqlite paths working without ceremony.
	if isPostgres && migrationsWanted() {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, err
		}
	} else if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Ping runs a lightweight query against the preference database.
func (s *Store) Ping() error {
	return s.db.Exec("SELECT 1").Error
}

// Get returns the stored preference for username, or the defaults when the
// operator never saved any.
func (s *Store) Get(username string) (Preference, error) {
	var p Preference
	err := s.db.Where("username = ?", username).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Preference{
			Username:        username,
			Theme:           DefaultTheme,
			Paleta:          DefaultPaleta,
			FormasPagamento: defaultFormas(),
		}, nil
	}
	if err != nil {
		return Preference{}, err
	}
	if p.Theme == "" {
		p.Theme = DefaultTheme
	}
	if p.Paleta == "" {
		p.Paleta = DefaultPaleta
	}
	if p.FormasPagamento == "" {
		p.FormasPagamento = defaultFormas()
	}
	return p, nil
}

// Save upserts by username.
func (s *Store) Save(p Preference) error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.New("prefs: username required")
	}
	var existing Preference
	err := s.db.Where("username = ?", p.Username).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&p).Error
	}
	if err != nil {
		return err
	}
	existing.Theme = p.Theme
	existing.Paleta = p.Paleta
	existing.FormasPagamento = p.FormasPagamento
	return s.db.Save(&existing).Error
}
