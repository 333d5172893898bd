// Package memory persists conversation turns keyed by context id. The RPC
// bridge writes to it best-effort; a failed write never fails a request.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/obinna/neargent/agent/contract"
)

const defaultRecentLimit = 20

type Config struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// ConversationTurn is one stored exchange.
type ConversationTurn struct {
	bun.BaseModel `bun:"table:conversation_turns"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ContextID string    `bun:"context_id,notnull"`
	Role      string    `bun:"role,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

var _ contractx.MemoryStore = (*BunStore)(nil)

// BunStore keeps conversation turns in Postgres.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(cfg Config) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("memory dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &BunStore{db: db}, nil
}

// Init creates the backing table when it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*ConversationTurn)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create conversation_turns table: %w", err)
	}
	return nil
}

func (s *BunStore) AppendTurn(ctx context.Context, contextID string, turn contractx.Turn) error {
	contextID = strings.TrimSpace(contextID)
	if contextID == "" {
		return errors.New("context id is required")
	}

	row := &ConversationTurn{
		ContextID: contextID,
		Role:      turn.Role,
		Content:   turn.Content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert conversation turn: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit newest turns for a context, oldest first.
func (s *BunStore) RecentTurns(ctx context.Context, contextID string, limit int) ([]contractx.Turn, error) {
	contextID = strings.TrimSpace(contextID)
	if contextID == "" {
		return nil, errors.New("context id is required")
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var rows []ConversationTurn
	err := s.db.NewSelect().
		Model(&rows).
		Where("context_id = ?", contextID).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select conversation turns: %w", err)
	}

	turns := make([]contractx.Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = contractx.Turn{
			Role:    row.Role,
			Content: row.Content,
		}
	}
	return turns, nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

// Noop is the store used when no DSN is configured.
type Noop struct{}

var _ contractx.MemoryStore = Noop{}

func (Noop) AppendTurn(context.Context, string, contractx.Turn) error {
	return nil
}

func (Noop) RecentTurns(context.Context, string, int) ([]contractx.Turn, error) {
	return nil, nil
}
