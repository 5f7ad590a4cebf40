package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type userRecord struct {
	bun.BaseModel `bun:"table:userops_users,alias:uu"`

	ID        string    `bun:"id,pk"`
	OrgID     string    `bun:"org_id,notnull,unique"`
	Address   string    `bun:"address,notnull"`
	UserID    string    `bun:"user_id,notnull"`
	Email     string    `bun:"email"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// apiKeyRecord rows form an append-only list per org; position preserves
// append order so the latest credential is the row with the highest
// position for its org.
type apiKeyRecord struct {
	bun.BaseModel `bun:"table:userops_api_keys,alias:uak"`

	ID                   string    `bun:"id,pk"`
	OrgID                string    `bun:"org_id,notnull"`
	Position             int       `bun:"position,notnull"`
	PublicKey            string    `bun:"public_key,notnull"`
	PrivateKey           string    `bun:"private_key,notnull"`
	Status               string    `bun:"status,notnull"`
	DeferredActionDigest string    `bun:"deferred_action_digest"`
	AccountAddress       string    `bun:"account_address"`
	InitCode             string    `bun:"init_code"`
	CreatedAt            time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt            time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
