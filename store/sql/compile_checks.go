package sqlstore

import "github.com/goliatone/go-userops/core"

var (
	_ core.UserStore              = (*UserStore)(nil)
	_ core.APIKeyStore            = (*APIKeyStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
