package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxRunner is the transaction boundary services run multi-step operations
// in. *gorm.DB satisfies it directly; tests substitute a fake that just
// invokes the callback.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
