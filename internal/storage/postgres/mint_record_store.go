package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"mvcm/internal/domain"
	"mvcm/internal/storage"
)

// MintRecordStore implements storage.MintRecordStore using PostgreSQL.
type MintRecordStore struct {
	pool *Pool
}

// NewMintRecordStore creates a new MintRecordStore.
func NewMintRecordStore(pool *Pool) *MintRecordStore {
	return &MintRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MintRecordStore = (*MintRecordStore)(nil)

const mintRecordColumns = `
	id, candy_machine, version, network, minter, nft_mint,
	signature, status, error, attempted_at, created_at
`

// Insert adds a new record. Returns ErrDuplicateKey if id exists.
func (s *MintRecordStore) Insert(ctx context.Context, r *domain.MintRecord) (err error) {
	if r == nil || r.ID == "" || !r.Status.IsValid() || !r.Version.IsValid() {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() { observe("insert_mint_record", start, err) }()

	createdAt := r.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}

	query := `INSERT INTO mint_records (` + mintRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = s.pool.Exec(ctx, query,
		r.ID,
		r.CandyMachine,
		string(r.Version),
		r.Network,
		r.Minter,
		r.NFTMint,
		r.Signature,
		string(r.Status),
		r.Error,
		r.AttemptedAt,
		createdAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert mint record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *MintRecordStore) GetByID(ctx context.Context, id string) (rec *domain.MintRecord, err error) {
	start := time.Now()
	defer func() { observe("get_mint_record", start, err) }()

	row := s.pool.QueryRow(ctx, `SELECT `+mintRecordColumns+` FROM mint_records WHERE id = $1`, id)
	rec, err = scanMintRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get mint record by id: %w", err)
	}
	return rec, nil
}

// GetByCandyMachine retrieves all records for a candy machine, ordered by attempted_at ASC.
func (s *MintRecordStore) GetByCandyMachine(ctx context.Context, candyMachine string) ([]*domain.MintRecord, error) {
	return s.list(ctx, "list_mint_records_by_cm", `candy_machine = $1`, candyMachine)
}

// GetByMinter retrieves all records for a minter wallet, ordered by attempted_at ASC.
func (s *MintRecordStore) GetByMinter(ctx context.Context, minter string) ([]*domain.MintRecord, error) {
	return s.list(ctx, "list_mint_records_by_minter", `minter = $1`, minter)
}

func (s *MintRecordStore) list(ctx context.Context, operation, where string, arg string) (records []*domain.MintRecord, err error) {
	start := time.Now()
	defer func() { observe(operation, start, err) }()

	query := `SELECT ` + mintRecordColumns + ` FROM mint_records WHERE ` + where + ` ORDER BY attempted_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query mint records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanMintRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mint record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mint records: %w", err)
	}
	return records, nil
}

// scanMintRecord scans a single row into MintRecord.
func scanMintRecord(row pgx.Row) (*domain.MintRecord, error) {
	var r domain.MintRecord
	var version, status string

	err := row.Scan(
		&r.ID,
		&r.CandyMachine,
		&version,
		&r.Network,
		&r.Minter,
		&r.NFTMint,
		&r.Signature,
		&status,
		&r.Error,
		&r.AttemptedAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Version = domain.Version(version)
	r.Status = domain.MintStatus(status)
	return &r, nil
}
