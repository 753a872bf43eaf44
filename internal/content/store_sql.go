package content

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLDocs keeps documents in the documents table (see internal/db).
type SQLDocs struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLDocs(db *sql.DB, driver string) *SQLDocs {
	return &SQLDocs{db: db, driver: driver}
}

// NewSQLStore returns a Repo backed by db.
func NewSQLStore(db *sql.DB, driver string) *Repo {
	return NewRepo(NewSQLDocs(db, driver), nil)
}

func (s *SQLDocs) Put(ctx context.Context, c Collection, d Doc) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents (collection,id,parent,ref,data,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (collection,id) DO UPDATE SET parent=EXCLUDED.parent, ref=EXCLUDED.ref, data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		string(c), d.ID, d.Parent, d.Ref, string(d.Data), d.CreatedAt, time.Now().Unix())
	return err
}

func (s *SQLDocs) Get(ctx context.Context, c Collection, id string) (Doc, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,parent,ref,data,created_at FROM documents WHERE collection=$1 AND id=$2`, string(c), id)
	return scanDoc(row)
}

func (s *SQLDocs) List(ctx context.Context, c Collection, q Query) ([]Doc, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,parent,ref,data,created_at FROM documents
		WHERE collection=$1 AND ($2='' OR parent=$2) AND ($3='' OR ref=$3)
		ORDER BY created_at, id`, string(c), q.Parent, q.Ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Doc{}
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLDocs) Delete(ctx context.Context, c Collection, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, string(c), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLDocs) Update(ctx context.Context, c Collection, id string, fn func(Doc) (Doc, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := `SELECT id,parent,ref,data,created_at FROM documents WHERE collection=$1 AND id=$2`
	if s.driver == "postgres" {
		q += ` FOR UPDATE`
	}
	old, err := scanDoc(tx.QueryRowContext(ctx, q, string(c), id))
	if err != nil {
		return err
	}
	d, err := fn(old)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET parent=$1, ref=$2, data=$3, updated_at=$4 WHERE collection=$5 AND id=$6`,
		d.Parent, d.Ref, string(d.Data), time.Now().Unix(), string(c), id); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(row scanner) (Doc, error) {
	var (
		d    Doc
		data string
	)
	if err := row.Scan(&d.ID, &d.Parent, &d.Ref, &data, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Doc{}, ErrNotFound
		}
		return Doc{}, err
	}
	d.Data = []byte(data)
	return d, nil
}
