package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	apperrors "github.com/agbru/labwork/internal/errors"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
	DriverMySQL  = "mysql"
)

// StoreConfig selects the database behind a Store.
type StoreConfig struct {
	// Driver is one of DriverSQLite, DriverPgx or DriverMySQL.
	Driver string
	// DSN is the data source name. Empty means an in-memory SQLite database.
	DSN string
}

// Store persists users and orders through database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and verifies the connection.
// In-memory SQLite databases are limited to a single connection, since each
// connection would otherwise see its own empty database.
func Open(ctx context.Context, cfg StoreConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
	case DriverPgx, DriverMySQL:
		if dsn == "" {
			return nil, apperrors.NewConfigError("driver %s requires a dsn", driver)
		}
	default:
		return nil, apperrors.NewConfigError("unknown db driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, apperrors.StorageError{Op: "open database", Cause: err}
	}
	if driver == DriverSQLite && isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.StorageError{Op: "connect to database", Cause: err}
	}
	return &Store{db: db, driver: driver}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Driver returns the database driver name.
func (s *Store) Driver() string { return s.driver }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the users and orders tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.StorageError{Op: "migrate", Cause: err}
		}
	}
	return nil
}

func (s *Store) schema() []string {
	switch s.driver {
	case DriverPgx:
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				is_active BOOLEAN NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id BIGSERIAL PRIMARY KEY,
				product_name TEXT NOT NULL,
				quantity INTEGER NOT NULL,
				user_id BIGINT NOT NULL REFERENCES users(id)
			)`,
		}
	case DriverMySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL UNIQUE,
				is_active BOOLEAN NOT NULL
			) ENGINE=InnoDB`,
			`CREATE TABLE IF NOT EXISTS orders (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				product_name VARCHAR(255) NOT NULL,
				quantity INT NOT NULL,
				user_id BIGINT NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id)
			) ENGINE=InnoDB`,
		}
	default: // sqlite
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				is_active INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				product_name TEXT NOT NULL,
				quantity INTEGER NOT NULL,
				user_id INTEGER NOT NULL REFERENCES users(id)
			)`,
		}
	}
}

// ph returns the i-th (1-based) bind placeholder for the driver.
func (s *Store) ph(i int) string {
	if s.driver == DriverPgx {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// insertQuery builds an INSERT of cols into table that yields the new row
// id: through RETURNING on PostgreSQL, through LastInsertId elsewhere.
func (s *Store) insertQuery(table string, cols ...string) string {
	phs := make([]string, len(cols))
	for i := range cols {
		phs[i] = s.ph(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(phs, ", "))
	if s.driver == DriverPgx {
		query += " RETURNING id"
	}
	return query
}

// insertReturningID runs a query built by insertQuery inside tx and returns
// the new row id.
func (s *Store) insertReturningID(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.driver == DriverPgx {
		var id int64
		err := tx.QueryRowContext(ctx, query, args...).Scan(&id)
		return id, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) insertUser(ctx context.Context, tx *sql.Tx, u *User) error {
	query := s.insertQuery("users", "name", "email", "is_active")
	id, err := s.insertReturningID(ctx, tx, query, u.Name, u.Email, u.IsActive)
	if err != nil {
		return apperrors.WrapError(err, "inserting user %q", u.Email)
	}
	u.ID = id
	return nil
}

func (s *Store) insertOrder(ctx context.Context, tx *sql.Tx, o *Order) error {
	query := s.insertQuery("orders", "product_name", "quantity", "user_id")
	id, err := s.insertReturningID(ctx, tx, query, o.ProductName, o.Quantity, o.UserID)
	if err != nil {
		return apperrors.WrapError(err, "inserting order %q for user %d", o.ProductName, o.UserID)
	}
	o.ID = id
	return nil
}

// withTx runs fn in a transaction, committing on success and rolling back
// on any error.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageError{Op: op, Cause: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return apperrors.StorageError{Op: op, Cause: err}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.StorageError{Op: op, Cause: err}
	}
	return nil
}

func (s *Store) activeUsersQuery() string {
	return "SELECT id, name, email, is_active FROM users WHERE is_active = " + s.ph(1) + " ORDER BY id"
}

func (s *Store) activeUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, s.activeUsersQuery(), true)
	if err != nil {
		return nil, apperrors.StorageError{Op: "query active users", Cause: err}
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.IsActive); err != nil {
			return nil, apperrors.StorageError{Op: "scan active users", Cause: err}
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageError{Op: "query active users", Cause: err}
	}
	return out, nil
}

func (s *Store) usersWithOrders(ctx context.Context) ([]UserWithOrderInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT u.name, COUNT(o.id)
		FROM users u JOIN orders o ON o.user_id = u.id
		GROUP BY u.id, u.name
		ORDER BY u.id`)
	if err != nil {
		return nil, apperrors.StorageError{Op: "query users with orders", Cause: err}
	}
	defer rows.Close()

	var out []UserWithOrderInfo
	for rows.Next() {
		var info UserWithOrderInfo
		if err := rows.Scan(&info.Name, &info.TotalOrders); err != nil {
			return nil, apperrors.StorageError{Op: "scan users with orders", Cause: err}
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageError{Op: "query users with orders", Cause: err}
	}
	return out, nil
}
