package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

const userTable = `"user"`

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	RegNo        null.String    `db:"reg_no"`
	Email        null.String    `db:"email"`
	StudentRegNo null.String    `db:"student_reg_no"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		switch exe := svcExec[0].(type) {
		case sqlx.ExtContext:
			return exe
		case *sql.Tx:
			return &sqlx.Tx{Tx: exe, Mapper: repo.db.Mapper}
		}
	}
	return repo.db
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		RegNo:        null.NewString(usr.RegNo, usr.RegNo != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		StudentRegNo: null.NewString(usr.StudentRegNo, usr.StudentRegNo != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		RegNo:        row.RegNo.String,
		Email:        row.Email.String,
		StudentRegNo: row.StudentRegNo.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckRegNoUniqueness(ctx context.Context, regNo, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	query := `SELECT reg_no, email FROM ` + userTable + ` WHERE (reg_no = $1 OR email = $2)`
	args := []interface{}{regNo, email}

	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query += ` AND id <> ALL($3)`
		args = append(args, pq.Array(ids))
	}
	query += ` LIMIT 1`

	var row userRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	if regNo != "" && row.RegNo.String == regNo {
		return user.ErrRegNoExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.toRow(usr)

	query := `
INSERT INTO ` + userTable + ` (id, name, reg_no, email, student_reg_no, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, query,
		row.ID, row.Name, row.RegNo, row.Email, row.StudentRegNo, row.IsActive,
		row.Roles, row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	query := `SELECT * FROM ` + userTable + ` WHERE `
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		query += `id = $1`
		args = append(args, filter.ID)
	case filter.RegNo != "":
		query += `reg_no = $1`
		args = append(args, filter.RegNo)
	case filter.Email != "":
		query += `email = $1`
		args = append(args, filter.Email)
	case len(filter.RegNoOrEmail) > 0:
		var email string
		regNo := filter.RegNoOrEmail[0]
		if len(filter.RegNoOrEmail) == 2 {
			email = filter.RegNoOrEmail[1]
		}
		if email == "" {
			email = regNo
		} else if regNo == "" {
			regNo = email
		}
		if regNo == "" {
			return user.User{}, user.ErrNotFound
		}
		query += `reg_no = $1 OR email = $2`
		args = append(args, regNo, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := sqlx.GetContext(ctx, exe, &row, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)

	// only save set fields
	sets := make([]string, 0, 9)
	args := make([]interface{}, 0, 10)
	set := func(column string, val interface{}) {
		args = append(args, val)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if usr.Name != "" {
		set("name", usr.Name)
	}
	if usr.RegNo != "" {
		set("reg_no", usr.RegNo)
	}
	if usr.Email != "" {
		set("email", usr.Email)
	}
	if usr.StudentRegNo != "" {
		set("student_reg_no", usr.StudentRegNo)
	}
	if usr.IsActive != nil {
		set("is_active", *usr.IsActive)
	}
	if usr.Roles != nil {
		set("roles", pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		set("password_hash", usr.PasswordHash)
	}
	if !usr.UpdatedAt.IsZero() {
		set("updated_at", usr.UpdatedAt.UTC())
	}
	if !usr.LastLogin.IsZero() {
		set("last_login", usr.LastLogin.UTC())
	}
	if len(sets) == 0 {
		return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
	}

	args = append(args, usr.ID)
	query := `UPDATE ` + userTable + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))
	res, err := exe.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}
