package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"happenings/entity"
)

type PeoplePostgresRepository struct {
	db *sqlx.DB
}

func NewPeoplePostgresRepository(db *sqlx.DB) PeoplePostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return PeoplePostgresRepository{db: db}
}

func (r PeoplePostgresRepository) Store(ctx context.Context, person entity.Person) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO
			people (person_id, given_name, family_name, picture, email, phone)
		VALUES
			(:person_id, :given_name, :family_name, :picture, :email, :phone)
		ON CONFLICT (person_id) DO UPDATE SET
			given_name = excluded.given_name,
			family_name = excluded.family_name,
			picture = excluded.picture,
			email = excluded.email,
			phone = excluded.phone
	`, person)
	if err != nil {
		return fmt.Errorf("could not store person %s: %w", person.ID, err)
	}

	return nil
}

func (r PeoplePostgresRepository) Get(ctx context.Context, id entity.PersonID) (entity.Person, error) {
	var person entity.Person
	err := r.db.GetContext(ctx, &person, `SELECT * FROM people WHERE person_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Person{}, entity.NewNotFoundError(id)
	}
	if err != nil {
		return entity.Person{}, fmt.Errorf("could not get person %s: %w", id, err)
	}

	return person, nil
}
