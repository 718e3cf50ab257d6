package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"happenings/entity"
)

const (
	sessionCookie    = "happenings_session"
	currentPersonKey = "current_person"
)

// requirePerson resolves the session of the request to a person, refusing
// requests without one.
func (s *Server) requirePerson(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		personID, err := s.sessions.Person(ctx, sessionToken(c.Request()))
		if err != nil {
			return err
		}

		person, err := s.peopleRepo.Get(ctx, personID)
		if errors.Is(err, entity.ErrNotFound) {
			// the person was removed after logging in
			return entity.ErrNoCurrentPerson
		}
		if err != nil {
			return fmt.Errorf("could not get current person: %w", err)
		}

		c.Set(currentPersonKey, person)
		return next(c)
	}
}

func currentPerson(c echo.Context) (entity.Person, error) {
	person, ok := c.Get(currentPersonKey).(entity.Person)
	if !ok {
		return entity.Person{}, entity.ErrNoCurrentPerson
	}
	return person, nil
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
