package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"

	"happenings/entity"
)

type personResponse struct {
	Person entity.Person `json:"person"`
	Token  string        `json:"token"`
}

// PostPerson stores a person and logs them in.
func (s *Server) PostPerson(c echo.Context) error {
	var person entity.Person
	if err := c.Bind(&person); err != nil {
		return err
	}
	if person.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required.")
	}
	if person.ID.IsZero() {
		person.ID = entity.PersonID(shortuuid.New())
	}

	ctx := c.Request().Context()

	if err := s.peopleRepo.Store(ctx, person); err != nil {
		return fmt.Errorf("failed to store person: %w", err)
	}

	token, err := s.sessions.Create(ctx, person.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusCreated, personResponse{Person: person, Token: token})
}

func (s *Server) GetPerson(c echo.Context) error {
	person, err := s.peopleRepo.Get(c.Request().Context(), entity.PersonID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, person)
}

func (s *Server) GetCurrentPerson(c echo.Context) error {
	person, err := currentPerson(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, person)
}
