package entity

type Person struct {
	ID         PersonID `json:"id" db:"person_id"`
	GivenName  string   `json:"given_name" db:"given_name"`
	FamilyName string   `json:"family_name" db:"family_name"`
	Picture    *string  `json:"picture,omitempty" db:"picture"`
	Email      string   `json:"email" db:"email"`
	Phone      *string  `json:"phone,omitempty" db:"phone"`
}

func (Person) Table() string { return "people" }

func (p Person) FullName() string {
	return p.GivenName + " " + p.FamilyName
}
