package domain

import "time"

// Profile is the professional profile owned by exactly one user.
type Profile struct {
	ID         string       `json:"id" bson:"_id"`
	UserID     string       `json:"user" bson:"user"`
	Bio        string       `json:"bio,omitempty" bson:"bio,omitempty"`
	Address    string       `json:"address,omitempty" bson:"address,omitempty"`
	Company    string       `json:"company,omitempty" bson:"company,omitempty"`
	Website    string       `json:"website,omitempty" bson:"website,omitempty"`
	GitHub     string       `json:"github,omitempty" bson:"github,omitempty"`
	Status     string       `json:"status" bson:"status"`
	Skills     []string     `json:"skills" bson:"skills"`
	Experience []Experience `json:"experience" bson:"experience"`
	Education  []Education  `json:"education" bson:"education"`
	Social     Social       `json:"social" bson:"social"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" bson:"updated_at"`

	// Owner is filled in on read for display and never persisted.
	Owner *UserSummary `json:"-" bson:"-"`
}

type Experience struct {
	ID      string     `json:"id" bson:"_id"`
	Title   string     `json:"title" bson:"title"`
	Company string     `json:"company" bson:"company"`
	From    time.Time  `json:"from" bson:"from"`
	To      *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current bool       `json:"current" bson:"current"`
}

type Education struct {
	ID      string     `json:"id" bson:"_id"`
	School  string     `json:"school" bson:"school"`
	Degree  string     `json:"degree" bson:"degree"`
	From    time.Time  `json:"from" bson:"from"`
	To      *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current bool       `json:"current" bson:"current"`
}

type Social struct {
	Facebook string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	YouTube  string `json:"youtube,omitempty" bson:"youtube,omitempty"`
}

// ExperienceIndex returns the position of the entry with the given id, or -1.
func (p *Profile) ExperienceIndex(id string) int {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			return i
		}
	}
	return -1
}

// EducationIndex returns the position of the entry with the given id, or -1.
func (p *Profile) EducationIndex(id string) int {
	for i := range p.Education {
		if p.Education[i].ID == id {
			return i
		}
	}
	return -1
}
