package http

import (
	"time"

	"devconnector/internal/domain"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Date   string `json:"date"`
}

type OwnerResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type ProfileResponse struct {
	ID         string               `json:"id"`
	User       OwnerResponse        `json:"user"`
	Bio        string               `json:"bio,omitempty"`
	Address    string               `json:"address,omitempty"`
	Company    string               `json:"company,omitempty"`
	Website    string               `json:"website,omitempty"`
	GitHub     string               `json:"github,omitempty"`
	Status     string               `json:"status"`
	Skills     []string             `json:"skills"`
	Experience []ExperienceResponse `json:"experience"`
	Education  []EducationResponse  `json:"education"`
	Social     SocialResponse       `json:"social"`
	Date       string               `json:"date"`
}

type ExperienceResponse struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Company string  `json:"company"`
	From    string  `json:"from"`
	To      *string `json:"to,omitempty"`
	Current bool    `json:"current"`
}

type EducationResponse struct {
	ID      string  `json:"id"`
	School  string  `json:"school"`
	Degree  string  `json:"degree"`
	From    string  `json:"from"`
	To      *string `json:"to,omitempty"`
	Current bool    `json:"current"`
}

type SocialResponse struct {
	Facebook string `json:"facebook,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	YouTube  string `json:"youtube,omitempty"`
}

type PostResponse struct {
	ID       string            `json:"id"`
	User     string            `json:"user"`
	Text     string            `json:"text"`
	Name     string            `json:"name"`
	Avatar   string            `json:"avatar"`
	Likes    []LikeResponse    `json:"likes"`
	Comments []CommentResponse `json:"comments"`
	Date     string            `json:"date"`
}

type LikeResponse struct {
	User string `json:"user"`
}

type CommentResponse struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Text   string `json:"text"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Date   string `json:"date"`
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Date:   formatTime(u.CreatedAt),
	}
}

func profileToResponse(p domain.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:         p.ID,
		User:       OwnerResponse{ID: p.UserID},
		Bio:        p.Bio,
		Address:    p.Address,
		Company:    p.Company,
		Website:    p.Website,
		GitHub:     p.GitHub,
		Status:     p.Status,
		Skills:     p.Skills,
		Experience: make([]ExperienceResponse, len(p.Experience)),
		Education:  make([]EducationResponse, len(p.Education)),
		Social: SocialResponse{
			Facebook: p.Social.Facebook,
			LinkedIn: p.Social.LinkedIn,
			YouTube:  p.Social.YouTube,
		},
		Date: formatTime(p.CreatedAt),
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if p.Owner != nil {
		resp.User.Name = p.Owner.Name
		resp.User.Avatar = p.Owner.Avatar
	}

	for i, e := range p.Experience {
		resp.Experience[i] = ExperienceResponse{
			ID:      e.ID,
			Title:   e.Title,
			Company: e.Company,
			From:    formatTime(e.From),
			To:      formatTimePtr(e.To),
			Current: e.Current,
		}
	}
	for i, e := range p.Education {
		resp.Education[i] = EducationResponse{
			ID:      e.ID,
			School:  e.School,
			Degree:  e.Degree,
			From:    formatTime(e.From),
			To:      formatTimePtr(e.To),
			Current: e.Current,
		}
	}
	return resp
}

func postToResponse(p domain.Post) PostResponse {
	resp := PostResponse{
		ID:       p.ID,
		User:     p.UserID,
		Text:     p.Text,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Likes:    make([]LikeResponse, len(p.Likes)),
		Comments: commentsToResponse(p.Comments),
		Date:     formatTime(p.CreatedAt),
	}
	for i := range p.Likes {
		resp.Likes[i] = LikeResponse{User: p.Likes[i].UserID}
	}
	return resp
}

func commentsToResponse(comments []domain.Comment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i, c := range comments {
		resp[i] = CommentResponse{
			ID:     c.ID,
			User:   c.UserID,
			Text:   c.Text,
			Name:   c.Name,
			Avatar: c.Avatar,
			Date:   formatTime(c.CreatedAt),
		}
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := formatTime(*t)
	return &v
}
