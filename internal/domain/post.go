package domain

import "time"

// Post is a feed entry together with its likes and comments.
// Name and Avatar are snapshots of the author taken when the post was written.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	Name      string    `json:"name" bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	Likes     []Like    `json:"likes" bson:"likes"`
	Comments  []Comment `json:"comments" bson:"comments"`
	CreatedAt time.Time `json:"date" bson:"date"`
}

type Like struct {
	UserID string `json:"user" bson:"user"`
}

type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	Name      string    `json:"name" bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	CreatedAt time.Time `json:"date" bson:"date"`
}

// LikedBy reports whether userID already appears in the like list.
func (p *Post) LikedBy(userID string) bool {
	return p.likeIndex(userID) >= 0
}

// AddLike head-inserts a like for userID. It returns false if the user already liked the post.
func (p *Post) AddLike(userID string) bool {
	if p.LikedBy(userID) {
		return false
	}
	p.Likes = append([]Like{{UserID: userID}}, p.Likes...)
	return true
}

// RemoveLike removes the first like by userID. It returns false if there was none.
func (p *Post) RemoveLike(userID string) bool {
	idx := p.likeIndex(userID)
	if idx < 0 {
		return false
	}
	p.Likes = append(p.Likes[:idx], p.Likes[idx+1:]...)
	return true
}

func (p *Post) likeIndex(userID string) int {
	for i := range p.Likes {
		if p.Likes[i].UserID == userID {
			return i
		}
	}
	return -1
}

// AddComment head-inserts c.
func (p *Post) AddComment(c Comment) {
	p.Comments = append([]Comment{c}, p.Comments...)
}

// FindComment returns the comment with the given id.
func (p *Post) FindComment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// RemoveComment removes the comment with the given id. It returns false if no comment matched.
func (p *Post) RemoveComment(id string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}
