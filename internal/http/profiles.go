package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"devconnector/internal/domain"
	"devconnector/internal/service"
)

type profileRequest struct {
	Bio      *string `json:"bio"`
	Address  *string `json:"address"`
	Company  *string `json:"company"`
	Website  *string `json:"website"`
	GitHub   *string `json:"github"`
	Status   *string `json:"status" binding:"required"`
	Skills   *string `json:"skills" binding:"required"`
	Facebook *string `json:"facebook"`
	LinkedIn *string `json:"linkedin"`
	YouTube  *string `json:"youtube"`
}

type experienceRequest struct {
	Title   string `json:"title" binding:"required"`
	Company string `json:"company" binding:"required"`
	From    string `json:"from" binding:"required"`
	To      string `json:"to"`
	Current bool   `json:"current"`
}

type educationRequest struct {
	School  string `json:"school" binding:"required"`
	Degree  string `json:"degree" binding:"required"`
	From    string `json:"from" binding:"required"`
	To      string `json:"to"`
	Current bool   `json:"current"`
}

func (h *Handler) myProfile(c *gin.Context) {
	profile, err := h.profiles.GetByUser(c.Request.Context(), userIDFrom(c))
	h.respondProfile(c, profile, err)
}

func (h *Handler) profileByUser(c *gin.Context) {
	profile, err := h.profiles.GetByUser(c.Request.Context(), c.Param("id"))
	h.respondProfile(c, profile, err)
}

func (h *Handler) upsertProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	profile, err := h.profiles.Upsert(c.Request.Context(), userIDFrom(c), service.ProfileFields{
		Bio:      req.Bio,
		Address:  req.Address,
		Company:  req.Company,
		Website:  req.Website,
		GitHub:   req.GitHub,
		Status:   req.Status,
		Skills:   req.Skills,
		Facebook: req.Facebook,
		LinkedIn: req.LinkedIn,
		YouTube:  req.YouTube,
	})
	h.respondProfile(c, profile, err)
}

func (h *Handler) listProfiles(c *gin.Context) {
	profiles, err := h.profiles.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]ProfileResponse, len(profiles))
	for i := range profiles {
		resp[i] = profileToResponse(profiles[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if err := h.profiles.DeleteCascade(c.Request.Context(), userIDFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorMessage{Msg: "User deleted"})
}

func (h *Handler) addExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}
	from, to, ok := parsePeriod(c, req.From, req.To)
	if !ok {
		return
	}

	profile, err := h.profiles.AddExperience(c.Request.Context(), userIDFrom(c), service.ExperienceInput{
		Title:   req.Title,
		Company: req.Company,
		From:    from,
		To:      to,
		Current: req.Current,
	})
	h.respondProfile(c, profile, err)
}

func (h *Handler) removeExperience(c *gin.Context) {
	profile, err := h.profiles.RemoveExperience(c.Request.Context(), userIDFrom(c), c.Param("id"))
	h.respondProfile(c, profile, err)
}

func (h *Handler) addEducation(c *gin.Context) {
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}
	from, to, ok := parsePeriod(c, req.From, req.To)
	if !ok {
		return
	}

	profile, err := h.profiles.AddEducation(c.Request.Context(), userIDFrom(c), service.EducationInput{
		School:  req.School,
		Degree:  req.Degree,
		From:    from,
		To:      to,
		Current: req.Current,
	})
	h.respondProfile(c, profile, err)
}

func (h *Handler) removeEducation(c *gin.Context) {
	profile, err := h.profiles.RemoveEducation(c.Request.Context(), userIDFrom(c), c.Param("id"))
	h.respondProfile(c, profile, err)
}

func (h *Handler) githubRedirect(c *gin.Context) {
	authURL, _, err := h.github.AuthURL(c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) githubCallback(c *gin.Context) {
	user, err := h.github.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) respondProfile(c *gin.Context, profile *domain.Profile, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileToResponse(*profile))
}

// parsePeriod parses the from/to dates of a profile entry, writing a
// validation response and returning false when either is malformed.
func parsePeriod(c *gin.Context, fromRaw, toRaw string) (time.Time, *time.Time, bool) {
	from, err := parseDate(fromRaw)
	if err != nil {
		respondValidation(c, "From Date is invalid")
		return time.Time{}, nil, false
	}
	if strings.TrimSpace(toRaw) == "" {
		return from, nil, true
	}
	to, err := parseDate(toRaw)
	if err != nil {
		respondValidation(c, "To Date is invalid")
		return time.Time{}, nil, false
	}
	return from, &to, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
