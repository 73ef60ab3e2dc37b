package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
	"brotot_gym/internal/services"
)

// EditMemberHandler serves the member edit page and its write path.
type EditMemberHandler struct {
	directory MemberDirectory
	media     MediaStore
	cache     *services.RedisCache
	cacheTTL  time.Duration
	log       zerolog.Logger
}

func NewEditMemberHandler(directory MemberDirectory, media MediaStore, cache *services.RedisCache, cfg config.RedisConfig, log zerolog.Logger) *EditMemberHandler {
	return &EditMemberHandler{
		directory: directory,
		media:     media,
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		log:       log,
	}
}

// EditMemberPage renders the edit form pre-filled with the member's data.
func (h *EditMemberHandler) EditMemberPage(c echo.Context) error {
	member, err := h.findMember(c)
	if err != nil {
		return err
	}
	return h.renderForm(c, http.StatusOK, member, "")
}

// UpdateMember writes the edited fields back to the directory. A new photo
// replaces the old URL; a failed upload aborts the update and the prior
// photo URL is kept when no upload is attempted.
func (h *EditMemberHandler) UpdateMember(c echo.Context) error {
	ctx := c.Request().Context()

	member, err := h.findMember(c)
	if err != nil {
		return err
	}

	member.NickName = c.FormValue("nick_name")
	member.FullName = c.FormValue("full_name")
	member.Gender = c.FormValue("gender")
	member.BirthDate = c.FormValue("birth_date")
	member.MedicalInfo = c.FormValue("medical_info")
	member.FitnessGoal = c.FormValue("fitness_goal")
	member.PreferredWorkoutTime = c.FormValue("preferred_workout_time")

	formattedPhone, err := services.FormatPhoneNumber(c.FormValue("phone_number"))
	if err != nil {
		return h.renderForm(c, http.StatusBadRequest, member, "Invalid phone number format. Please enter a valid Indonesian phone number.")
	}
	member.PhoneNumber = formattedPhone

	if photo, err := c.FormFile("photo"); err == nil {
		file, err := photo.Open()
		if err != nil {
			return h.renderForm(c, http.StatusBadRequest, member, "Could not read the uploaded photo.")
		}
		defer file.Close()

		photoURL, err := h.media.Upload(ctx, photo.Filename, file)
		if err != nil {
			h.log.Error().Err(err).Msg("photo upload failed")
			return h.renderForm(c, http.StatusBadGateway, member, "Failed to upload new photo.")
		}
		member.PhotoURL = photoURL
	} else if !errors.Is(err, http.ErrMissingFile) {
		return h.renderForm(c, http.StatusBadRequest, member, "Could not read the uploaded photo.")
	}

	fields := map[string]string{
		"nick_name":              member.NickName,
		"full_name":              member.FullName,
		"gender":                 member.Gender,
		"birth_date":             member.BirthDate,
		"phone_number":           member.PhoneNumber,
		"medical_info":           member.MedicalInfo,
		"fitness_goal":           member.FitnessGoal,
		"preferred_workout_time": member.PreferredWorkoutTime,
		"photo_url":              member.PhotoURL,
	}

	skipped, err := h.directory.UpdateFields(ctx, member.MemberID, fields)
	if errors.Is(err, models.ErrMemberNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update member")
	}
	if len(skipped) > 0 {
		h.log.Warn().Strs("fields", skipped).Msg("sheet header missing fields, values not written")
	}

	h.log.Info().Int("member_id", member.MemberID).Msg("member updated")
	invalidate(ctx, h.cache, services.CacheKeyMembers)

	return c.Redirect(http.StatusSeeOther, "/members?notice=Member+information+updated!")
}

func (h *EditMemberHandler) findMember(c echo.Context) (models.Member, error) {
	memberID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return models.Member{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid member id")
	}

	members, err := loadMembers(c.Request().Context(), h.cache, h.cacheTTL, h.directory)
	if err != nil {
		return models.Member{}, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch members")
	}
	for _, m := range members {
		if m.MemberID == memberID {
			return m, nil
		}
	}
	return models.Member{}, echo.NewHTTPError(http.StatusNotFound, "Member not found")
}

func (h *EditMemberHandler) renderForm(c echo.Context, status int, member models.Member, errorMessage string) error {
	return c.Render(status, "edit_member.html", map[string]interface{}{
		"Title":         "Edit Member Information",
		"ActiveNav":     "members",
		"Username":      getStringFromContext(c, "username"),
		"Member":        member,
		"Error":         errorMessage,
		"GenderOptions": models.GenderOptions,
		"WorkoutTimes":  models.WorkoutTimes,
	})
}
